//go:build !linux

package cadyn

func availableMemory() (uint64, bool) { return 0, false }

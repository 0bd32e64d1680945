//go:build linux

package cadyn

import (
	"strings"
	"testing"
)

const sampleMeminfo = `MemTotal:       16314444 kB
MemFree:          512000 kB
MemAvailable:    9216000 kB
Buffers:          204800 kB
Cached:          8000000 kB
`

// TestParseMemAvailable reads the reclaimable-inclusive figure.
func TestParseMemAvailable(t *testing.T) {
	n, ok := parseMemAvailable(strings.NewReader(sampleMeminfo))
	if !ok || n != 9216000*1024 {
		t.Errorf("parseMemAvailable = %d, %v; want %d", n, ok, 9216000*1024)
	}

	free := uint64(512000+204800) * 1024
	if n <= free {
		t.Errorf("MemAvailable %d should exceed free plus buffers %d", n, free)
	}

	if _, ok := parseMemAvailable(strings.NewReader("MemTotal: 1 kB\nMemFree: 1 kB\n")); ok {
		t.Error("Expected no value without a MemAvailable line")
	}
	if _, ok := parseMemAvailable(strings.NewReader("MemAvailable: lots kB\n")); ok {
		t.Error("Expected malformed MemAvailable to be rejected")
	}
}

// TestAvailableMemory_Linux always finds a figure on Linux.
func TestAvailableMemory_Linux(t *testing.T) {
	n, ok := AvailableMemory()
	if !ok || n == 0 {
		t.Errorf("AvailableMemory() = %d, %v", n, ok)
	}
	t.Logf("✓ Available: %s", FormatBytes(n))
}

//go:build linux

package cadyn

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

func availableMemory() (uint64, bool) {
	if f, err := os.Open("/proc/meminfo"); err == nil {
		n, ok := parseMemAvailable(f)
		f.Close()
		if ok {
			return n, true
		}
	}
	// Kernels before 3.14 have no MemAvailable line.
	var info unix.Sysinfo_t
	if err := unix.Sysinfo(&info); err != nil {
		return 0, false
	}
	unit := uint64(info.Unit)
	if unit == 0 {
		unit = 1
	}
	return (uint64(info.Freeram) + uint64(info.Bufferram)) * unit, true
}

// parseMemAvailable extracts the MemAvailable line of /proc/meminfo in
// bytes. It counts reclaimable page cache, which Sysinfo's free figure
// leaves out.
func parseMemAvailable(r io.Reader) (uint64, bool) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		rest, ok := strings.CutPrefix(sc.Text(), "MemAvailable:")
		if !ok {
			continue
		}
		fields := strings.Fields(rest)
		if len(fields) == 0 {
			return 0, false
		}
		n, err := strconv.ParseUint(fields[0], 10, 64)
		if err != nil {
			return 0, false
		}
		if len(fields) > 1 && fields[1] == "kB" {
			n *= 1024
		}
		return n, true
	}
	return 0, false
}

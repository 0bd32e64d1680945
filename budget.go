package cadyn

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const histogramCellBytes = 8 // uint64 counts

// AvailableMemory reports memory available to new allocations in bytes. ok is false on
// platforms where it cannot be determined, in which case callers skip the
// pre-flight check.
func AvailableMemory() (bytes uint64, ok bool) { return availableMemory() }

// CheckMemory fails with ErrResource if required bytes exceed available
// memory.
func CheckMemory(required uint64) error {
	avail, ok := AvailableMemory()
	if !ok || required <= avail {
		return nil
	}
	p := message.NewPrinter(language.English)
	return resourceErrorf("%s", p.Sprintf("need %d bytes, only %d available", required, avail))
}

// HistogramBytes is the size of a count histogram over m-bit values.
func HistogramBytes(m int) uint64 { return histogramCellBytes << uint(m) }

// SweepMemory estimates the peak heap of a batch run: per-worker scratch
// histograms plus rule tables and per-item result rows.
func SweepMemory(cfg BatchConfig, items, ruleBreadth, filterBreadth int) uint64 {
	hlen := uint64(cfg.rowLen())
	scratch := HistogramBytes(max(cfg.EntropyMaxLen, cfg.DDMaxLen)) + HistogramBytes(2*cfg.DDMaxLen)
	tables := uint64(1)<<uint(ruleBreadth) + uint64(1)<<uint(filterBreadth)
	perItem := tables + 3*hlen*8
	return uint64(cfg.Threads)*scratch + uint64(items)*perItem
}

// FormatBytes renders a byte count with digit grouping.
func FormatBytes(n uint64) string {
	return message.NewPrinter(language.English).Sprintf("%d bytes", n)
}

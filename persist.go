package cadyn

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// ReadCatalog parses rule lines of the form
//
//	<rule-id> [<filter-id>]
//
// Blank lines and lines starting with '#' are ignored. A line whose rule id
// does not decode is skipped with a warning; a bad filter id keeps the rule
// and drops only the filter. Rules are appended in file order; repeated rules
// collect their filters on the first occurrence.
func ReadCatalog(r io.Reader, diag *Diagnostics) (*Catalog, error) {
	log := diag.Logger()
	c := NewCatalog()
	// Ids of wide rules run to hundreds of kilobytes, so lines are read
	// whole rather than through a Scanner's bounded token buffer.
	br := bufio.NewReader(r)
	for line := 1; ; line++ {
		text, err := br.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, ioError(err, "read catalog line %d", line)
		}
		readCatalogLine(c, log, line, text)
		if err == io.EOF {
			return c, nil
		}
	}
}

func readCatalogLine(c *Catalog, log *slog.Logger, line int, text string) {
	text = strings.TrimSpace(text)
	if text == "" || strings.HasPrefix(text, "#") {
		return
	}
	fields := strings.Fields(text)
	rule, err := ParseID(fields[0])
	if err != nil {
		log.Warn("skipping rule", "line", line, "id", abbreviate(fields[0]), "err", err)
		return
	}
	c.Last()
	id, _ := c.Insert(rule)
	if len(fields) > 2 {
		log.Warn("ignoring trailing tokens", "line", line, "extra", abbreviate(strings.Join(fields[2:], " ")))
	}
	if len(fields) < 2 {
		return
	}
	filter, err := ParseID(fields[1])
	if err != nil {
		log.Warn("skipping filter", "line", line, "id", abbreviate(fields[1]), "err", err)
		return
	}
	fc := c.Filters(id, true)
	fc.Last()
	fc.Insert(filter)
}

// abbreviate shortens long ids for log lines.
func abbreviate(s string) string {
	const keep = 32
	if len(s) <= keep {
		return s
	}
	return fmt.Sprintf("%s…(%d chars)", s[:keep], len(s))
}

// LoadCatalog reads a catalog file.
func LoadCatalog(path string, diag *Diagnostics) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ioError(err, "open %s", path)
	}
	defer f.Close()
	c, err := ReadCatalog(f, diag)
	if err != nil {
		return nil, err
	}
	rules, filters := c.Counts()
	diag.Logger().Info("catalog loaded", "path", path, "rules", rules, "filters", filters)
	return c, nil
}

// WriteCatalog writes c in the format ReadCatalog accepts: one line per
// (rule, filter) pair, or a bare rule line when a rule has no filters.
func WriteCatalog(w io.Writer, c *Catalog) error {
	bw := bufio.NewWriter(w)
	for _, id := range c.IDs() {
		rule := c.Rule(id)
		fc := c.Filters(id, false)
		if fc == nil || fc.Len() == 0 {
			fmt.Fprintln(bw, rule.ID())
			continue
		}
		for _, fid := range fc.IDs() {
			fmt.Fprintln(bw, rule.ID(), fc.Rule(fid).ID())
		}
	}
	return bw.Flush()
}

// SaveCatalog writes c to path, replacing any existing file.
func SaveCatalog(path string, c *Catalog) error {
	return writeFile(path, func(w io.Writer) error { return WriteCatalog(w, c) })
}

// AppendEntry appends one rule line, with an optional filter, to path.
func AppendEntry(path string, rule, filter *Rule) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return ioError(err, "open %s", path)
	}
	line := rule.ID()
	if filter != nil {
		line += " " + filter.ID()
	}
	if _, err := fmt.Fprintln(f, line); err != nil {
		f.Close()
		return ioError(err, "append %s", path)
	}
	if err := f.Close(); err != nil {
		return ioError(err, "close %s", path)
	}
	return nil
}

package cadyn

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/lmittmann/tint"
)

// Diagnostics is the single status channel shared by all workers. Every
// write, including each slog record, goes out under one lock, and Block
// groups several lines into one uninterrupted write. A nil *Diagnostics
// discards everything.
type Diagnostics struct {
	mu     sync.Mutex
	w      io.Writer
	logger *slog.Logger
}

// NewDiagnostics writes human-oriented, colourless tint output to w.
func NewDiagnostics(w io.Writer, level slog.Level) *Diagnostics {
	d := &Diagnostics{w: w}
	d.logger = slog.New(tint.NewHandler(lockedWriter{d}, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
		NoColor:    true,
	}))
	return d
}

// Logger returns the structured logger bound to this channel.
func (d *Diagnostics) Logger() *slog.Logger {
	if d == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return d.logger
}

// Block composes a multi-line message with fn and emits it atomically.
func (d *Diagnostics) Block(fn func(w io.Writer)) {
	if d == nil {
		return
	}
	var buf bytes.Buffer
	fn(&buf)
	d.write(buf.Bytes())
}

// Printf emits one formatted line. A trailing newline is added if missing.
func (d *Diagnostics) Printf(format string, args ...any) {
	if d == nil {
		return
	}
	line := fmt.Sprintf(format, args...)
	if len(line) == 0 || line[len(line)-1] != '\n' {
		line += "\n"
	}
	d.write([]byte(line))
}

func (d *Diagnostics) write(p []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, _ = d.w.Write(p)
}

type lockedWriter struct{ d *Diagnostics }

func (lw lockedWriter) Write(p []byte) (int, error) {
	lw.d.mu.Lock()
	defer lw.d.mu.Unlock()
	return lw.d.w.Write(p)
}

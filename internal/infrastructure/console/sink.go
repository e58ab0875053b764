package console

import (
	"fmt"
	"io"

	"BrochureGen/internal/ports"
)

// Sink prints status notifications as plain prefixed lines. It is the
// non-interactive StatusSink; the CLI carries a spinner-backed one.
type Sink struct {
	out io.Writer
}

var _ ports.StatusSink = (*Sink)(nil)

// New writes notifications to out.
func New(out io.Writer) *Sink {
	return &Sink{out: out}
}

// Info reports normal pipeline progress.
func (s *Sink) Info(msg string) { s.print("info", msg) }

// Warn reports degraded-but-continuing conditions.
func (s *Sink) Warn(msg string) { s.print("warn", msg) }

// Error reports failures that were swallowed by the pipeline.
func (s *Sink) Error(msg string) { s.print("error", msg) }

func (s *Sink) print(level, msg string) {
	if s == nil || s.out == nil {
		return
	}
	fmt.Fprintf(s.out, "[%s] %s\n", level, msg)
}

package log

import (
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// ZerologSink writes Sink entries as structured zerolog events.
type ZerologSink struct {
	logger zerolog.Logger
}

// NewZerolog creates a sink writing JSON lines to w. When w is a terminal
// the human readable console writer is used instead.
func NewZerolog(w io.Writer) *ZerologSink {
	if f, ok := w.(*os.File); ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		w = zerolog.ConsoleWriter{Out: f, TimeFormat: time.RFC3339}
	}
	return &ZerologSink{logger: zerolog.New(w).With().Timestamp().Logger()}
}

// Info implements Sink.
func (s *ZerologSink) Info(msg string, fields ...Field) {
	ev := s.logger.Info()
	for _, f := range fields {
		ev = ev.Str(f.Key, f.Value)
	}
	ev.Msg(msg)
}

// Discard is a Sink that drops every entry.
type Discard struct{}

// Info implements Sink.
func (Discard) Info(string, ...Field) {}

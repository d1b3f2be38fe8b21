package logsink

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/aretw0/weft/pkg/domain"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Text writes one human-readable line per entry, coloured by level when the
// destination is a terminal.
type Text struct {
	mu         sync.Mutex
	w          io.Writer
	profile    termenv.Profile
	timestamps bool
}

// TextOption configures a Text sink.
type TextOption func(*Text)

// WithProfile forces a colour profile (termenv.Ascii disables colour).
func WithProfile(p termenv.Profile) TextOption {
	return func(t *Text) {
		t.profile = p
	}
}

// WithTimestamps prefixes every line with the entry time.
func WithTimestamps() TextOption {
	return func(t *Text) {
		t.timestamps = true
	}
}

// NewText creates a Text sink writing to w. Colour is enabled only when w is a terminal.
func NewText(w io.Writer, opts ...TextOption) *Text {
	t := &Text{w: w, profile: termenv.Ascii}
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		t.profile = termenv.EnvColorProfile()
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

var levelColors = map[domain.LogLevel]string{
	domain.LevelDebug: "#6b7280",
	domain.LevelInfo:  "#818cf8",
	domain.LevelWarn:  "#f59e0b",
	domain.LevelError: "#ef4444",
}

// Log writes the entry. Node and message are passed through Sanitize.
func (t *Text) Log(_ context.Context, e domain.LogEntry) {
	level := t.profile.String(fmt.Sprintf("[%s]", e.Level)).Foreground(t.profile.Color(levelColors[e.Level]))
	line := level.String() + " "
	if t.timestamps && !e.Time.IsZero() {
		line = e.Time.Format("15:04:05.000") + " " + line
	}
	if e.Node != "" {
		line += t.profile.String(Sanitize(e.Node)).Bold().String() + ": "
	}
	line += Sanitize(e.Message)

	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.w, line)
}

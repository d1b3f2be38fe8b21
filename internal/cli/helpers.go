package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/aretw0/weft/internal/logging"
	"github.com/aretw0/weft/pkg/config"
)

// ErrRunFailed is returned when a run completed but at least one node failed.
var ErrRunFailed = errors.New("run finished with failures")

// SignalContext wraps a context and captures the signal that cancelled it.
type SignalContext struct {
	context.Context
	Cancel func()
	start  sync.Once
	stop   sync.Once
	sigCh  chan os.Signal
	sigVal os.Signal
	mu     sync.Mutex
}

// NewSignalContext creates a context that is cancelled on SIGINT or SIGTERM.
// It acts as a drop-in replacement for signal.NotifyContext but allows retrieving the signal.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{
		Context: ctx,
		Cancel:  cancel,
		sigCh:   make(chan os.Signal, 1),
	}

	sc.start.Do(func() {
		signal.Notify(sc.sigCh, os.Interrupt, syscall.SIGTERM)
		go func() {
			select {
			case sig := <-sc.sigCh:
				sc.mu.Lock()
				sc.sigVal = sig
				sc.mu.Unlock()
				sc.Cancel()
			case <-sc.Context.Done():
				// Context cancelled elsewhere
			}
			sc.stop.Do(func() {
				signal.Stop(sc.sigCh)
			})
		}()
	})

	return sc
}

// Signal returns the signal that caused the context to be cancelled, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sigVal
}

// LoadConfig reads the configuration file, falling back to defaults when it is missing.
func LoadConfig(path string) (*config.Config, error) {
	if path == "" {
		path = config.DefaultFile
	}
	return config.Load(path)
}

// createLogger configures the diagnostics logger.
// Diagnostics go to Stderr so they never mix with narration or JSON on Stdout.
func createLogger(cfg *config.Config, debug bool) *slog.Logger {
	if debug {
		return logging.NewWithFormat(slog.LevelDebug, cfg.Log.Format, os.Stderr)
	}
	if cfg.Log.Level == "" {
		return logging.NewNop()
	}
	return logging.NewWithFormat(logging.ParseLevel(cfg.Log.Level), cfg.Log.Format, os.Stderr)
}

// printSystemMessage prints a standardized system message.
func printSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}

func isInterrupted(err error) bool {
	return errors.Is(err, context.Canceled)
}

package cli

import (
	"log/slog"
	"path/filepath"
	"time"

	"github.com/aretw0/weft/internal/validator"
	"github.com/aretw0/weft/pkg/adapters/file"
	"github.com/fsnotify/fsnotify"
)

// debounce lets editors finish writing before the document is reloaded.
const debounce = 100 * time.Millisecond

// watch runs the graph, then runs it again each time its document changes.
// The engine is reused, so the namespace carries definitions from one run to the next.
func watch(ctx *SignalContext, engine *Engine, loader *file.Loader, opts RunOptions, logger *slog.Logger) error {
	path, err := loader.Resolve(opts.Graph)
	if err != nil {
		return err
	}
	path, err = filepath.Abs(path)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Watch the directory: editors often replace files instead of writing them in place.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return err
	}
	logger.Info("Starting Watcher", "path", path)

	rerun := func() {
		g, err := loader.Load(path)
		if err == nil {
			err = validator.ValidateGraph(g)
		}
		if err != nil {
			printSystemMessage(opts.Out, "Graph not loaded: %v", err)
			return
		}
		if _, err := runOnce(ctx, engine, g, opts); err != nil && !isInterrupted(err) {
			printSystemMessage(opts.Out, "Run error: %v", err)
		}
	}

	rerun()
	printSystemMessage(opts.Out, "Waiting for changes to '%s'...", filepath.Base(path))

	var timer <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			printSystemMessage(opts.Out, "Watcher stopped.")
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != path || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			logger.Debug("Change detected", "event", ev.String())
			timer = time.After(debounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error", "err", err)
		case <-timer:
			timer = nil
			printSystemMessage(opts.Out, "Change detected in '%s'.", filepath.Base(path))
			rerun()
			printSystemMessage(opts.Out, "Waiting for changes...")
		}
	}
}

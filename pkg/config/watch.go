package config

import (
	"context"
	"fmt"

	"github.com/fsnotify/fsnotify"

	"github.com/drcoopertbbt/BF3-5G-Demo/internal/logger"
)

// Watch monitors the config file and invokes onChange with a freshly loaded
// configuration after every write to it.
//
// A write that produces an invalid configuration is logged and skipped; the
// previous configuration stays in effect. The watcher stops when ctx is
// cancelled.
//
// Used to pick up logging level changes without restarting the process.
func Watch(ctx context.Context, path string, nfType string, onChange func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create config watcher: %w", err)
	}

	if err := watcher.Add(path); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch config file: %w", err)
	}

	go func() {
		defer func() { _ = watcher.Close() }()

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}

				if event.Op&fsnotify.Write == fsnotify.Write {
					cfg, err := Load(path, nfType)
					if err != nil {
						logger.Warn("Config reload failed, keeping previous configuration",
							"path", path, "error", err)
						continue
					}

					logger.Info("Config reloaded", "path", path)
					onChange(cfg)
				}

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("Config watcher error", "error", err)
			}
		}
	}()

	return nil
}

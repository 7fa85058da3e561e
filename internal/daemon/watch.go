package daemon

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/forgeai/companion/internal/config"
)

// WatchRules hot-reloads the engine's user rule set when the config file
// changes. Reload failures keep the previous rules in force; a broken edit
// must never leave the companion without a policy.
func (s *IPCServer) WatchRules(ctx context.Context, configPath, credentialDir string) error {
	if configPath == "" {
		return fmt.Errorf("config path is required for rule watching")
	}
	// fsnotify reports absolute event paths; a relative or uncleaned
	// configPath would never compare equal.
	abs, err := filepath.Abs(configPath)
	if err != nil {
		return fmt.Errorf("resolving config path: %w", err)
	}
	configPath = filepath.Clean(abs)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}

	// Watch the directory: editors replace files, which drops a watch on
	// the file itself.
	if err := watcher.Add(filepath.Dir(configPath)); err != nil {
		watcher.Close()
		return fmt.Errorf("watching config dir: %w", err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != configPath {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				cfg, err := config.Load(config.LoadOptions{ConfigPath: configPath})
				if err != nil {
					s.logger.Warn("rules reload skipped, config invalid", "err", err)
					continue
				}
				s.engine.Reload(cfg.RuleSet(), credentialDir)
				s.logger.Info("rules reloaded", "config", configPath)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.logger.Warn("config watcher error", "err", err)
			}
		}
	}()
	return nil
}

// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package api

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/AleutianAI/AleutianRL/services/reward"
)

// reloadDebounce is how long to wait after a write event before
// re-reading the config file. Editors often emit several events for
// one save.
const reloadDebounce = 250 * time.Millisecond

// ConfigWatcher hot-reloads the reward configuration file into a
// running Service.
//
// # Description
//
// Watches the directory containing the config file (watching the file
// itself breaks on editors that rename-and-replace on save) and swaps
// the service scorer when the file changes and the new config
// validates. Invalid edits are logged and ignored; the running config
// stays in effect.
//
// # Thread Safety
//
// Start may only be called once. The reload path goes through
// Service.SwapConfig, which is safe under concurrent scoring.
type ConfigWatcher struct {
	path    string
	svc     *Service
	watcher *fsnotify.Watcher
}

// NewConfigWatcher creates a watcher for the given config file path.
func NewConfigWatcher(path string, svc *Service) (*ConfigWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch config dir: %w", err)
	}

	return &ConfigWatcher{path: abs, svc: svc, watcher: w}, nil
}

// Start runs the watch loop until ctx is cancelled.
func (cw *ConfigWatcher) Start(ctx context.Context) {
	go cw.loop(ctx)
}

func (cw *ConfigWatcher) loop(ctx context.Context) {
	defer cw.watcher.Close()

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-cw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != cw.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(reloadDebounce)
				timerC = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(reloadDebounce)
			}

		case <-timerC:
			timer = nil
			timerC = nil
			cw.reload()

		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			cw.svc.logger.Warn("config watcher error", "error", err)
		}
	}
}

func (cw *ConfigWatcher) reload() {
	cfg, err := reward.LoadConfig(cw.path)
	if err != nil {
		cw.svc.logger.Error("config reload rejected, keeping current config",
			"path", cw.path, "error", err)
		return
	}
	if err := cw.svc.SwapConfig(cfg); err != nil {
		cw.svc.logger.Error("config swap failed", "path", cw.path, "error", err)
		return
	}
	cw.svc.logger.Info("reward config reloaded", "path", cw.path)
}

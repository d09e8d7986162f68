// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for ragchat.
package config

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchDebounce coalesces editor write bursts into one reload.
const watchDebounce = 250 * time.Millisecond

// Watcher reloads the config file when it changes on disk and hands the
// fresh config to the registered callback.
type Watcher struct {
	path     string
	onReload func(*Config)

	watcher  *fsnotify.Watcher
	mu       sync.Mutex
	lastFire time.Time
	ctx      context.Context
	cancel   context.CancelFunc
}

// NewWatcher creates a watcher for the given config path. onReload is
// called from the watcher goroutine with each successfully reloaded config;
// parse or validation failures keep the previous config and are ignored.
func NewWatcher(path string, onReload func(*Config)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Watcher{
		path:     path,
		onReload: onReload,
		watcher:  fw,
		ctx:      ctx,
		cancel:   cancel,
	}, nil
}

// Watch starts watching. The parent directory is watched rather than the
// file itself so atomic-rename saves (the common editor pattern) are seen.
func (w *Watcher) Watch() error {
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return err
	}
	go w.processEvents()
	return nil
}

// Close stops watching and releases resources.
func (w *Watcher) Close() error {
	w.cancel()
	return w.watcher.Close()
}

func (w *Watcher) processEvents() {
	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			w.maybeReload()

		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			// Watch errors are transient; keep going.
		}
	}
}

// maybeReload debounces and reloads. Invalid configs are dropped so a
// half-saved file never clobbers a working one.
func (w *Watcher) maybeReload() {
	w.mu.Lock()
	now := time.Now()
	if now.Sub(w.lastFire) < watchDebounce {
		w.mu.Unlock()
		return
	}
	w.lastFire = now
	w.mu.Unlock()

	cfg, err := LoadFromPath(w.path)
	if err != nil {
		return
	}
	if w.onReload != nil {
		w.onReload(cfg)
	}
}

package config

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

// ThresholdWatcher reloads the scaling thresholds file when it changes and
// hands the new values to a callback. A reload that fails to parse keeps
// the previous thresholds in effect.
type ThresholdWatcher struct {
	path    string
	log     *logrus.Logger
	watcher *fsnotify.Watcher
	onLoad  func(ScalingThresholds)
}

// NewThresholdWatcher creates a watcher for the given thresholds file.
func NewThresholdWatcher(path string, onLoad func(ScalingThresholds), log *logrus.Logger) (*ThresholdWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	// Watch the directory: editors and configmap mounts replace the file
	// rather than writing it in place.
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", path, err)
	}
	return &ThresholdWatcher{path: path, log: log, watcher: w, onLoad: onLoad}, nil
}

// Start watches for changes until the context is cancelled.
func (t *ThresholdWatcher) Start(ctx context.Context) {
	defer t.watcher.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-t.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(t.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			thresholds, err := LoadThresholds(t.path)
			if err != nil {
				t.log.WithError(err).Warn("Thresholds reload failed, keeping previous values")
				continue
			}
			t.log.WithField("path", t.path).Info("Scaling thresholds reloaded")
			t.onLoad(thresholds)
		case err, ok := <-t.watcher.Errors:
			if !ok {
				return
			}
			t.log.WithError(err).Warn("Thresholds watcher error")
		}
	}
}

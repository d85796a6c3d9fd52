package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"wartimes-fbx-exporter/internal/export"
)

// debounceWindow absorbs the burst of events editors fire per save.
const debounceWindow = 500 * time.Millisecond

// Watch re-exports container files as they change under dir.
// Subdirectories are watched recursively and new ones are picked up as
// they appear. Blocks until the watcher closes or fails.
func Watch(dir string, cfg Config) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("batch: watcher: %w", err)
	}
	defer watcher.Close()

	if err := watchTree(watcher, dir); err != nil {
		return fmt.Errorf("batch: watch %s: %w", dir, err)
	}

	convert := cfg.Convert
	if convert == nil {
		convert = export.Convert
	}

	cfg.Logger.Info("watching", "dir", dir)

	lastRun := make(map[string]time.Time)

	for {
		select {
		case e, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if e.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(e.Name); err == nil && info.IsDir() {
					if err := watchTree(watcher, e.Name); err != nil {
						cfg.Logger.Error("watch add failed", "dir", e.Name, "err", err)
					}
					continue
				}
			}
			if e.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !strings.EqualFold(filepath.Ext(e.Name), ".fbx") {
				continue
			}
			if t, seen := lastRun[e.Name]; seen && time.Since(t) < debounceWindow {
				continue
			}
			lastRun[e.Name] = time.Now()

			res := convertOne(cfg, convert, e.Name)
			if res.Success {
				cfg.Logger.Info("re-exported",
					"input", res.Input,
					"output", res.Output,
					"vertices", res.Vertices,
					"bones", res.Bones)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			cfg.Logger.Error("watch error", "err", err)
		}
	}
}

func watchTree(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
}

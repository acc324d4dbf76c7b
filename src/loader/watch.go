package loader

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reports changes to the on-disk documents this loader has read.
// It watches their parent directories, so editors that replace files on
// save are seen too. onChange runs on the watch goroutine with the changed
// path; it may Reset and reload, after which any newly read documents are
// watched as well. Watch returns when ctx is done.
func (l *Loader) Watch(ctx context.Context, onChange func(path string)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	watched := map[string]bool{}
	tracked := map[string]bool{}
	refresh := func() {
		tracked = map[string]bool{}
		for _, f := range l.Files() {
			abs, err := filepath.Abs(f)
			if err != nil {
				abs = f
			}
			tracked[abs] = true

			dir := filepath.Dir(abs)
			if watched[dir] {
				continue
			}
			if err := watcher.Add(dir); err != nil {
				l.log.Warnf("watching %s: %v", dir, err)
				continue
			}
			watched[dir] = true
			l.log.Debugf("watching %s", dir)
		}
	}
	refresh()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			name, err := filepath.Abs(event.Name)
			if err != nil {
				name = event.Name
			}
			if !tracked[name] {
				continue
			}
			l.log.Debugf("changed: %s (%s)", event.Name, event.Op)
			onChange(event.Name)
			refresh()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			l.log.Warnf("watcher error: %v", err)
		}
	}
}

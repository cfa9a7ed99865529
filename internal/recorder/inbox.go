package recorder

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// imageExts are the file types the inbox importer accepts.
var imageExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".bmp": true, ".webp": true, ".gif": true,
}

// WatchInbox watches the session's inbox/ directory and sends the path of
// every image file dropped there on the returned channel until ctx is
// cancelled. This is the terminal counterpart of dragging an image into the
// recorder: the file becomes a custom step.
func WatchInbox(ctx context.Context, dir string) (<-chan string, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, err
	}

	out := make(chan string, 8)
	go func() {
		defer close(out)
		defer watcher.Close()

		// A drop shows up as Create followed by one or more Writes.
		// Import on Create; a direct rename into the directory produces
		// only Create as well.
		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Create) {
					continue
				}
				if !imageExts[strings.ToLower(filepath.Ext(event.Name))] {
					continue
				}
				select {
				case out <- event.Name:
				case <-ctx.Done():
					return
				}

			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
				// Watcher errors are non-fatal; keep watching.
			}
		}
	}()
	return out, nil
}

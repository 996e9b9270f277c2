package logging

import (
	"fmt"

	"github.com/fsnotify/fsnotify"
)

// ProfileWatcher notices externally-triggered `--configure` reloads of
// the logging profile while a long-lived front end (the CLI's
// long-running mode, or the TUI) is attached. It watches the one profile
// path it is given; removals of session log directories are not
// observed.
type ProfileWatcher struct {
	watcher *fsnotify.Watcher
}

// WatchProfile starts watching profilePath for writes, invoking onReload
// whenever the file changes.
func WatchProfile(profilePath string, onReload func()) (*ProfileWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create profile watcher: %w", err)
	}
	if err := w.Add(profilePath); err != nil {
		w.Close()
		return nil, fmt.Errorf("watch profile path: %w", err)
	}

	go func() {
		for {
			select {
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
					onReload()
				}
			case _, ok := <-w.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return &ProfileWatcher{watcher: w}, nil
}

// Close stops watching.
func (p *ProfileWatcher) Close() error {
	return p.watcher.Close()
}

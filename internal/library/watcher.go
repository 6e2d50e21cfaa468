package library

import (
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/valcheur/go-steam-monitor/internal/util"
)

// ManifestEvent reports a change to one appmanifest file: an install, update
// or removal of a game.
type ManifestEvent struct {
	Path      string
	Operation string
}

// ManifestWatcher watches every library folder's steamapps directory and
// emits an event whenever an appmanifest_*.acf file changes.
type ManifestWatcher struct {
	watcher *fsnotify.Watcher
	events  chan ManifestEvent
}

// WatchManifests starts watching the installation's library folders. Folders
// that cannot be watched are skipped with a log line so a detached external
// drive does not kill the watcher.
func (d *Discovery) WatchManifests() (*ManifestWatcher, error) {
	folders, err := d.LibraryFolders()
	if err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	mw := &ManifestWatcher{
		watcher: watcher,
		events:  make(chan ManifestEvent, 100),
	}

	for _, folder := range folders {
		steamapps := filepath.Join(folder, "steamapps")
		if err := watcher.Add(steamapps); err != nil {
			util.LogWarnf("Cannot watch library folder %s: %v", steamapps, err)
		}
	}

	go mw.processEvents()

	return mw, nil
}

func (mw *ManifestWatcher) processEvents() {
	defer close(mw.events)
	for {
		select {
		case event, ok := <-mw.watcher.Events:
			if !ok {
				return
			}

			name := filepath.Base(event.Name)
			if strings.HasPrefix(name, "appmanifest_") && strings.HasSuffix(name, ".acf") {
				mw.events <- ManifestEvent{
					Path:      event.Name,
					Operation: event.Op.String(),
				}
			}

		case err, ok := <-mw.watcher.Errors:
			if !ok {
				return
			}
			util.LogError("Library monitoring error: " + err.Error())
		}
	}
}

// Events returns the manifest change stream.
func (mw *ManifestWatcher) Events() <-chan ManifestEvent {
	return mw.events
}

// Close stops watching. The event channel drains and closes shortly after.
func (mw *ManifestWatcher) Close() error {
	return mw.watcher.Close()
}

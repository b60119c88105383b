package fswatch

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/AtMostafa/bnd/pkg/errors"
	"github.com/AtMostafa/bnd/pkg/naming"
)

var fs = afero.NewOsFs()

// Watcher reports changes to a directory tree.
type Watcher struct {
	// Events receives a value whenever something in the tree changes.
	// Changes that happen before the previous event is received are combined
	// into a single event.
	Events chan struct{}

	watcher *fsnotify.Watcher
}

// Watch watches the directory tree at `root`. fsnotify doesn't watch
// directories recursively, so every subdirectory is watched individually,
// including the ones created after the watch starts. Hidden directories are
// ignored.
func Watch(root string) (*Watcher, error) {
	pathsToWatch, err := getPathsToWatch(root)
	if err != nil {
		return nil, errors.WithContext(err, "get paths")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.WithContext(err, "create watcher")
	}

	for _, path := range pathsToWatch {
		if err := watcher.Add(path); err != nil {
			// Close the watcher so that we release the file handlers for the
			// previously added paths.
			if err := watcher.Close(); err != nil {
				log.WithError(err).Warn("Failed to close file watcher")
			}

			return nil, errors.WithContext(err, fmt.Sprintf("watch %q", path))
		}
	}

	go func() {
		for err := range watcher.Errors {
			log.WithError(err).Warn("File watcher error")
		}
	}()

	return &Watcher{
		Events:  combineUpdates(watchNewDirs(watcher, watcher.Events)),
		watcher: watcher,
	}, nil
}

// Close stops the watch and releases its file handles.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

// adder is the part of fsnotify.Watcher used to watch new directories.
type adder interface {
	Add(path string) error
}

// watchNewDirs forwards `events`, and starts watching any directory that's
// created in the tree.
func watchNewDirs(watcher adder, events <-chan fsnotify.Event) <-chan fsnotify.Event {
	forwarded := make(chan fsnotify.Event)
	go func() {
		defer close(forwarded)
		for event := range events {
			if event.Op&fsnotify.Create == fsnotify.Create {
				addCreatedDir(watcher, event.Name)
			}
			forwarded <- event
		}
	}()
	return forwarded
}

func addCreatedDir(watcher adder, path string) {
	fi, err := fs.Stat(path)
	if err != nil || !fi.IsDir() {
		return
	}

	// The new directory may already have children by the time we see it.
	paths, err := getPathsToWatch(path)
	if err != nil {
		log.WithError(err).WithField("path", path).Debug("Failed to list new directory")
		return
	}

	for _, path := range paths {
		if err := watcher.Add(path); err != nil {
			log.WithError(err).WithField("path", path).Warn("Failed to watch new directory")
		}
	}
}

func combineUpdates(updates <-chan fsnotify.Event) chan struct{} {
	combined := make(chan struct{}, 1)
	go func() {
		defer close(combined)
		for range updates {
			select {
			case combined <- struct{}{}:
			default:
			}
		}
	}()
	return combined
}

func getPathsToWatch(root string) (paths []string, err error) {
	fi, err := fs.Stat(root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.FileNotFound{Path: root}
		}
		return nil, errors.WithContext(err, "stat")
	}

	if !fi.IsDir() {
		return nil, errors.NewUsageError("%q must be a directory.", root)
	}

	err = afero.Walk(fs, root, func(path string, fi os.FileInfo, err error) error {
		if err != nil {
			return errors.WithContext(err, "walk error")
		}

		if !fi.IsDir() {
			return nil
		}

		if path != root && naming.IsHidden(fi.Name()) {
			return filepath.SkipDir
		}

		paths = append(paths, path)
		return nil
	})
	return paths, err
}

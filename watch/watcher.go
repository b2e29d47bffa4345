// Package watch re-exports scene manifests whenever they, or the
// resources they reference, change on disk.
package watch

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/godotengine/collada-exporter/batch"
	"github.com/godotengine/collada-exporter/core"
)

// Debounce window: editors fire several events per save, and a half
// written manifest must not be exported.
const settleDelay = 250 * time.Millisecond

type Watcher struct {
	cfg batch.Config

	mutex    sync.Mutex
	pending  map[string]time.Time
	done     chan struct{}
	fsnotify *fsnotify.Watcher
	isClosed bool
}

func NewWatcher(cfg batch.Config) (*Watcher, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		cfg:      cfg,
		pending:  make(map[string]time.Time),
		done:     make(chan struct{}),
		fsnotify: fsWatch,
	}, nil
}

// Start watches the input directory recursively and blocks, exporting
// changed manifests until Close is called.
func (w *Watcher) Start() error {
	w.mutex.Lock()
	closed := w.isClosed
	w.mutex.Unlock()
	if closed {
		return errors.New("watcher already closed")
	}
	if err := w.watchRecursive(w.cfg.InputDir); err != nil {
		return err
	}

	ticker := time.NewTicker(settleDelay)
	defer ticker.Stop()

	for {
		select {
		case e, ok := <-w.fsnotify.Events:
			if !ok {
				return nil
			}
			w.handleEvent(e)

		case err, ok := <-w.fsnotify.Errors:
			if !ok {
				return nil
			}
			core.LogError(err.Error())

		case <-ticker.C:
			w.exportSettled()

		case <-w.done:
			return nil
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	w.mutex.Lock()
	if w.isClosed {
		w.mutex.Unlock()
		return nil
	}
	w.isClosed = true
	w.mutex.Unlock()

	close(w.done)
	return w.fsnotify.Close()
}

// watchRecursive adds all directories under the given one to the
// watch list.
func (w *Watcher) watchRecursive(path string) error {
	return filepath.Walk(path, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			return w.fsnotify.Add(walkPath)
		}
		return nil
	})
}

func (w *Watcher) handleEvent(e fsnotify.Event) {
	// New directories need their own watches.
	if e.Op&fsnotify.Create != 0 {
		if s, err := os.Stat(e.Name); err == nil && s.IsDir() {
			if err := w.watchRecursive(e.Name); err != nil {
				core.LogError("watch %s: %v", e.Name, err)
			}
			return
		}
	}

	if e.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
		return
	}

	for _, manifest := range w.affectedManifests(e.Name) {
		w.mutex.Lock()
		w.pending[manifest] = time.Now()
		w.mutex.Unlock()
	}
}

// affectedManifests maps a changed file to the manifests to re-export:
// the file itself if it is a manifest, otherwise every manifest in the
// same directory or above, since resources are referenced by relative
// path.
func (w *Watcher) affectedManifests(path string) []string {
	if strings.HasSuffix(path, ".scene.toml") {
		return []string{path}
	}

	manifests, err := batch.Discover(w.cfg.InputDir)
	if err != nil {
		core.LogError("discover manifests: %v", err)
		return nil
	}

	dir := filepath.Dir(path)
	var affected []string
	for _, m := range manifests {
		mdir := filepath.Dir(m)
		if strings.HasPrefix(dir+string(filepath.Separator), mdir+string(filepath.Separator)) {
			affected = append(affected, m)
		}
	}
	return affected
}

// exportSettled exports every pending manifest whose last event is
// older than the debounce window.
func (w *Watcher) exportSettled() {
	w.mutex.Lock()
	var ready []string
	now := time.Now()
	for m, at := range w.pending {
		if now.Sub(at) >= settleDelay {
			ready = append(ready, m)
			delete(w.pending, m)
		}
	}
	w.mutex.Unlock()

	for _, m := range ready {
		if _, err := os.Stat(m); err != nil {
			continue
		}
		for _, r := range batch.Run(w.cfg, []string{m}) {
			if r.Success {
				core.LogInfo("exported %s -> %s", r.Input, r.Output)
			} else {
				core.LogError("export %s: %s", r.Input, r.Error)
			}
		}
	}
}

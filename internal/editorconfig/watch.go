package editorconfig

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"mycad/internal/logger"
)

// Watcher reloads the config file when it changes on disk. The fsnotify goroutine only
// sends; Poll is called from the frame loop so preferences are applied on the interaction thread.
type Watcher struct {
	w       *fsnotify.Watcher
	path    string
	log     *logger.Logger
	updates chan Prefs
	done    chan struct{}
}

// Watch starts watching path. The directory is watched rather than the file so editors that
// replace the file on save are still seen.
func Watch(path string, log *logger.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(path)
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, err
	}
	w := &Watcher{w: fw, path: filepath.Clean(path), log: log, updates: make(chan Prefs, 1), done: make(chan struct{})}
	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	defer close(w.done)
	for {
		select {
		case ev, ok := <-w.w.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path || !ev.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			p, err := Load(w.path)
			if err != nil {
				w.log.Warnf("%v", err)
				continue
			}
			// Keep only the newest reload.
			select {
			case <-w.updates:
			default:
			}
			w.updates <- p
		case err, ok := <-w.w.Errors:
			if !ok {
				return
			}
			w.log.Warnf("config watcher: %v", err)
		}
	}
}

// Poll returns the latest reloaded preferences, if any arrived since the last call.
func (w *Watcher) Poll() (Prefs, bool) {
	select {
	case p := <-w.updates:
		return p, true
	default:
		return Prefs{}, false
	}
}

// Close stops watching and waits for the watcher goroutine to exit.
func (w *Watcher) Close() error {
	err := w.w.Close()
	<-w.done
	return err
}

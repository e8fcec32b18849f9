package scholarpage

import (
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/eringen/scholarpage/content"
	"github.com/eringen/scholarpage/editor"
)

const watchQuiet = 300 * time.Millisecond

// watchContent re-imports path whenever it changes on disk. The parent
// directory is watched because editors often replace the file instead of
// writing it in place. The returned func stops the watcher.
func (a *App) watchContent(path string) (func(), error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, err
	}

	reload := editor.NewDebouncer(watchQuiet)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != abs || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
					continue
				}
				reload.Trigger(abs, func() { a.reloadContent(abs) })
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				a.Logger().Errorf("watch %s: %v", abs, err)
			}
		}
	}()

	return func() {
		w.Close()
		<-done
		reload.Stop()
	}, nil
}

// reloadContent imports the content file when it differs from the live
// site. Invalid files are logged and ignored.
func (a *App) reloadContent(path string) {
	s, err := readContentFile(path, a.Logger())
	if err != nil {
		a.Logger().Warnf("content file %s not imported: %v", path, err)
		return
	}
	if content.Equal(s, a.Site.State().Current()) {
		return
	}
	if err := a.Site.Import(s); err != nil {
		a.Logger().Errorf("import %s: %v", path, err)
		return
	}
	a.metrics.imports.WithLabelValues("watch").Inc()
	a.Logger().Infof("content file %s imported", path)
}

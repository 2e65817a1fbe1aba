package media

import (
	"fmt"
	"path/filepath"
	"sync"

	"shuttlecast/logger"

	"github.com/fsnotify/fsnotify"
)

// Watcher re-registers the audio file whenever it is rewritten on disk, which
// drops any stream still reading the old contents.
type Watcher struct {
	reg  *Registry
	path string
	fw   *fsnotify.Watcher

	done      chan struct{}
	closeOnce sync.Once
}

// WatchAudio starts watching path. The parent directory is watched so that
// editors and downloaders that replace the file by rename are noticed too.
func WatchAudio(reg *Registry, path string) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	w := &Watcher{
		reg:  reg,
		path: abs,
		fw:   fw,
		done: make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	defer close(w.done)
	for {
		select {
		case ev, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				logger.Info("音频文件已变更，重新注册",
					logger.String("path", w.path),
					logger.String("op", ev.Op.String()))
				w.reg.SetAudio(w.path)
			}
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			logger.Warn("文件监听出错", logger.String("path", w.path), logger.ErrorField(err))
		}
	}
}

// Close stops the watcher and waits for its goroutine to exit.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		err = w.fw.Close()
		<-w.done
	})
	return err
}

package watcher

import (
	"context"
	"log"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// Job is a texture file waiting to be annotated.
type Job struct {
	FilePath string
}

type Watcher struct {
	path    string
	watcher *fsnotify.Watcher
}

func New(path string) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		path:    path,
		watcher: fsWatcher,
	}, nil
}

// Start watches the configured directory and sends a Job for every texture
// file that is created or modified. It blocks until ctx is cancelled.
func (w *Watcher) Start(ctx context.Context, jobs chan<- Job) {
	defer w.watcher.Close()

	done := make(chan bool)

	go func() {
		for {
			select {
			case <-ctx.Done():
				done <- true
				return
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Create|fsnotify.Write) != 0 && isTexture(event.Name) {
					log.Println("Texture created or modified:", event.Name)
					select {
					case jobs <- Job{FilePath: event.Name}:
					case <-ctx.Done():
						return
					}
				}
			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				log.Println("Error:", err)
			}
		}
	}()

	err := w.watcher.Add(w.path)
	if err != nil {
		log.Fatal(err)
	}

	<-done
}

func isTexture(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".jpg", ".jpeg", ".gif":
		return true
	}
	return false
}

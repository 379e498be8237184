// ABOUTME: Live corpus reloading driven by filesystem notifications
// ABOUTME: Debounces event bursts and swaps the snapshot on quiet

package corpus

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the store whenever .msong files under its directory change.
// Events are debounced so that a copy-in of many files triggers one reload.
// The watcher runs until stop is closed. onReload, if non-nil, is called
// after every successful reload.
func (st *Store) Watch(stop <-chan struct{}, onReload func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create corpus watcher: %w", err)
	}
	if err := watcher.Add(st.dir); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch corpus directory: %w", err)
	}

	go func() {
		defer func() { _ = watcher.Close() }()

		var pending <-chan time.Time
		for {
			select {
			case <-stop:
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !strings.HasSuffix(event.Name, ".msong") {
					continue
				}
				if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
					continue
				}
				pending = time.After(reloadDebounce)

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("Warning: corpus watcher error: %v", err)

			case <-pending:
				pending = nil
				if err := st.Load(); err != nil {
					log.Printf("Warning: corpus reload failed: %v", err)
					continue
				}
				log.Printf("Corpus reloaded: %d songs", st.Len())
				if onReload != nil {
					onReload()
				}
			}
		}
	}()
	return nil
}

package filesystem

import (
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/mecattaf/web-shell-sub003/internal/events"
	"github.com/mecattaf/web-shell-sub003/internal/infrastructure/logging"
	"github.com/mecattaf/web-shell-sub003/internal/shared/id"
)

// watchSet tracks active fsnotify watchers keyed by app id. Each watch
// owns its own watcher so cancelling one app's watch never disturbs
// another's.
type watchSet struct {
	bus *events.Bus
	log *logging.Logger

	mu      sync.Mutex
	watches map[string]*watch // watch id -> watch
}

type watch struct {
	id      string
	appID   string
	path    string
	watcher *fsnotify.Watcher
	done    chan struct{}
}

func newWatchSet(bus *events.Bus, log *logging.Logger) *watchSet {
	return &watchSet{
		bus:     bus,
		log:     log,
		watches: make(map[string]*watch),
	}
}

// add starts watching path for appID and returns the watch id.
func (s *watchSet) add(appID, path string) (string, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return "", err
	}
	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return "", err
	}

	w := &watch{
		id:      id.NewCallID().String(),
		appID:   appID,
		path:    path,
		watcher: watcher,
		done:    make(chan struct{}),
	}

	s.mu.Lock()
	s.watches[w.id] = w
	s.mu.Unlock()

	go s.pump(w)
	return w.id, nil
}

// pump forwards watcher events onto the bus until the watch is removed.
func (s *watchSet) pump(w *watch) {
	for {
		select {
		case <-w.done:
			return
		case evt, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			s.bus.Publish(events.Event{
				Type:  events.FileChanged,
				AppID: w.appID,
				Data: map[string]any{
					"watch_id": w.id,
					"path":     evt.Name,
					"op":       evt.Op.String(),
				},
			})
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			s.log.Warn("watch error", zap.String("path", w.path), zap.Error(err))
		}
	}
}

// remove stops a watch. The app id must match the watch owner.
func (s *watchSet) remove(appID, watchID string) bool {
	s.mu.Lock()
	w, ok := s.watches[watchID]
	if ok && w.appID == appID {
		delete(s.watches, watchID)
	} else {
		ok = false
	}
	s.mu.Unlock()

	if !ok {
		return false
	}
	close(w.done)
	w.watcher.Close()
	return true
}

// closeAll stops every watch.
func (s *watchSet) closeAll() error {
	s.mu.Lock()
	all := make([]*watch, 0, len(s.watches))
	for _, w := range s.watches {
		all = append(all, w)
	}
	s.watches = make(map[string]*watch)
	s.mu.Unlock()

	for _, w := range all {
		close(w.done)
		w.watcher.Close()
	}
	return nil
}

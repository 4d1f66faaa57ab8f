package dispatch

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"heartpredict/ml"
)

// cachedLoader keeps loaded classifiers for the process lifetime, bounded by
// an LRU. With a watcher attached, any change to an artifact file evicts it
// so the next dispatch sees the new bytes, same as an uncached reload.
//
// gens counts invalidations per path. A load only populates the cache if no
// invalidation happened while it was reading the file.
type cachedLoader struct {
	next    Loader
	cache   *lru.Cache[string, ml.Classifier]
	mu      sync.Mutex
	gens    map[string]uint64
	watcher *fsnotify.Watcher
	logger  *zap.Logger
	done    chan struct{}
	wg      sync.WaitGroup
	once    sync.Once
}

func newCachedLoader(next Loader, size int, models []ModelSpec, watch bool, logger *zap.Logger) (*cachedLoader, error) {
	cache, err := lru.New[string, ml.Classifier](size)
	if err != nil {
		return nil, err
	}
	l := &cachedLoader{
		next:   next,
		cache:  cache,
		gens:   make(map[string]uint64),
		logger: logger,
		done:   make(chan struct{}),
	}
	if !watch {
		return l, nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("artifact watcher: %w", err)
	}
	dirs := make(map[string]bool)
	for _, m := range models {
		dir := filepath.Dir(filepath.Clean(m.Path))
		if dirs[dir] {
			continue
		}
		dirs[dir] = true
		if err := watcher.Add(dir); err != nil {
			watcher.Close()
			return nil, fmt.Errorf("watch %s: %w", dir, err)
		}
	}
	l.watcher = watcher
	l.wg.Add(1)
	go l.watch()
	return l, nil
}

func cacheKey(spec ModelSpec) string {
	return filepath.Clean(spec.Path)
}

func (l *cachedLoader) Load(spec ModelSpec) (ml.Classifier, error) {
	key := cacheKey(spec)
	if model, ok := l.cache.Get(key); ok {
		return model, nil
	}
	l.mu.Lock()
	gen := l.gens[key]
	l.mu.Unlock()

	model, err := l.next.Load(spec)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	if l.gens[key] == gen {
		l.cache.Add(key, model)
	}
	l.mu.Unlock()
	return model, nil
}

// invalidate drops path from the cache and fences off loads already in flight.
func (l *cachedLoader) invalidate(path string) bool {
	key := filepath.Clean(path)
	l.mu.Lock()
	defer l.mu.Unlock()
	l.gens[key]++
	return l.cache.Remove(key)
}

func (l *cachedLoader) watch() {
	defer l.wg.Done()
	for {
		select {
		case event, ok := <-l.watcher.Events:
			if !ok {
				return
			}
			if event.Op == fsnotify.Chmod {
				continue
			}
			if l.invalidate(event.Name) {
				l.logger.Info("artifact changed, evicted from cache",
					zap.String("path", event.Name),
					zap.String("op", event.Op.String()))
			}
		case err, ok := <-l.watcher.Errors:
			if !ok {
				return
			}
			l.logger.Warn("artifact watcher error", zap.Error(err))
		case <-l.done:
			return
		}
	}
}

func (l *cachedLoader) Close() error {
	if l.watcher == nil {
		return nil
	}
	var err error
	l.once.Do(func() {
		close(l.done)
		err = l.watcher.Close()
		l.wg.Wait()
	})
	return err
}

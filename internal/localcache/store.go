// Package localcache persists the recipe list in a key-value store that acts
// as the on-device fallback tier, and reports writes made by other sessions.
package localcache

import (
	"context"
	"fmt"
	"sync"

	"github.com/pageza/recipe-hub/backend/internal/model"
)

var (
	// ErrQuotaExceeded is returned by Store.Set when the value does not fit.
	ErrQuotaExceeded = fmt.Errorf("%w: quota exceeded", model.ErrStorageUnavailable)
	ErrUnavailable   = fmt.Errorf("%w: store not reachable", model.ErrStorageUnavailable)
)

// Change describes a write to a key observed from another session.
type Change struct {
	Key     string
	Value   string
	Deleted bool
}

// Store is a string-valued key-value store. A failed Set leaves the previous
// value in place.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	// Watch calls fn for changes to key written by other sessions. Only the
	// latest pending change is delivered when several arrive back to back.
	Watch(ctx context.Context, key string, fn func(Change)) (stop func(), err error)
}

// dispatcher delivers changes to a watcher on its own goroutine, keeping only
// the most recent undelivered change.
type dispatcher struct {
	fn      func(Change)
	mu      sync.Mutex
	pending *Change
	signal  chan struct{}
	done    chan struct{}
	once    sync.Once
}

func newDispatcher(fn func(Change)) *dispatcher {
	d := &dispatcher{
		fn:     fn,
		signal: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	go d.run()
	return d
}

func (d *dispatcher) push(c Change) {
	d.mu.Lock()
	d.pending = &c
	d.mu.Unlock()

	select {
	case d.signal <- struct{}{}:
	default:
	}
}

func (d *dispatcher) run() {
	for {
		select {
		case <-d.done:
			return
		case <-d.signal:
			d.mu.Lock()
			c := d.pending
			d.pending = nil
			d.mu.Unlock()
			if c != nil {
				d.fn(*c)
			}
		}
	}
}

func (d *dispatcher) stop() {
	d.once.Do(func() { close(d.done) })
}

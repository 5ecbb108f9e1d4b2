package localcache

import (
	"context"
	"sync"
)

// MemoryBackend is shared in-process storage. Each Session models one client
// (a browser tab, a CLI process) writing to the same underlying data.
type MemoryBackend struct {
	mu          sync.Mutex
	data        map[string]string
	maxBytes    int
	unavailable bool
	watchers    map[int]memoryWatcher
	nextID      int
}

type memoryWatcher struct {
	origin string
	key    string
	d      *dispatcher
}

// NewMemoryBackend creates a backend holding at most maxBytes of keys and
// values; zero means unlimited.
func NewMemoryBackend(maxBytes int) *MemoryBackend {
	return &MemoryBackend{
		data:     make(map[string]string),
		maxBytes: maxBytes,
		watchers: make(map[int]memoryWatcher),
	}
}

// SetAvailable toggles whether the backend accepts operations.
func (b *MemoryBackend) SetAvailable(ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.unavailable = !ok
}

// Session returns a Store view whose writes are attributed to origin.
func (b *MemoryBackend) Session(origin string) *MemoryStore {
	return &MemoryStore{backend: b, origin: origin}
}

// MemoryStore is one session's view of a MemoryBackend.
type MemoryStore struct {
	backend *MemoryBackend
	origin  string
}

var _ Store = (*MemoryStore)(nil)

func (s *MemoryStore) Get(ctx context.Context, key string) (string, bool, error) {
	b := s.backend
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.unavailable {
		return "", false, ErrUnavailable
	}
	v, ok := b.data[key]
	return v, ok, nil
}

func (s *MemoryStore) Set(ctx context.Context, key, value string) error {
	b := s.backend
	b.mu.Lock()
	if b.unavailable {
		b.mu.Unlock()
		return ErrUnavailable
	}
	if b.maxBytes > 0 && b.sizeWithout(key)+len(key)+len(value) > b.maxBytes {
		b.mu.Unlock()
		return ErrQuotaExceeded
	}
	b.data[key] = value
	// Pushing under b.mu keeps deliveries in write order.
	for _, d := range b.targets(s.origin, key) {
		d.push(Change{Key: key, Value: value})
	}
	b.mu.Unlock()
	return nil
}

func (s *MemoryStore) Remove(ctx context.Context, key string) error {
	b := s.backend
	b.mu.Lock()
	if b.unavailable {
		b.mu.Unlock()
		return ErrUnavailable
	}
	delete(b.data, key)
	for _, d := range b.targets(s.origin, key) {
		d.push(Change{Key: key, Deleted: true})
	}
	b.mu.Unlock()
	return nil
}

func (s *MemoryStore) Watch(ctx context.Context, key string, fn func(Change)) (func(), error) {
	b := s.backend
	d := newDispatcher(fn)

	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.watchers[id] = memoryWatcher{origin: s.origin, key: key, d: d}
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.watchers, id)
		b.mu.Unlock()
		d.stop()
	}, nil
}

func (b *MemoryBackend) sizeWithout(key string) int {
	n := 0
	for k, v := range b.data {
		if k == key {
			continue
		}
		n += len(k) + len(v)
	}
	return n
}

func (b *MemoryBackend) targets(origin, key string) []*dispatcher {
	var out []*dispatcher
	for _, w := range b.watchers {
		if w.key == key && w.origin != origin {
			out = append(out, w.d)
		}
	}
	return out
}

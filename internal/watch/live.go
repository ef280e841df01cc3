package watch

import "sync"

// Live holds a value derived from stored data. It reloads whenever one of its
// topics is published and then notifies its own listeners.
type Live[T any] struct {
	load func() (T, error)

	mu        sync.Mutex
	value     T
	err       error
	started   uint64 // loads begun
	applied   uint64 // generation of the load behind value
	nextID    int
	listeners map[int]func(T, error)
	cancel    func()
}

// NewLive loads the initial value and starts following hub.
func NewLive[T any](hub *Hub, load func() (T, error), topics ...Topic) *Live[T] {
	l := &Live[T]{load: load, listeners: make(map[int]func(T, error))}
	l.value, l.err = load()
	l.cancel = hub.Subscribe(func(Event) { l.Refresh() }, topics...)
	return l
}

// Get returns the most recently loaded value and the error from that load.
func (l *Live[T]) Get() (T, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.value, l.err
}

// Refresh reloads the value. A failed load keeps the previous value and
// reports the error alongside it. A load that finishes after a later-started
// one has already been applied is discarded.
func (l *Live[T]) Refresh() {
	l.mu.Lock()
	l.started++
	gen := l.started
	l.mu.Unlock()

	v, err := l.load()

	l.mu.Lock()
	if gen < l.applied {
		l.mu.Unlock()
		return
	}
	l.applied = gen
	if err == nil {
		l.value = v
	}
	l.err = err
	cur := l.value
	fns := make([]func(T, error), 0, len(l.listeners))
	for _, fn := range l.listeners {
		fns = append(fns, fn)
	}
	l.mu.Unlock()

	for _, fn := range fns {
		fn(cur, err)
	}
}

// OnChange registers fn to run after every reload.
func (l *Live[T]) OnChange(fn func(T, error)) (cancel func()) {
	l.mu.Lock()
	id := l.nextID
	l.nextID++
	l.listeners[id] = fn
	l.mu.Unlock()

	return func() {
		l.mu.Lock()
		delete(l.listeners, id)
		l.mu.Unlock()
	}
}

// Close stops following the hub.
func (l *Live[T]) Close() {
	l.cancel()
}

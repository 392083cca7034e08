package gamelist

import "sync"

// Receives registry changes. Calls happen synchronously on the goroutine
// that made the change, never while the registry lock is held.
type Observer interface {
	TitleAdded(t Title)
	TitleUpdated(t Title)
}

// Adapts plain funcs to Observer, nil funcs are skipped
type ObserverFuncs struct {
	Added   func(t Title)
	Updated func(t Title)
}

func (o ObserverFuncs) TitleAdded(t Title) {
	if o.Added != nil {
		o.Added(t)
	}
}

func (o ObserverFuncs) TitleUpdated(t Title) {
	if o.Updated != nil {
		o.Updated(t)
	}
}

type subscription struct {
	id       uint64
	observer Observer
}

type Bus struct {
	mu     sync.Mutex
	nextId uint64
	subs   []subscription
}

func NewBus() *Bus {
	return &Bus{}
}

// Register an observer, events are delivered in registration order. The
// returned func removes it again.
func (b *Bus) Subscribe(o Observer) func() {
	b.mu.Lock()
	b.nextId++
	id := b.nextId
	b.subs = append(b.subs, subscription{id: id, observer: o})
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, s := range b.subs {
			if s.id == id {
				b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
				return
			}
		}
	}
}

func (b *Bus) observers() []Observer {
	b.mu.Lock()
	defer b.mu.Unlock()
	observers := make([]Observer, len(b.subs))
	for i, s := range b.subs {
		observers[i] = s.observer
	}
	return observers
}

func (b *Bus) PublishAdded(t Title) {
	for _, o := range b.observers() {
		o.TitleAdded(t)
	}
}

func (b *Bus) PublishUpdated(t Title) {
	for _, o := range b.observers() {
		o.TitleUpdated(t)
	}
}

package adapter

import (
	"context"
	"slices"
	"sync"
)

// Events receives the writes performed by adapters.
type Events interface {
	// Updated is called after a document was created or updated.
	Updated(ctx context.Context, model string, doc Entity)
	// Removed is called after a document was deleted.
	Removed(ctx context.Context, model string, doc Entity)
}

// NopEvents discards every event.
type NopEvents struct{}

func (NopEvents) Updated(context.Context, string, Entity) {}
func (NopEvents) Removed(context.Context, string, Entity) {}

// Broadcaster forwards events to its subscribers. The zero value is ready
// to use.
type Broadcaster struct {
	mu   sync.RWMutex
	subs []*subscription
}

type subscription struct{ Events }

// Subscribe registers e and returns a function removing it.
func (b *Broadcaster) Subscribe(e Events) (unsubscribe func()) {
	s := &subscription{e}
	b.mu.Lock()
	b.subs = append(b.subs, s)
	b.mu.Unlock()
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.subs = slices.DeleteFunc(b.subs, func(o *subscription) bool { return o == s })
	}
}

// Updated forwards to every subscriber.
func (b *Broadcaster) Updated(ctx context.Context, model string, doc Entity) {
	for _, s := range b.snapshot() {
		s.Updated(ctx, model, doc)
	}
}

// Removed forwards to every subscriber.
func (b *Broadcaster) Removed(ctx context.Context, model string, doc Entity) {
	for _, s := range b.snapshot() {
		s.Removed(ctx, model, doc)
	}
}

func (b *Broadcaster) snapshot() []*subscription {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return slices.Clone(b.subs)
}

// EventFunc adapts a function to Events. Removed events carry removed set
// to true.
type EventFunc func(ctx context.Context, model string, doc Entity, removed bool)

func (f EventFunc) Updated(ctx context.Context, model string, doc Entity) {
	f(ctx, model, doc, false)
}

func (f EventFunc) Removed(ctx context.Context, model string, doc Entity) {
	f(ctx, model, doc, true)
}

var (
	_ Events = NopEvents{}
	_ Events = (*Broadcaster)(nil)
	_ Events = EventFunc(nil)
)

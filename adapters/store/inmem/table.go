package inmem

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// entity is implemented by the domain aggregates the store keeps.
type entity[T any] interface {
	*T
	Clone() *T
}

// table is a thread-safe map of aggregates keyed by ID. Values are cloned on
// the way in and out so callers never share state with the store.
type table[T any, P entity[T]] struct {
	mu       sync.RWMutex
	items    map[string]P
	seq      int64
	prefix   string
	notFound error
	id       func(P) *string
	name     func(P) string
}

func newTable[T any, P entity[T]](prefix string, notFound error, id func(P) *string, name func(P) string) *table[T, P] {
	return &table[T, P]{items: map[string]P{}, prefix: prefix, notFound: notFound, id: id, name: name}
}

func (t *table[T, P]) nextID() string {
	t.seq++
	return fmt.Sprintf("%s-%d-%d", t.prefix, time.Now().UnixNano(), t.seq)
}

func (t *table[T, P]) Create(_ context.Context, v P) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := t.id(v)
	if *id == "" {
		*id = t.nextID()
	}
	if _, dup := t.items[*id]; dup {
		return fmt.Errorf("%s %s already exists", t.prefix, *id)
	}
	t.items[*id] = v.Clone()
	return nil
}

func (t *table[T, P]) Get(_ context.Context, id string) (P, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	v, ok := t.items[id]
	if !ok {
		return nil, t.notFound
	}
	return v.Clone(), nil
}

// List returns all items ordered by name.
func (t *table[T, P]) List(_ context.Context) ([]P, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]P, 0, len(t.items))
	for _, v := range t.items {
		out = append(out, v.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return t.name(out[i]) < t.name(out[j]) })
	return out, nil
}

func (t *table[T, P]) Update(_ context.Context, v P) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := *t.id(v)
	if _, ok := t.items[id]; !ok {
		return t.notFound
	}
	t.items[id] = v.Clone()
	return nil
}

func (t *table[T, P]) Delete(_ context.Context, id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.items[id]; !ok {
		return t.notFound
	}
	delete(t.items, id)
	return nil
}

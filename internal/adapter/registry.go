package adapter

import "fmt"

// Entry is one registry listing row.
type Entry struct {
	Key         string
	DisplayName string
}

// Registry maps stable site keys to adapter instances. It is built once at
// process start from an explicit constructor list and is read-only
// afterwards.
type Registry struct {
	order []string
	byKey map[string]Adapter
}

// NewRegistry builds a registry preserving the given registration order.
// A duplicate key is a programming error and fails fast.
func NewRegistry(adapters ...Adapter) (*Registry, error) {
	r := &Registry{byKey: make(map[string]Adapter, len(adapters))}
	for _, a := range adapters {
		key := a.Key()
		if key == "" {
			return nil, fmt.Errorf("adapter %q has an empty key", a.DisplayName())
		}
		if _, exists := r.byKey[key]; exists {
			return nil, fmt.Errorf("duplicate adapter key %q", key)
		}
		r.byKey[key] = a
		r.order = append(r.order, key)
	}
	return r, nil
}

// Get resolves a key to its adapter.
func (r *Registry) Get(key string) (Adapter, bool) {
	a, ok := r.byKey[key]
	return a, ok
}

// List returns every registered entry in registration order.
func (r *Registry) List() []Entry {
	entries := make([]Entry, 0, len(r.order))
	for _, key := range r.order {
		entries = append(entries, Entry{Key: key, DisplayName: r.byKey[key].DisplayName()})
	}
	return entries
}

// Len reports the number of registered adapters.
func (r *Registry) Len() int { return len(r.order) }

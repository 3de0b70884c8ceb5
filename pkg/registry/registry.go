package registry

import "sync"

// Registry holds the container types eligible for infinite refill.
// Contents only change through Replace, which swaps the whole set.
type Registry struct {
	mu    sync.RWMutex
	items []string            // configured order, de-duplicated
	index map[string]struct{} // item type → present
}

// New creates a registry from the configured item types. Duplicates and empty
// entries are dropped; the first occurrence keeps its position.
func New(items []string) *Registry {
	r := &Registry{}
	r.Replace(items)
	return r
}

// Contains reports whether itemType is refillable.
func (r *Registry) Contains(itemType string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.index[itemType]
	return ok
}

// Items returns a copy of the registered item types in configured order.
func (r *Registry) Items() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, len(r.items))
	copy(out, r.items)
	return out
}

// Len returns the number of registered item types.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

// Replace swaps the registry contents for a freshly loaded configuration.
func (r *Registry) Replace(items []string) {
	kept := Dedupe(items)
	index := make(map[string]struct{}, len(kept))
	for _, item := range kept {
		index[item] = struct{}{}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = kept
	r.index = index
}

// Dedupe returns items without empty strings or repeats, preserving first occurrence order.
func Dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	kept := make([]string, 0, len(items))
	for _, item := range items {
		if item == "" {
			continue
		}
		if _, dup := seen[item]; dup {
			continue
		}
		seen[item] = struct{}{}
		kept = append(kept, item)
	}
	return kept
}

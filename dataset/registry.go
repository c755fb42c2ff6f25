package dataset

import (
	"errors"
	"fmt"
)

// Registry errors.
var (
	// ErrSourceNotFound indicates an unknown source ID.
	ErrSourceNotFound = errors.New("data source not found")

	// ErrDuplicateSource indicates a source ID already registered.
	ErrDuplicateSource = errors.New("data source already registered")
)

// Registry tracks the live data sources of one session, keyed by
// source ID. Owned by a single session goroutine.
type Registry struct {
	sources map[string]Source
	order   []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{sources: make(map[string]Source)}
}

// Register adds a source. The source ID must be unique.
func (r *Registry) Register(s Source) error {
	if _, ok := r.sources[s.ID()]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateSource, s.ID())
	}
	r.sources[s.ID()] = s
	r.order = append(r.order, s.ID())
	return nil
}

// Get returns the source with the given ID.
func (r *Registry) Get(id string) (Source, error) {
	s, ok := r.sources[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, id)
	}
	return s, nil
}

// Remove closes and removes the source with the given ID.
func (r *Registry) Remove(id string) error {
	s, ok := r.sources[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrSourceNotFound, id)
	}
	delete(r.sources, id)
	for i, sid := range r.order {
		if sid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return s.Close()
}

// List returns all registered sources in registration order.
func (r *Registry) List() []Source {
	out := make([]Source, 0, len(r.sources))
	for _, id := range r.order {
		out = append(out, r.sources[id])
	}
	return out
}

// Close closes every registered source and empties the registry.
// The first error encountered is returned; closing continues past it.
func (r *Registry) Close() error {
	var firstErr error
	for _, id := range r.order {
		if err := r.sources[id].Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	r.sources = make(map[string]Source)
	r.order = nil
	return firstErr
}

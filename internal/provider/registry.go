package provider

import (
	"fmt"
	"sort"
	"sync"
)

// Registry is a thread-safe registry of statement sources keyed by name.
// The first source registered becomes the default.
type Registry struct {
	mu       sync.RWMutex
	sources  map[string]Source
	fallback string
}

// NewRegistry creates a new empty source registry.
func NewRegistry() *Registry {
	return &Registry{
		sources: make(map[string]Source),
	}
}

// Register adds a source to the registry.
// Duplicate registrations overwrite the previous entry.
func (r *Registry) Register(s Source) error {
	info := s.Info()
	if info.Name == "" {
		return fmt.Errorf("source name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.sources[info.Name] = s
	if r.fallback == "" {
		r.fallback = info.Name
	}
	return nil
}

// Get returns a source by name, or an error if not found.
func (r *Registry) Get(name string) (Source, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sources[name]
	if !ok {
		return nil, &ErrSourceNotFound{Name: name}
	}
	return s, nil
}

// Default returns the default source.
func (r *Registry) Default() (Source, error) {
	r.mu.RLock()
	name := r.fallback
	r.mu.RUnlock()
	return r.Get(name)
}

// SetDefault sets the default source.
func (r *Registry) SetDefault(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sources[name]; !ok {
		return &ErrSourceNotFound{Name: name}
	}
	r.fallback = name
	return nil
}

// List returns info about all registered sources, sorted by name.
func (r *Registry) List() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]Info, 0, len(r.sources))
	for _, s := range r.sources {
		infos = append(infos, s.Info())
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Name < infos[j].Name
	})
	return infos
}

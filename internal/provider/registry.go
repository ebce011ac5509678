package provider

import (
	"fmt"
	"sort"
	"sync"
)

// Registry is a thread-safe registry of statement providers keyed by name.
// The first provider registered becomes the default.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]StatementFetcher
	def       string
}

// NewRegistry creates a new empty provider registry.
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]StatementFetcher),
	}
}

// Register adds a provider to the registry. Duplicate registrations
// overwrite the previous entry.
func (r *Registry) Register(p StatementFetcher) error {
	info := p.Info()
	if info.Name == "" {
		return fmt.Errorf("provider name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.providers[info.Name] = p
	if r.def == "" {
		r.def = info.Name
	}
	return nil
}

// Unregister removes a provider from the registry.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.providers, name)
	if r.def == name {
		r.def = ""
		names := r.namesLocked()
		if len(names) > 0 {
			r.def = names[0]
		}
	}
}

// Get returns a provider by name. An empty name selects the default.
func (r *Registry) Get(name string) (StatementFetcher, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if name == "" {
		name = r.def
	}
	p, ok := r.providers[name]
	if !ok {
		return nil, &ErrProviderNotFound{Name: name}
	}
	return p, nil
}

// SetDefault makes a registered provider the default.
func (r *Registry) SetDefault(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.providers[name]; !ok {
		return &ErrProviderNotFound{Name: name}
	}
	r.def = name
	return nil
}

// Default returns the default provider name, or "" when the registry is empty.
func (r *Registry) Default() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.def
}

// List returns info about all registered providers, sorted by name.
func (r *Registry) List() []ProviderInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]ProviderInfo, 0, len(r.providers))
	for _, name := range r.namesLocked() {
		infos = append(infos, r.providers[name].Info())
	}
	return infos
}

func (r *Registry) namesLocked() []string {
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

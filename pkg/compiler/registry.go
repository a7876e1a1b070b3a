package compiler

import (
	"sort"
	"sync"

	"github.com/leapstack-labs/funcsql/pkg/core"
)

// Registry maps command names to factories. A name maps to exactly one
// factory at a time.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]core.Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]core.Factory)}
}

// Register binds name to factory, replacing any earlier binding.
func (r *Registry) Register(name string, factory core.Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Get returns the factory bound to name.
func (r *Registry) Get(name string) (core.Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[name]
	return f, ok
}

// Rename rebinds the factory of oldName to newName. oldName stops being
// a command.
func (r *Registry) Rename(oldName, newName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, ok := r.factories[oldName]
	if !ok {
		return core.Errorf(core.UnknownCommand, core.ErrUnknownCommand, oldName)
	}
	delete(r.factories, oldName)
	r.factories[newName] = f
	return nil
}

// List returns all registered names (sorted).
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

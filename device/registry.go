// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package device

import (
	"fmt"
	"sort"
	"sync"
)

// Factory opens a new Device instance.
// Implementations should validate availability and return descriptive errors.
type Factory func() (Device, error)

// RegistryEntry represents a registered device backend.
type RegistryEntry struct {
	// Name is the unique identifier for this backend.
	Name string

	// Priority determines selection order (higher = preferred).
	// Standard priorities:
	//   - 100: GPU backends
	//   - 10: pure software backends
	Priority int

	// Factory opens device instances.
	Factory Factory

	// Available reports if the backend is usable on this system.
	Available func() bool
}

// globalRegistry is the default registry.
var globalRegistry = &Registry{}

// Registry manages registered device backends.
//
// The registry enables backends to register themselves without requiring
// changes to the core library.
//
// Example registration:
//
//	func init() {
//	    device.Register("wgpu", 100, openWGPU, wgpuAvailable)
//	}
//
// Example usage:
//
//	dev, err := device.OpenByName("wgpu")
//	// or auto-select best available:
//	dev, err := device.Open()
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*RegistryEntry
}

// NewRegistry creates a new empty registry.
// Most code should use the global registry via Register and Open.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]*RegistryEntry),
	}
}

// Register adds a backend to the global registry.
//
// If available is nil, the backend is assumed always available.
// Registering a name that already exists replaces the previous entry.
func Register(name string, priority int, factory Factory, available func() bool) {
	globalRegistry.Register(name, priority, factory, available)
}

// Unregister removes a backend from the global registry.
func Unregister(name string) {
	globalRegistry.Unregister(name)
}

// List returns all registered backend names sorted by priority (highest first).
func List() []string {
	return globalRegistry.List()
}

// Available returns names of all available backends sorted by priority.
func Available() []string {
	return globalRegistry.Available()
}

// Get returns information about a specific backend.
func Get(name string) (*RegistryEntry, bool) {
	return globalRegistry.Get(name)
}

// Open opens a device using the best available backend.
// Returns ErrNoDevice if no backends are available.
func Open() (Device, error) {
	return globalRegistry.Open()
}

// OpenByName opens a device using a specific named backend.
func OpenByName(name string) (Device, error) {
	return globalRegistry.OpenByName(name)
}

// Register adds a backend to this registry.
func (r *Registry) Register(name string, priority int, factory Factory, available func() bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.entries == nil {
		r.entries = make(map[string]*RegistryEntry)
	}

	if available == nil {
		available = func() bool { return true }
	}

	r.entries[name] = &RegistryEntry{
		Name:      name,
		Priority:  priority,
		Factory:   factory,
		Available: available,
	}
}

// Unregister removes a backend from this registry.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.entries, name)
}

// List returns all registered backend names sorted by priority.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.sortedNames(false)
}

// Available returns names of all available backends sorted by priority.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.sortedNames(true)
}

// Get returns information about a specific backend.
func (r *Registry) Get(name string) (*RegistryEntry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.entries[name]
	if !ok {
		return nil, false
	}

	// Return a copy to prevent modification
	entryCopy := *entry
	return &entryCopy, true
}

// Open opens a device using the best available backend.
func (r *Registry) Open() (Device, error) {
	r.mu.RLock()
	available := r.sortedNames(true)
	r.mu.RUnlock()

	if len(available) == 0 {
		return nil, ErrNoDevice
	}

	// Try each available backend in priority order
	var lastErr error
	for _, name := range available {
		dev, err := r.OpenByName(name)
		if err == nil {
			return dev, nil
		}
		lastErr = err
	}

	if lastErr != nil {
		return nil, lastErr
	}
	return nil, ErrNoDevice
}

// OpenByName opens a device using a specific backend.
func (r *Registry) OpenByName(name string) (Device, error) {
	r.mu.RLock()
	entry, ok := r.entries[name]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDevice, name)
	}

	if !entry.Available() {
		return nil, fmt.Errorf("%w: %q is not available", ErrNoDevice, name)
	}

	return entry.Factory()
}

// sortedNames returns backend names sorted by priority (highest first),
// then by name for a stable order. Caller must hold the lock.
func (r *Registry) sortedNames(onlyAvailable bool) []string {
	names := make([]string, 0, len(r.entries))
	for name, entry := range r.entries {
		if onlyAvailable && !entry.Available() {
			continue
		}
		names = append(names, name)
	}

	sort.Slice(names, func(i, j int) bool {
		a, b := r.entries[names[i]], r.entries[names[j]]
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		return a.Name < b.Name
	})

	return names
}

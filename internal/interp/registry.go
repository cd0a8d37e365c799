package interp

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry maps interpreter type names to factories. Entries are added at
// startup and never removed.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

var defaultRegistry = NewRegistry()

// Default returns the process-wide registry. Front-end packages are
// registered into it at startup, before the first UI is created.
func Default() *Registry {
	return defaultRegistry
}

// Register associates name with f for the life of the registry.
//
// Registering the same name twice, a nil factory, or an empty name is a
// programming error and panics.
func (r *Registry) Register(name string, f Factory) {
	if strings.TrimSpace(name) == "" {
		panic(fmt.Errorf("register %q: %w", name, ErrInvalidName))
	}
	if f == nil {
		panic(fmt.Errorf("register %q: %w", name, ErrNilFactory))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[name]; exists {
		panic(fmt.Errorf("register %q: %w", name, ErrDuplicateRegistration))
	}
	r.factories[name] = f
}

// Create returns a new, uninitialized interpreter for name owned by ui.
func (r *Registry) Create(name string, ui *UI) (Interpreter, error) {
	r.mu.RLock()
	f, ok := r.factories[name]
	r.mu.RUnlock()

	if !ok {
		return nil, &UnknownTypeError{Name: name}
	}
	return f(name, ui), nil
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[name]
	return ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

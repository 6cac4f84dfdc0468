package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/arthur-debert/webrig/pkg/errors"
)

// Registry is a generic, thread-safe registry for storing and retrieving items by name
type Registry[T any] interface {
	// Register adds an item under its canonical name and optional aliases
	Register(name string, item T, aliases ...string) error

	// Get retrieves an item by canonical name or alias
	Get(name string) (T, error)

	// Canonical returns the canonical name for a name or alias
	Canonical(name string) (string, bool)

	// List returns all canonical names in sorted order
	List() []string

	// Has checks if a name or alias is registered
	Has(name string) bool

	// Count returns the number of registered items
	Count() int
}

type registry[T any] struct {
	mu      sync.RWMutex
	items   map[string]T
	aliases map[string]string
}

// New creates a new Registry instance
func New[T any]() Registry[T] {
	return &registry[T]{
		items:   make(map[string]T),
		aliases: make(map[string]string),
	}
}

func (r *registry[T]) Register(name string, item T, aliases ...string) error {
	if name == "" {
		return errors.New(errors.ErrInvalidInput, "registry name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.lookup(name); taken {
		return errors.Newf(errors.ErrAlreadyExists, "item '%s' is already registered", name)
	}
	for _, alias := range aliases {
		if alias == "" {
			return errors.Newf(errors.ErrInvalidInput, "empty alias for '%s'", name)
		}
		if _, taken := r.lookup(alias); taken {
			return errors.Newf(errors.ErrAlreadyExists, "alias '%s' is already registered", alias)
		}
	}

	r.items[name] = item
	for _, alias := range aliases {
		r.aliases[alias] = name
	}
	return nil
}

// lookup must be called with the lock held
func (r *registry[T]) lookup(name string) (string, bool) {
	if _, ok := r.items[name]; ok {
		return name, true
	}
	canonical, ok := r.aliases[name]
	return canonical, ok
}

func (r *registry[T]) Get(name string) (T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	canonical, ok := r.lookup(name)
	if !ok {
		var zero T
		return zero, errors.Newf(errors.ErrNotFound, "item '%s' not found in registry", name)
	}
	return r.items[canonical], nil
}

func (r *registry[T]) Canonical(name string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.lookup(name)
}

func (r *registry[T]) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.items))
	for name := range r.items {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *registry[T]) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.lookup(name)
	return ok
}

func (r *registry[T]) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.items)
}

// MustRegister registers an item and panics if registration fails.
// Registration errors of built-ins are programming errors.
func MustRegister[T any](reg Registry[T], name string, item T, aliases ...string) {
	if err := reg.Register(name, item, aliases...); err != nil {
		panic(fmt.Sprintf("failed to register %s: %v", name, err))
	}
}

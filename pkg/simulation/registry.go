package simulation

import (
	"sort"
	"sync"
)

// AlgorithmRef names an algorithm either by registry key or directly by value
type AlgorithmRef struct {
	Name string
	Fn   AlgorithmFn
}

// ByName refers to a registered algorithm
func ByName(name string) AlgorithmRef { return AlgorithmRef{Name: name} }

// Direct wraps an unregistered algorithm function
func Direct(fn AlgorithmFn) AlgorithmRef { return AlgorithmRef{Fn: fn} }

// String returns the name, or a marker for direct functions
func (r AlgorithmRef) String() string {
	if r.Fn != nil {
		return "<func>"
	}
	return r.Name
}

// Registry maps algorithm names to functions
type Registry struct {
	mu         sync.RWMutex
	algorithms map[string]AlgorithmFn
}

// NewRegistry creates an empty algorithm registry
func NewRegistry() *Registry {
	return &Registry{
		algorithms: make(map[string]AlgorithmFn),
	}
}

// Register adds or replaces the algorithm stored under name
func (r *Registry) Register(name string, fn AlgorithmFn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.algorithms[name] = fn
}

// Resolve returns the function a reference points at, or nil when a named
// reference is not registered.
func (r *Registry) Resolve(ref AlgorithmRef) AlgorithmFn {
	if ref.Fn != nil {
		return ref.Fn
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.algorithms[ref.Name]
}

// List returns all registered algorithm names in sorted order
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.algorithms))
	for name := range r.algorithms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry is the registry the CLI populates with built-in algorithms
var DefaultRegistry = NewRegistry()

package command

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/gyaneshwarpardhi/rxndiagram/internal/diagram"
)

var (
	// ErrUnknownKind is returned for a command kind nobody registered.
	ErrUnknownKind = errors.New("unknown command kind")
	// ErrInvalidParams wraps every parameter validation failure.
	ErrInvalidParams = errors.New("invalid command params")
)

// Params are the decoded parameters of a command request.
type Params map[string]interface{}

// Factory builds commands of one kind from request parameters.
type Factory interface {
	// Kind returns the string key this factory is registered under.
	Kind() string
	// Validate checks params without looking at a diagram.
	Validate(params Params) error
	// Build creates a command against d. It does not execute it.
	Build(d *diagram.Diagram, params Params) (Command, error)
}

// Registry maps command kinds to their factories.
// It is safe for concurrent reads; Register should only be called at startup.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// NewBuiltinRegistry returns a registry holding every built-in kind.
func NewBuiltinRegistry() *Registry {
	r := NewRegistry()
	r.Register(createNodeFactory{})
	r.Register(deleteFactory{})
	r.Register(connectFactory{})
	r.Register(reconnectFactory{})
	r.Register(setBendpointsFactory{})
	r.Register(moveFactory{})
	r.Register(setAttributeFactory{})
	return r
}

// Register adds a factory. Panics on duplicate kind to surface misconfiguration early.
func (r *Registry) Register(f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[f.Kind()]; exists {
		panic(fmt.Sprintf("command registry: duplicate kind %q", f.Kind()))
	}
	r.factories[f.Kind()] = f
}

// Get returns the factory for kind.
func (r *Registry) Get(kind string) (Factory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[kind]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownKind, kind)
	}
	return f, nil
}

// Kinds returns every registered kind, sorted.
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.factories))
	for k := range r.factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Build validates params and builds a command of kind against d.
func (r *Registry) Build(d *diagram.Diagram, kind string, params Params) (Command, error) {
	f, err := r.Get(kind)
	if err != nil {
		return nil, err
	}
	if err := f.Validate(params); err != nil {
		return nil, err
	}
	return f.Build(d, params)
}

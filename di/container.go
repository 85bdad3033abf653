// Package di provides a small dependency container with explicit provider
// registration. There is no reflection and no auto-binding: every provider is
// declared with its constructor, scope, and dependency keys, and Validate
// rejects cyclic graphs before the application starts serving events.
package di

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// Scope controls instance lifetime.
type Scope int

const (
	// Singleton providers build once; the instance is cached for the process
	// lifetime. Used for controllers and shared services.
	Singleton Scope = iota
	// Transient providers build a fresh instance on every resolution. Used for
	// guards so per-invocation parameters never leak between concurrent calls.
	Transient
)

var (
	// ErrNotBound is returned when a key has no registered provider.
	ErrNotBound = errors.New("di: key not bound")
	// ErrCycle is returned by Validate when the dependency graph is cyclic.
	ErrCycle = errors.New("di: dependency cycle")
	// ErrDuplicate is returned when a key is provided twice.
	ErrDuplicate = errors.New("di: key already bound")
)

// Provider declares how to build one value.
type Provider struct {
	// Build constructs the value. It may resolve the keys listed in DependsOn
	// from the container it receives.
	Build func(c *Container) (any, error)
	Scope Scope
	// DependsOn lists the keys Build resolves. Only declared edges are
	// checked for cycles, so an undeclared dependency is a registration bug.
	DependsOn []string
}

// Container holds providers and memoized singleton instances. Safe for
// concurrent use.
type Container struct {
	mu        sync.Mutex
	providers map[string]Provider
	instances map[string]any
}

// New returns an empty container.
func New() *Container {
	return &Container{
		providers: make(map[string]Provider),
		instances: make(map[string]any),
	}
}

// Provide registers a provider under key. Registering the same key twice is
// an error: the graph is assembled once, at the composition root.
func (c *Container) Provide(key string, p Provider) error {
	if key == "" {
		return errors.New("di: empty key")
	}
	if p.Build == nil {
		return fmt.Errorf("di: provider %q has no Build func", key)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.providers[key]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicate, key)
	}
	c.providers[key] = p
	return nil
}

// MustProvide is Provide but panics on error.
func (c *Container) MustProvide(key string, p Provider) {
	if err := c.Provide(key, p); err != nil {
		panic(err)
	}
}

// IsBound reports whether key has a provider.
func (c *Container) IsBound(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.providers[key]
	return ok
}

// Get returns the memoized singleton for key, building it on first access.
// For transient providers Get behaves like Resolve. Returns ErrNotBound for
// unknown keys.
func (c *Container) Get(key string) (any, error) {
	return c.Resolve(key)
}

// Resolve builds or looks up the value for key according to its scope.
func (c *Container) Resolve(key string) (any, error) {
	c.mu.Lock()
	p, ok := c.providers[key]
	if !ok {
		c.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrNotBound, key)
	}
	if p.Scope == Singleton {
		if inst, ok := c.instances[key]; ok {
			c.mu.Unlock()
			return inst, nil
		}
	}
	c.mu.Unlock()

	// Build without holding the lock; constructors resolve their own deps.
	inst, err := p.Build(c)
	if err != nil {
		return nil, fmt.Errorf("di: build %q: %w", key, err)
	}
	if p.Scope == Transient {
		return inst, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// Another goroutine may have built it meanwhile; first stored wins so
	// every caller sees the same singleton.
	if prev, ok := c.instances[key]; ok {
		return prev, nil
	}
	c.instances[key] = inst
	return inst, nil
}

// Validate checks that every declared dependency is bound and that the
// dependency graph is acyclic. Call it once after assembling the graph; a
// cycle error names the offending path.
func (c *Container) Validate() error {
	c.mu.Lock()
	deps := make(map[string][]string, len(c.providers))
	for key, p := range c.providers {
		deps[key] = p.DependsOn
	}
	c.mu.Unlock()

	for key, ds := range deps {
		for _, d := range ds {
			if _, ok := deps[d]; !ok {
				return fmt.Errorf("%w: %q required by %q", ErrNotBound, d, key)
			}
		}
	}

	const (
		white = iota // unvisited
		gray         // on the current path
		black        // done
	)
	color := make(map[string]int, len(deps))

	var visit func(key string, path []string) error
	visit = func(key string, path []string) error {
		switch color[key] {
		case black:
			return nil
		case gray:
			return fmt.Errorf("%w: %s -> %s", ErrCycle, strings.Join(path, " -> "), key)
		}
		color[key] = gray
		for _, d := range deps[key] {
			if err := visit(d, append(path, key)); err != nil {
				return err
			}
		}
		color[key] = black
		return nil
	}

	for key := range deps {
		if err := visit(key, nil); err != nil {
			return err
		}
	}
	return nil
}

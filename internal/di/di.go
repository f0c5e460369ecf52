// Package di provides a small dependency injection container with lazily
// constructed singletons, used by the module bootstrap.
package di

import (
	"fmt"
	"sync"
)

// ServiceRegistry resolves registered services by token.
type ServiceRegistry interface {
	// Get returns the service registered under token, constructing it on
	// first use when a factory was registered. Panics on unknown tokens:
	// resolution failures are wiring bugs, not runtime conditions.
	Get(token string) any
}

// FactoryFunc constructs a service, resolving its dependencies from the registry.
type FactoryFunc func(ServiceRegistry) any

// Container is a ServiceRegistry that services and factories can be registered on.
type Container interface {
	ServiceRegistry

	// Register stores an already-constructed service.
	Register(token string, svc any)

	// RegisterFactory stores a factory invoked once, on first Get.
	RegisterFactory(token string, fn FactoryFunc)
}

type container struct {
	mu        sync.Mutex
	instances map[string]any
	factories map[string]FactoryFunc
}

// NewContainer creates an empty Container.
func NewContainer() Container {
	return &container{
		instances: make(map[string]any),
		factories: make(map[string]FactoryFunc),
	}
}

func (c *container) Register(token string, svc any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.instances[token] = svc
}

func (c *container) RegisterFactory(token string, fn FactoryFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.factories[token] = fn
}

func (c *container) Get(token string) any {
	c.mu.Lock()
	if svc, ok := c.instances[token]; ok {
		c.mu.Unlock()
		return svc
	}
	fn, ok := c.factories[token]
	if !ok {
		c.mu.Unlock()
		panic(fmt.Sprintf("di: no service registered for token %q", token))
	}
	// Release the lock while constructing so factories can resolve their own
	// dependencies through the container.
	c.mu.Unlock()

	svc := fn(c)

	c.mu.Lock()
	c.instances[token] = svc
	c.mu.Unlock()
	return svc
}

// Token is a typed service identifier. The type parameter travels with the
// token so lookups stay type-safe without casts at call sites.
type Token[T any] struct {
	name string
}

// NewToken creates a token. Names are namespaced by convention, e.g.
// "exchange:registry".
func NewToken[T any](name string) Token[T] {
	return Token[T]{name: name}
}

func (t Token[T]) String() string {
	return t.name
}

// RegisterToken registers a typed factory under token.
func RegisterToken[T any](c Container, token Token[T], fn func(ServiceRegistry) T) {
	c.RegisterFactory(token.name, func(sr ServiceRegistry) any {
		return fn(sr)
	})
}

// GetToken returns the service behind token, asserting its type.
func GetToken[T any](sr ServiceRegistry, token Token[T]) T {
	svc, ok := sr.Get(token.name).(T)
	if !ok {
		panic(fmt.Sprintf("di: service %q has unexpected type %T", token.name, sr.Get(token.name)))
	}
	return svc
}

package activation

import (
	"reflect"
	"sync"
)

// FactoryBuilder creates the factory for a type on a cache miss.
type FactoryBuilder func(t reflect.Type) *Factory

// Cache memoizes one Factory per type for the lifetime of the process.
//
// Entries are never evicted: the key space is the set of types the program
// asks to activate, which is fixed at build time. Concurrent misses for the
// same type may each build a candidate factory, but only the first one stored
// is kept and every caller receives that one.
type Cache struct {
	factories sync.Map // reflect.Type → *Factory
	build     FactoryBuilder
	ctors     *Constructors
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithConstructors makes the default factories consult ctors first.
func WithConstructors(ctors *Constructors) CacheOption {
	return func(c *Cache) { c.ctors = ctors }
}

// WithFactoryBuilder replaces the default factory builder.
func WithFactoryBuilder(build FactoryBuilder) CacheOption {
	return func(c *Cache) { c.build = build }
}

// NewCache creates an empty cache. Create one at startup and hand it to
// every Activator that should share it.
func NewCache(opts ...CacheOption) *Cache {
	c := &Cache{}
	for _, opt := range opts {
		opt(c)
	}
	if c.build == nil {
		ctors := c.ctors
		c.build = func(t reflect.Type) *Factory { return NewFactory(t, ctors) }
	}
	return c
}

// GetOrCreateFactory returns the cached factory for t, building and storing
// one on the first request. It returns nil for a nil type and stores nothing.
func (c *Cache) GetOrCreateFactory(t reflect.Type) *Factory {
	if t == nil {
		return nil
	}
	if f, ok := c.factories.Load(t); ok {
		return f.(*Factory)
	}
	f, _ := c.factories.LoadOrStore(t, c.build(t))
	return f.(*Factory)
}

// CreateInstance builds a new t through its cached factory.
func (c *Cache) CreateInstance(resolver ServiceResolver, t reflect.Type) (any, error) {
	if resolver == nil {
		return nil, invalidArgument("resolver")
	}
	if t == nil {
		return nil, invalidArgument("type")
	}
	return c.GetOrCreateFactory(t).New(resolver)
}

// Len returns the number of cached factories.
func (c *Cache) Len() int {
	n := 0
	c.factories.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// Types returns the cached types in no particular order.
func (c *Cache) Types() []reflect.Type {
	var out []reflect.Type
	c.factories.Range(func(k, _ any) bool {
		out = append(out, k.(reflect.Type))
		return true
	})
	return out
}

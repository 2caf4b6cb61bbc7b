package activation

import (
	"fmt"
	"io"
	"reflect"
)

// Activator hands out instances for a requested type. A type that already
// has a registered instance in the Lookup gets that instance; any other type
// is built through a cached factory.
//
// An Activator holds no mutable state of its own and is safe for concurrent
// use. The Cache it is given is the only shared mutable structure.
type Activator struct {
	lookup Lookup
	cache  *Cache
}

// New creates an Activator. A nil cache gets a fresh private one.
func New(lookup Lookup, cache *Cache) *Activator {
	if cache == nil {
		cache = NewCache()
	}
	return &Activator{lookup: lookup, cache: cache}
}

// Cache returns the factory cache this activator builds with.
func (a *Activator) Cache() *Cache { return a.cache }

// Create returns an instance of t.
//
// When the lookup holds one or more instances assignable to t, the first one
// in the lookup's enumeration order is returned and no factory is touched.
// Otherwise a new instance is built with resolver supplying dependencies.
func (a *Activator) Create(t reflect.Type, resolver ServiceResolver) (any, error) {
	instance, _, err := a.Activate(t, resolver)
	return instance, err
}

// Activate is Create that also reports which path produced the instance.
func (a *Activator) Activate(t reflect.Type, resolver ServiceResolver) (any, Source, error) {
	if t == nil {
		return nil, SourceFactory, invalidArgument("requested type")
	}

	if a.lookup != nil {
		if matches := a.lookup.FindByType(t); len(matches) > 0 {
			return matches[0].Instance, SourceContainer, nil
		}
	}

	instance, err := a.cache.CreateInstance(resolver, t)
	return instance, SourceFactory, err
}

// Release disposes instance when it supports disposal. A Disposer is
// preferred; otherwise an io.Closer is closed. Whatever the disposal returns
// is passed back unchanged.
func (a *Activator) Release(instance any) error {
	if IsNil(instance) {
		return invalidArgument("instance")
	}
	switch v := instance.(type) {
	case Disposer:
		return v.Dispose()
	case io.Closer:
		return v.Close()
	}
	return nil
}

// CreateAs activates TypeOf[T]() and asserts the result.
func CreateAs[T any](a *Activator, resolver ServiceResolver) (T, error) {
	var zero T
	instance, err := a.Create(TypeOf[T](), resolver)
	if err != nil {
		return zero, err
	}
	typed, ok := instance.(T)
	if !ok {
		return zero, &ConstructionError{
			Type: TypeOf[T](),
			Err:  fmt.Errorf("activated %T", instance),
		}
	}
	return typed, nil
}

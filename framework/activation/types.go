package activation

import "reflect"

// Candidate is one registered instance returned by a Lookup, together with
// the identifier it is registered under.
type Candidate struct {
	Name     string
	Instance any
}

// Lookup answers "which registered instances are assignable to t?".
//
// Implementations own the registry; the activator never mutates it. The
// returned slice order is the lookup's enumeration order. When more than
// one candidate matches, the activator takes the first, so a Lookup that
// does not document its ordering makes that choice unpredictable.
type Lookup interface {
	FindByType(t reflect.Type) []Candidate
}

// LookupFunc adapts a plain function to Lookup.
type LookupFunc func(t reflect.Type) []Candidate

// FindByType implements Lookup.
func (f LookupFunc) FindByType(t reflect.Type) []Candidate { return f(t) }

// ServiceResolver supplies dependencies the registry does not hold itself.
type ServiceResolver interface {
	Resolve(t reflect.Type) (any, error)
}

// NamedResolver is an optional ServiceResolver capability used for fields
// tagged with an explicit name, e.g. `inject:"db.primary"`.
type NamedResolver interface {
	ResolveNamed(name string) (any, error)
}

// ResolverFunc adapts a plain function to ServiceResolver.
type ResolverFunc func(t reflect.Type) (any, error)

// Resolve implements ServiceResolver.
func (f ResolverFunc) Resolve(t reflect.Type) (any, error) { return f(t) }

// Disposer is the disposal capability checked on Release.
type Disposer interface {
	Dispose() error
}

// Source tells which path served an activation.
type Source int

const (
	// SourceContainer means an already-registered instance was returned.
	SourceContainer Source = iota
	// SourceFactory means a new instance was built by a cached factory.
	SourceFactory
)

func (s Source) String() string {
	switch s {
	case SourceContainer:
		return "container"
	case SourceFactory:
		return "factory"
	default:
		return "unknown"
	}
}

// TypeOf returns the TypeKey for T. Unlike reflect.TypeOf it also works for
// interface types.
//
//	activation.TypeOf[UserStore]()     // interface
//	activation.TypeOf[*UserController]()
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Package resolvers provides activation.ServiceResolver implementations that
// do not depend on the application container: a dig-backed resolver, a
// fixed value table and a chain that tries several resolvers in turn.
package resolvers

import (
	"errors"
	"fmt"
	"reflect"

	"go.uber.org/dig"

	"github.com/km-arc/go-activation/framework/activation"
)

// ErrUnresolved is returned when no resolver in a chain, or no entry in a
// value table, can serve a request.
var ErrUnresolved = errors.New("resolvers: service not available")

// ── Dig ───────────────────────────────────────────────────────────────────────

// Dig resolves services from a dig container. Constructors are registered
// with the embedded container's Provide; Resolve invokes a function whose
// only parameter is the requested type.
//
//	d := resolvers.NewDig()
//	d.MustProvide(func() Greeter { return englishGreeter{} })
//	a.Create(activation.TypeOf[*HomeController](), d)
type Dig struct {
	*dig.Container
}

// NewDig returns a resolver over an empty dig container.
func NewDig(opts ...dig.Option) *Dig {
	return &Dig{Container: dig.New(opts...)}
}

// Resolve asks dig for a value of type t, running constructors as needed.
func (d *Dig) Resolve(t reflect.Type) (any, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: type is nil", activation.ErrInvalidArgument)
	}

	var out any
	sink := reflect.MakeFunc(reflect.FuncOf([]reflect.Type{t}, nil, false), func(args []reflect.Value) []reflect.Value {
		out = args[0].Interface()
		return nil
	})
	if err := d.Invoke(sink.Interface()); err != nil {
		return nil, fmt.Errorf("resolvers: dig cannot resolve %s: %w", t, err)
	}
	return out, nil
}

// MustProvide registers a constructor and panics on error.
func (d *Dig) MustProvide(constructor any, opts ...dig.ProvideOption) {
	if err := d.Provide(constructor, opts...); err != nil {
		panic(fmt.Sprintf("resolvers: failed to provide dependency: %v", err))
	}
}

// ProvideValue registers a pre-built value under its static type T.
func ProvideValue[T any](d *Dig, value T) error {
	return d.Provide(func() T { return value })
}

// ── Values ────────────────────────────────────────────────────────────────────

// Values is a fixed table of services keyed by type. Lookups are exact; an
// interface type must be a key of its own.
type Values map[reflect.Type]any

// Set stores value under T.
func Set[T any](v Values, value T) Values {
	v[activation.TypeOf[T]()] = value
	return v
}

// Resolve returns the value stored under t.
func (v Values) Resolve(t reflect.Type) (any, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: type is nil", activation.ErrInvalidArgument)
	}
	if s, ok := v[t]; ok {
		return s, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnresolved, t)
}

// ── Chain ─────────────────────────────────────────────────────────────────────

// Chain tries each resolver in order and returns the first success. A
// request-scoped resolver placed before the application container lets
// per-request values shadow application services.
type Chain []activation.ServiceResolver

// Resolve returns the first value any member resolves. When all fail, the
// error joins ErrUnresolved with every member's error.
func (c Chain) Resolve(t reflect.Type) (any, error) {
	errs := []error{ErrUnresolved}
	for _, r := range c {
		if r == nil {
			continue
		}
		v, err := r.Resolve(t)
		if err == nil {
			return v, nil
		}
		errs = append(errs, err)
	}
	return nil, errors.Join(errs...)
}

// ResolveNamed tries every member that is an activation.NamedResolver.
func (c Chain) ResolveNamed(name string) (any, error) {
	errs := []error{ErrUnresolved}
	for _, r := range c {
		n, ok := r.(activation.NamedResolver)
		if !ok {
			continue
		}
		v, err := n.ResolveNamed(name)
		if err == nil {
			return v, nil
		}
		errs = append(errs, err)
	}
	return nil, errors.Join(errs...)
}

var (
	_ activation.ServiceResolver = (*Dig)(nil)
	_ activation.ServiceResolver = Values(nil)
	_ activation.NamedResolver   = Chain(nil)
)

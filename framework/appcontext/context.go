// Package appcontext wraps the container as a named application context:
// the registry controllers are looked up in before the activation cache is
// asked to build them.
package appcontext

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/km-arc/go-activation/framework/activation"
	"github.com/km-arc/go-activation/framework/config"
	"github.com/km-arc/go-activation/framework/container"
)

// Key is the abstract an application context is registered under.
const Key = "app.context"

// ErrNotRegistered is returned by FromContainer when no context is
// registered as a singleton under Key.
var ErrNotRegistered = errors.New("appcontext: application context is not registered or is not a singleton")

// Context is an application context over a container.
type Context struct {
	args      config.ApplicationContextArgs
	container *container.Container
}

// New wraps c. With args.Refresh set, the singletons in scope (see Refresh)
// are built before New returns and the first failure is reported.
func New(c *container.Container, args config.ApplicationContextArgs) (*Context, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: container is nil", activation.ErrInvalidArgument)
	}
	ctx := &Context{args: args, container: c}
	if args.Refresh {
		if err := ctx.Refresh(); err != nil {
			return nil, err
		}
	}
	return ctx, nil
}

// Register creates a context over c and registers it in c under Key.
func Register(c *container.Container, args config.ApplicationContextArgs) (*Context, error) {
	ctx, err := New(c, args)
	if err != nil {
		return nil, err
	}
	c.Instance(Key, ctx)
	return ctx, nil
}

// FromContainer returns the context registered in c under Key. The entry
// must be a singleton: a transient binding would hand every caller a
// different context.
func FromContainer(c *container.Container) (*Context, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: container is nil", activation.ErrInvalidArgument)
	}
	if !c.IsSingleton(Key) {
		return nil, ErrNotRegistered
	}
	v, err := c.TryMake(Key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotRegistered, err)
	}
	ctx, ok := v.(*Context)
	if !ok {
		return nil, fmt.Errorf("%w: [%s] holds %T", ErrNotRegistered, Key, v)
	}
	return ctx, nil
}

// Name returns the context name.
func (x *Context) Name() string { return x.args.Name }

// Args returns the arguments the context was created with.
func (x *Context) Args() config.ApplicationContextArgs { return x.args }

// Container returns the wrapped container.
func (x *Context) Container() *container.Container { return x.container }

// Refresh builds the singletons that have not been built yet. With
// Resources set, only the abstracts tagged with one of those groups are in
// scope, and each of them must be bound; otherwise every singleton is.
// A factory that panics is reported as an error.
func (x *Context) Refresh() error {
	for _, abstract := range x.scope() {
		if !x.container.IsSingleton(abstract) && x.container.Bound(abstract) {
			continue
		}
		if x.container.Resolved(abstract) {
			continue
		}
		if err := x.build(abstract); err != nil {
			return err
		}
	}
	return nil
}

// scope lists the abstracts Refresh considers, in order and without
// duplicates.
func (x *Context) scope() []string {
	if len(x.args.Resources) == 0 {
		return x.container.Bindings()
	}
	seen := make(map[string]bool)
	var out []string
	for _, group := range x.args.Resources {
		for _, abstract := range x.container.TagMembers(group) {
			if !seen[abstract] {
				seen[abstract] = true
				out = append(out, abstract)
			}
		}
	}
	return out
}

func (x *Context) build(abstract string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = fmt.Errorf("appcontext: refresh [%s]: %w", abstract, e)
				return
			}
			err = fmt.Errorf("appcontext: refresh [%s]: %v", abstract, r)
		}
	}()
	if _, err := x.container.TryMake(abstract); err != nil {
		return fmt.Errorf("appcontext: refresh [%s]: %w", abstract, err)
	}
	return nil
}

// Resources returns the groups the context refreshes.
func (x *Context) Resources() []string {
	return append([]string(nil), x.args.Resources...)
}

// FindByType implements activation.Lookup over the container's singletons.
// The context itself is never a candidate.
func (x *Context) FindByType(t reflect.Type) []activation.Candidate {
	found := x.container.FindByType(t)
	out := found[:0]
	for _, c := range found {
		if ctx, ok := c.Instance.(*Context); ok && ctx == x {
			continue
		}
		out = append(out, c)
	}
	return out
}

// Resolve implements activation.ServiceResolver.
func (x *Context) Resolve(t reflect.Type) (any, error) {
	return x.container.Resolve(t)
}

// ResolveNamed implements activation.NamedResolver. A context that is not
// case sensitive falls back to the first abstract, in registration order,
// that matches name ignoring case.
func (x *Context) ResolveNamed(name string) (any, error) {
	v, err := x.container.ResolveNamed(name)
	if err == nil || x.args.CaseSensitive || !errors.Is(err, container.ErrNotBound) {
		return v, err
	}
	for _, abstract := range x.container.Bindings() {
		if strings.EqualFold(abstract, name) {
			return x.container.ResolveNamed(abstract)
		}
	}
	return nil, err
}

// ContainsObject reports whether name is registered, honouring CaseSensitive.
func (x *Context) ContainsObject(name string) bool {
	if x.container.Bound(name) {
		return true
	}
	if x.args.CaseSensitive {
		return false
	}
	for _, abstract := range x.container.Bindings() {
		if strings.EqualFold(abstract, name) {
			return true
		}
	}
	return false
}

// Close disposes the container's built singletons.
func (x *Context) Close() error {
	return x.container.Dispose()
}

// ObjectsOfType returns every singleton assignable to T, keyed by abstract.
func ObjectsOfType[T any](x *Context) map[string]T {
	found := x.FindByType(activation.TypeOf[T]())
	out := make(map[string]T, len(found))
	for _, c := range found {
		out[c.Name] = c.Instance.(T)
	}
	return out
}

var (
	_ activation.Lookup          = (*Context)(nil)
	_ activation.ServiceResolver = (*Context)(nil)
	_ activation.NamedResolver   = (*Context)(nil)
)

package container

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/km-arc/go-activation/framework/activation"
)

// ErrNotBound is returned when nothing is registered under an abstract.
var ErrNotBound = errors.New("container: no binding registered")

// ── Binding types ─────────────────────────────────────────────────────────────

// Factory is a function that builds a concrete value from the container.
type Factory func(c *Container) any

// binding holds a registered factory and whether it is a singleton.
// typ is the declared result type, when known, so type lookups can match a
// singleton without building it.
type binding struct {
	factory   Factory
	singleton bool
	typ       reflect.Type
}

// extender wraps an already-resolved instance with decorator logic.
type extender func(instance any, c *Container) any

// ── Container ─────────────────────────────────────────────────────────────────

// registry is the state shared by a container and every build view of it.
type registry struct {
	mu sync.RWMutex

	bindings   map[string]*binding
	instances  map[string]any
	aliases    map[string]string
	extenders  map[string][]extender
	tags       map[string][]string
	contextual map[string]map[string]Factory

	reboundCallbacks map[string][]func(any)
	afterResolving   []func(string, any)

	// abstracts in first-registration order; drives FindByType and Dispose
	order []string
}

// Container is the IoC container, modelled on Laravel's.
//
// It supports:
//   - Bind / Singleton / Instance / Alias
//   - Make / Resolve (generic) / lookup by type
//   - Tags, Extend, contextual binding
//   - Rebound and resolved callbacks
//
// A Container is safe for concurrent use. Factories receive a build view of
// the container that remembers which abstract is being built, which is what
// contextual bindings key on.
type Container struct {
	*registry

	// abstract currently being built by this view ("" for the root)
	building string
}

// New creates an empty container.
func New() *Container {
	c := &Container{registry: &registry{
		bindings:         make(map[string]*binding),
		instances:        make(map[string]any),
		aliases:          make(map[string]string),
		extenders:        make(map[string][]extender),
		tags:             make(map[string][]string),
		contextual:       make(map[string]map[string]Factory),
		reboundCallbacks: make(map[string][]func(any)),
	}}
	c.Instance("container", c)
	return c
}

// ── Registration ──────────────────────────────────────────────────────────────

// Bind registers a transient (new instance each Make) factory.
//
//	c.Bind("mailer", func(c *container.Container) any {
//	    return mail.NewSMTP(container.Resolve[*config.Config](c, "config").Mail)
//	})
func (c *Container) Bind(abstract string, factory Factory) {
	c.bind(abstract, factory, false, nil)
}

// Singleton registers a factory whose result is cached after first resolution.
func (c *Container) Singleton(abstract string, factory Factory) {
	c.bind(abstract, factory, true, nil)
}

// Instance registers a pre-built value as a singleton.
func (c *Container) Instance(abstract string, instance any) {
	c.mu.Lock()
	key := c.canonical(abstract)
	c.remember(key)
	delete(c.bindings, key)
	c.instances[key] = instance
	c.mu.Unlock()

	c.fireRebound(abstract, instance)
}

func (c *Container) bind(abstract string, factory Factory, singleton bool, typ reflect.Type) {
	c.mu.Lock()
	key := c.canonical(abstract)
	c.remember(key)
	_, wasResolved := c.instances[key]
	delete(c.instances, key)
	c.bindings[key] = &binding{factory: factory, singleton: singleton, typ: typ}
	c.mu.Unlock()

	// Rebuild with the new factory so rebound listeners see the replacement.
	if wasResolved && c.hasRebound(abstract) {
		if instance, err := c.make(abstract); err == nil {
			c.fireRebound(abstract, instance)
		}
	}
}

// remember appends key to the registration order once (must hold mu.Lock).
func (c *Container) remember(key string) {
	if _, ok := c.bindings[key]; ok {
		return
	}
	if _, ok := c.instances[key]; ok {
		return
	}
	c.order = append(c.order, key)
}

// Alias registers an alternative name for an abstract.
func (c *Container) Alias(abstract, alias string) {
	if abstract == alias {
		panic(fmt.Sprintf("container: [%s] is aliased to itself", abstract))
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aliases[alias] = c.canonical(abstract)
}

// ── Typed registration ────────────────────────────────────────────────────────

// InstanceOf registers instance under the key of T.
//
//	container.InstanceOf[UserStore](c, pgStore)
func InstanceOf[T any](c *Container, instance T) {
	c.Instance(KeyFor[T](), instance)
}

// SingletonOf registers a singleton factory under the key of T. The declared
// type lets FindByType match the binding before it has ever been built.
func SingletonOf[T any](c *Container, factory func(c *Container) T) {
	c.bind(KeyFor[T](), func(c *Container) any { return factory(c) }, true, activation.TypeOf[T]())
}

// BindOf registers a transient factory under the key of T.
func BindOf[T any](c *Container, factory func(c *Container) T) {
	c.bind(KeyFor[T](), func(c *Container) any { return factory(c) }, false, activation.TypeOf[T]())
}

// ── Contextual Binding ────────────────────────────────────────────────────────

// When starts a contextual binding chain.
//
//	c.When("PhotoController").Needs("Filesystem").Give(func(c *container.Container) any {
//	    return filesystem.NewS3(...)
//	})
func (c *Container) When(concrete string) *ContextualBuilder {
	return &ContextualBuilder{container: c, concrete: concrete}
}

func (c *Container) getContextual(concrete, abstract string) Factory {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if m, ok := c.contextual[concrete]; ok {
		return m[abstract]
	}
	return nil
}

// ── Extend ────────────────────────────────────────────────────────────────────

// Extend decorates the resolved instance of an abstract. An already-built
// singleton is decorated in place.
func (c *Container) Extend(abstract string, fn extender) {
	c.mu.Lock()
	key := c.canonical(abstract)
	c.extenders[key] = append(c.extenders[key], fn)
	inst, ok := c.instances[key]
	c.mu.Unlock()
	if !ok {
		return
	}

	extended := fn(inst, c)
	c.mu.Lock()
	c.instances[key] = extended
	c.mu.Unlock()

	c.fireRebound(abstract, extended)
}

// ── Tags ──────────────────────────────────────────────────────────────────────

// Tag associates multiple abstracts under a named group.
func (c *Container) Tag(abstracts []string, tag string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tags[tag] = append(c.tags[tag], abstracts...)
}

// Tagged resolves all abstracts registered under a tag.
func (c *Container) Tagged(tag string) []any {
	c.mu.RLock()
	abstracts := append([]string(nil), c.tags[tag]...)
	c.mu.RUnlock()

	result := make([]any, 0, len(abstracts))
	for _, abs := range abstracts {
		result = append(result, c.Make(abs))
	}
	return result
}

// TagMembers returns the abstracts registered under a tag without
// resolving them.
func (c *Container) TagMembers(tag string) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.tags[tag]...)
}

// ── Resolution ────────────────────────────────────────────────────────────────

// Make resolves an abstract from the container and panics when nothing is
// bound under it. Use TryMake where a missing binding is expected.
func (c *Container) Make(abstract string) any {
	instance, err := c.make(abstract)
	if err != nil {
		panic(err.Error())
	}
	return instance
}

// TryMake resolves an abstract, returning an error wrapping ErrNotBound when
// nothing is registered under it.
func (c *Container) TryMake(abstract string) (any, error) {
	return c.make(abstract)
}

func (c *Container) make(abstract string) (any, error) {
	c.mu.RLock()
	key := c.canonical(abstract)
	inst, ok := c.instances[key]
	b, bound := c.bindings[key]
	c.mu.RUnlock()

	if ok {
		return inst, nil
	}

	if c.building != "" {
		if f := c.getContextual(c.building, abstract); f != nil {
			return c.runFactory(key, f, false), nil
		}
	}

	if !bound {
		return nil, fmt.Errorf("%w for [%s]", ErrNotBound, abstract)
	}
	return c.runFactory(key, b.factory, b.singleton), nil
}

// runFactory executes a factory through a build view, optionally caching the
// result. When two goroutines race to build the same singleton the first one
// stored wins and both get it.
func (c *Container) runFactory(key string, f Factory, singleton bool) any {
	instance := f(&Container{registry: c.registry, building: key})

	c.mu.RLock()
	exts := c.extenders[key]
	c.mu.RUnlock()
	for _, ext := range exts {
		instance = ext(instance, c)
	}

	if singleton {
		c.mu.Lock()
		if existing, ok := c.instances[key]; ok {
			instance = existing
		} else {
			c.instances[key] = instance
		}
		c.mu.Unlock()
	}

	c.fireAfterResolving(key, instance)
	return instance
}

// ── Type lookup ───────────────────────────────────────────────────────────────

// FindByType returns every singleton entry assignable to t, in registration
// order. Pre-built instances and already-resolved singletons are matched by
// their dynamic type; unresolved singletons registered with SingletonOf are
// matched by declared type and built on demand. Transient bindings are never
// returned: each Make would hand out a different object. The container's own
// self-registration is skipped.
func (c *Container) FindByType(t reflect.Type) []activation.Candidate {
	if t == nil {
		return nil
	}

	type pending struct {
		key string
		b   *binding
	}

	var (
		found []activation.Candidate
		lazy  []pending
	)

	c.mu.RLock()
	for _, key := range c.order {
		if inst, ok := c.instances[key]; ok {
			if c.isSelf(inst) {
				continue
			}
			if inst != nil && reflect.TypeOf(inst).AssignableTo(t) {
				found = append(found, activation.Candidate{Name: key, Instance: inst})
			}
			continue
		}
		if b, ok := c.bindings[key]; ok && b.singleton && b.typ != nil && b.typ.AssignableTo(t) {
			lazy = append(lazy, pending{key: key, b: b})
			found = append(found, activation.Candidate{Name: key})
		}
	}
	c.mu.RUnlock()

	// Build lazily-matched singletons outside the lock, keeping their slots.
	for _, p := range lazy {
		inst := c.runFactory(p.key, p.b.factory, true)
		for i := range found {
			if found[i].Name == p.key {
				found[i].Instance = inst
			}
		}
	}
	return found
}

// Resolve makes the container an activation.ServiceResolver: the type is
// looked up under its KeyFor key.
func (c *Container) Resolve(t reflect.Type) (any, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: type is nil", activation.ErrInvalidArgument)
	}
	return c.make(KeyOf(t))
}

// ResolveNamed makes the container an activation.NamedResolver.
func (c *Container) ResolveNamed(name string) (any, error) {
	return c.make(name)
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// Bound returns true if an abstract has been registered.
func (c *Container) Bound(abstract string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	key := c.canonical(abstract)
	_, hasBinding := c.bindings[key]
	_, hasInstance := c.instances[key]
	return hasBinding || hasInstance
}

// IsSingleton reports whether abstract is a pre-built instance or a
// singleton binding.
func (c *Container) IsSingleton(abstract string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	key := c.canonical(abstract)
	if _, ok := c.instances[key]; ok {
		return true
	}
	b, ok := c.bindings[key]
	return ok && b.singleton
}

// Resolved returns true if the abstract has a built instance.
func (c *Container) Resolved(abstract string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.instances[c.canonical(abstract)]
	return ok
}

// Forget removes all registrations for an abstract (binding + instance).
func (c *Container) Forget(abstract string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := c.canonical(abstract)
	delete(c.bindings, key)
	delete(c.instances, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i:i], c.order[i+1:]...)
			break
		}
	}
}

// Flush resets the entire container.
func (c *Container) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bindings = make(map[string]*binding)
	c.instances = make(map[string]any)
	c.aliases = make(map[string]string)
	c.extenders = make(map[string][]extender)
	c.tags = make(map[string][]string)
	c.contextual = make(map[string]map[string]Factory)
	c.order = nil
}

// Bindings returns all registered abstract keys in registration order.
func (c *Container) Bindings() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]string(nil), c.order...)
}

// Dispose disposes every built singleton that implements
// activation.Disposer, newest first, and returns the joined errors. The
// container disposes only what it owns, so the container itself is skipped.
func (c *Container) Dispose() error {
	c.mu.RLock()
	var disposers []activation.Disposer
	for i := len(c.order) - 1; i >= 0; i-- {
		inst, ok := c.instances[c.order[i]]
		if !ok {
			continue
		}
		if c.isSelf(inst) {
			continue
		}
		if d, ok := inst.(activation.Disposer); ok {
			disposers = append(disposers, d)
		}
	}
	c.mu.RUnlock()

	var errs []error
	for _, d := range disposers {
		if err := d.Dispose(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// isSelf reports whether v is a view of this container.
func (c *Container) isSelf(v any) bool {
	other, ok := v.(*Container)
	return ok && other.registry == c.registry
}

// bindingFor returns the factory binding registered under abstract, or nil
// when there is none or a built instance shadows it.
func (c *Container) bindingFor(abstract string) *binding {
	c.mu.RLock()
	defer c.mu.RUnlock()
	key := c.canonical(abstract)
	if _, ok := c.instances[key]; ok {
		return nil
	}
	return c.bindings[key]
}

// canonical resolves an alias to its canonical key (must hold mu).
func (c *Container) canonical(abstract string) string {
	if target, ok := c.aliases[abstract]; ok {
		return target
	}
	return abstract
}

// ── Callbacks ─────────────────────────────────────────────────────────────────

// Rebinding registers a callback to be called whenever an abstract is re-bound.
func (c *Container) Rebinding(abstract string, cb func(any)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reboundCallbacks[abstract] = append(c.reboundCallbacks[abstract], cb)
}

// AfterResolving registers a callback fired after any abstract is resolved.
func (c *Container) AfterResolving(cb func(abstract string, instance any)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.afterResolving = append(c.afterResolving, cb)
}

func (c *Container) hasRebound(abstract string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.reboundCallbacks[abstract]) > 0
}

func (c *Container) fireRebound(abstract string, instance any) {
	c.mu.RLock()
	cbs := c.reboundCallbacks[abstract]
	c.mu.RUnlock()
	for _, cb := range cbs {
		cb(instance)
	}
}

func (c *Container) fireAfterResolving(abstract string, instance any) {
	c.mu.RLock()
	cbs := c.afterResolving
	c.mu.RUnlock()
	for _, cb := range cbs {
		cb(abstract, instance)
	}
}

// ── Keys ──────────────────────────────────────────────────────────────────────

// KeyOf returns the abstract key used for type-based registration: the
// package-qualified type name, with a leading "*" per pointer level.
//
//	container.KeyOf(reflect.TypeOf(&UserController{}))  // "*example.com/app.UserController"
func KeyOf(t reflect.Type) string {
	if t.Kind() == reflect.Pointer {
		return "*" + KeyOf(t.Elem())
	}
	if t.Name() != "" && t.PkgPath() != "" {
		return t.PkgPath() + "." + t.Name()
	}
	return t.String()
}

// KeyFor returns KeyOf for T.
func KeyFor[T any]() string {
	return KeyOf(activation.TypeOf[T]())
}

// ── Generics helper ───────────────────────────────────────────────────────────

// Resolve is a generic helper that calls Make and type-asserts the result.
//
//	db := container.Resolve[*sql.DB](c, "db")
func Resolve[T any](c *Container, abstract string) T {
	instance := c.Make(abstract)
	typed, ok := instance.(T)
	if !ok {
		panic(fmt.Sprintf("container: Resolve[%T]: [%s] resolved to %T", *new(T), abstract, instance))
	}
	return typed
}

// MustResolve is like Resolve but returns (T, bool) without panicking on a
// type mismatch.
func MustResolve[T any](c *Container, abstract string) (T, bool) {
	instance := c.Make(abstract)
	typed, ok := instance.(T)
	return typed, ok
}

// ResolveType resolves T by its type key.
func ResolveType[T any](c *Container) (T, error) {
	var zero T
	instance, err := c.make(KeyFor[T]())
	if err != nil {
		return zero, err
	}
	typed, ok := instance.(T)
	if !ok {
		return zero, fmt.Errorf("container: [%s] resolved to %T", KeyFor[T](), instance)
	}
	return typed, nil
}

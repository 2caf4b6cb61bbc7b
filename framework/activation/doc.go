// Package activation resolves instances for a requested type: registered
// instances first, a memoized per-type factory otherwise.
//
// # Overview
//
// An Activator is given a Lookup (usually the application container) and a
// Cache of factories. Create asks the lookup for instances assignable to the
// requested type and returns the first one. When nothing is registered it
// builds a new instance through the cached factory for that type, pulling
// missing dependencies from a ServiceResolver supplied per call.
//
//	cache := activation.NewCache(activation.WithConstructors(ctors))
//	a := activation.New(app.Container, cache)
//
//	ctrl, err := a.Create(activation.TypeOf[*UserController](), requestServices)
//	if err != nil { ... }
//	defer a.Release(ctrl)
//
// # Factories
//
// The default factory for a type T does one of:
//
//   - call the constructor registered for T in Constructors, resolving each
//     parameter by type
//   - allocate T (a struct or pointer to struct) and fill every exported
//     field tagged `inject:""` by type, `inject:"name"` by name, with
//     `,optional` leaving unresolvable fields at their zero value
//
// Anything else fails with a *ConstructionError wrapping ErrNoConstructor.
// The failure is reported when the factory is invoked, not when it is cached.
//
// # Release
//
// Release calls Dispose on a Disposer, or Close on an io.Closer, and returns
// its error unchanged. Other values are left alone.
//
// # Errors
//
//   - ErrInvalidArgument: a nil type, instance or resolver
//   - *ConstructionError: the factory could not build the type
//
// The package never logs and never retries; callers decide what a failure
// means for the request being served.
package activation

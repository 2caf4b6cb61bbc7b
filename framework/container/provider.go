package container

import (
	"fmt"
	"sync"
)

// ── ServiceProvider interfaces ────────────────────────────────────────────────

// ServiceProvider groups the bindings of one subsystem.
//
// Register binds services into the container and should not resolve other
// bindings: the provider that owns them may not have run yet. Providers that
// need to use resolved services implement Booter.
//
//	type StoreProvider struct{}
//
//	func (StoreProvider) Register(app *container.Container) error {
//	    container.SingletonOf[UserStore](app, func(c *container.Container) UserStore {
//	        return memstore.New()
//	    })
//	    return nil
//	}
type ServiceProvider interface {
	Register(app *Container) error
}

// Booter is implemented by providers with work to do once every provider
// has been registered.
type Booter interface {
	Boot(app *Container) error
}

// DeferredProvider is a provider whose Register is postponed until one of
// the abstracts it Provides is first resolved.
type DeferredProvider interface {
	ServiceProvider
	Provides() []string
}

// ── ProviderRegistry ──────────────────────────────────────────────────────────

// ProviderRegistry registers and boots ServiceProviders, including deferred
// ones. It is safe for concurrent use; deferred providers register at most
// once even when their abstracts are resolved from several goroutines.
type ProviderRegistry struct {
	app *Container

	mu         sync.Mutex
	eager      []ServiceProvider
	deferred   []DeferredProvider
	registered map[ServiceProvider]bool
	booted     bool
}

// NewProviderRegistry creates a registry bound to app.
func NewProviderRegistry(app *Container) *ProviderRegistry {
	return &ProviderRegistry{
		app:        app,
		registered: make(map[ServiceProvider]bool),
	}
}

// Register adds a provider. Eager providers run Register immediately, and
// Boot too when the registry has already booted. Registering the same
// provider twice is a no-op.
func (r *ProviderRegistry) Register(provider ServiceProvider) error {
	r.mu.Lock()
	if r.registered[provider] {
		r.mu.Unlock()
		return nil
	}
	r.registered[provider] = true

	if d, ok := provider.(DeferredProvider); ok && len(d.Provides()) > 0 {
		r.deferred = append(r.deferred, d)
		r.mu.Unlock()
		r.interceptDeferred(d)
		return nil
	}

	r.eager = append(r.eager, provider)
	booted := r.booted
	r.mu.Unlock()

	if err := provider.Register(r.app); err != nil {
		return fmt.Errorf("container: register %T: %w", provider, err)
	}
	if booted {
		return boot(provider, r.app)
	}
	return nil
}

// interceptDeferred binds a placeholder for each deferred abstract. The first
// resolution of any of them registers the provider for real (and boots it
// when the registry is booted), then resolves the abstract again against the
// provider's own bindings.
func (r *ProviderRegistry) interceptDeferred(provider DeferredProvider) {
	var (
		once sync.Once
		err  error
	)
	load := func(c *Container) error {
		once.Do(func() {
			if err = provider.Register(c); err != nil {
				err = fmt.Errorf("container: register deferred %T: %w", provider, err)
				return
			}
			if r.Booted() {
				err = boot(provider, c)
			}
		})
		return err
	}

	for _, abstract := range provider.Provides() {
		var placeholder *binding
		r.app.Bind(abstract, func(c *Container) any {
			if err := load(c); err != nil {
				panic(err)
			}
			if c.bindingFor(abstract) == placeholder {
				panic(fmt.Errorf("container: deferred %T provides [%s] but did not bind it", provider, abstract))
			}
			return c.Make(abstract)
		})
		placeholder = r.app.bindingFor(abstract)
	}
}

// Boot boots every eager provider in registration order and stops at the
// first error. Calling Boot again is a no-op.
func (r *ProviderRegistry) Boot() error {
	r.mu.Lock()
	if r.booted {
		r.mu.Unlock()
		return nil
	}
	r.booted = true
	providers := append([]ServiceProvider(nil), r.eager...)
	r.mu.Unlock()

	for _, p := range providers {
		if err := boot(p, r.app); err != nil {
			return err
		}
	}
	return nil
}

func boot(p ServiceProvider, app *Container) error {
	b, ok := p.(Booter)
	if !ok {
		return nil
	}
	if err := b.Boot(app); err != nil {
		return fmt.Errorf("container: boot %T: %w", p, err)
	}
	return nil
}

// Booted returns true if Boot() has been called.
func (r *ProviderRegistry) Booted() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.booted
}

// Providers returns all registered eager providers.
func (r *ProviderRegistry) Providers() []ServiceProvider {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ServiceProvider(nil), r.eager...)
}

// Deferred returns the registered deferred providers, loaded or not.
func (r *ProviderRegistry) Deferred() []DeferredProvider {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]DeferredProvider(nil), r.deferred...)
}

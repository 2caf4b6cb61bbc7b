// Package container provides the application's IoC container and service
// provider registry.
//
// # Overview
//
// The container manages the instantiation and lifecycle of the application's
// services. It supports transient bindings, singletons, pre-built instances,
// aliases, tags, contextual bindings and decoration through Extend.
//
// Every entry is registered under a string abstract. Entries registered with
// the typed helpers (InstanceOf, SingletonOf, BindOf) use KeyFor[T] as their
// abstract, which is what lets the container answer lookups by type:
//
//	container.SingletonOf[UserStore](c, func(c *container.Container) UserStore {
//	    return memstore.New()
//	})
//
//	store, err := container.ResolveType[UserStore](c)
//
// # Container Lifecycle
//
//  1. Create: c := container.New()
//  2. Register providers: registry.Register(StoreProvider{})
//  3. Boot: registry.Boot(); safe to resolve everything after this
//  4. Serve requests
//  5. Dispose: c.Dispose() tears down built singletons, newest first
//
// # Bindings
//
//	// Transient: new instance every Make()
//	c.Bind("mailer", func(c *container.Container) any { return &SMTPMailer{} })
//
//	// Singleton: created once, reused
//	c.Singleton("cache", func(c *container.Container) any {
//	    cfg := container.Resolve[*config.Config](c, "config")
//	    return cache.New(cfg)
//	})
//
//	// Pre-built value
//	c.Instance("config", cfg)
//
//	// Alias
//	c.Alias("cache", "cacheManager")
//
// # Lookup by type
//
// Container implements activation.Lookup, activation.ServiceResolver and
// activation.NamedResolver, so an activation.Activator can use it both to
// find registered controllers and to satisfy their dependencies.
//
// FindByType returns singleton entries in registration order. The first
// match is therefore deterministic: it is the entry registered first.
// Transient bindings are never returned.
//
// # Contextual Binding
//
//	c.When("reports.controller").
//	    Needs("storage").
//	    Give(func(c *container.Container) any { return &S3Storage{} })
//
// # Tags
//
//	c.Tag([]string{"cpu.report", "mem.report"}, "reports")
//	reports := c.Tagged("reports")  // []any
//
// # Service Providers
//
//	registry := container.NewProviderRegistry(c)
//	if err := registry.Register(StoreProvider{}); err != nil { ... }
//	if err := registry.Boot(); err != nil { ... }
//
// A provider implementing DeferredProvider is registered on the first
// resolution of any abstract it Provides.
package container

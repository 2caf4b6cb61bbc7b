package container

// ContextualBuilder implements the fluent contextual binding API: when the
// concrete abstract is being built and asks for needs, hand it the given
// factory instead of the regular binding.
//
//	c.When("reports.controller").Needs("storage").Give(func(c *container.Container) any {
//	    return storage.NewS3(...)
//	})
type ContextualBuilder struct {
	container *Container
	concrete  string
	needs     string
}

// WhenType starts a contextual binding chain for the type key of T.
func WhenType[T any](c *Container) *ContextualBuilder {
	return c.When(KeyFor[T]())
}

// Needs specifies which abstract the concrete type depends on.
func (b *ContextualBuilder) Needs(abstract string) *ContextualBuilder {
	b.needs = abstract
	return b
}

// NeedsType is Needs for the type key of T.
func NeedsType[T any](b *ContextualBuilder) *ContextualBuilder {
	return b.Needs(KeyFor[T]())
}

// Give registers the factory used when the concrete type resolves the
// abstract named by Needs.
func (b *ContextualBuilder) Give(factory Factory) {
	reg := b.container.registry
	reg.mu.Lock()
	defer reg.mu.Unlock()

	m, ok := reg.contextual[b.concrete]
	if !ok {
		m = make(map[string]Factory)
		reg.contextual[b.concrete] = m
	}
	m[b.needs] = factory
}

// GiveValue is Give for a pre-built value.
func (b *ContextualBuilder) GiveValue(value any) {
	b.Give(func(*Container) any { return value })
}

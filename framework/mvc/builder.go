package mvc

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/km-arc/go-activation/framework/activation"
	"github.com/km-arc/go-activation/framework/appcontext"
	"github.com/km-arc/go-activation/framework/container"
	"github.com/km-arc/go-activation/framework/metrics"
	"github.com/km-arc/go-activation/framework/routing"
)

// ErrContextNotRegistered is returned by UseRegisteredContainerActivator
// when the container holds no application context singleton.
var ErrContextNotRegistered = appcontext.ErrNotRegistered

// Builder configures how routes activate their controllers.
type Builder struct {
	container *container.Container
	router    *routing.Router
	services  activation.ServiceResolver
	cache     *activation.Cache
	log       *zap.Logger
	metrics   *metrics.Recorder
	debug     bool

	mu        sync.RWMutex
	activator ControllerActivator
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the logger for activation and release failures.
func WithLogger(l *zap.Logger) Option {
	return func(b *Builder) { b.log = l }
}

// WithMetrics records activations on m.
func WithMetrics(m *metrics.Recorder) Option {
	return func(b *Builder) { b.metrics = m }
}

// WithCache shares a factory cache with the builder's activators.
func WithCache(c *activation.Cache) Option {
	return func(b *Builder) { b.cache = c }
}

// WithServices sets the application resolver behind request services. The
// container is used when none is given.
func WithServices(r activation.ServiceResolver) Option {
	return func(b *Builder) { b.services = r }
}

// WithDebug includes error details in activation failure responses.
func WithDebug(debug bool) Option {
	return func(b *Builder) { b.debug = debug }
}

// NewBuilder returns a builder over c and router that starts out with the
// default activator: every controller is built through the factory cache.
func NewBuilder(c *container.Container, router *routing.Router, opts ...Option) *Builder {
	b := &Builder{container: c, router: router}
	for _, opt := range opts {
		opt(b)
	}
	if b.log == nil {
		b.log = zap.NewNop()
	}
	if b.cache == nil {
		b.cache = activation.NewCache()
	}
	if b.services == nil && c != nil {
		b.services = c
	}
	b.activator = NewDefaultActivator(b.cache)
	return b
}

// Container returns the application container.
func (b *Builder) Container() *container.Container { return b.container }

// Router returns the router controllers are mounted on.
func (b *Builder) Router() *routing.Router { return b.router }

// Cache returns the factory cache shared by the builder's activators.
func (b *Builder) Cache() *activation.Cache { return b.cache }

// Activator returns the activator currently in use.
func (b *Builder) Activator() ControllerActivator {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.activator
}

// SetActivator replaces the activator used by every route, including routes
// registered earlier.
func (b *Builder) SetActivator(a ControllerActivator) error {
	if a == nil {
		return fmt.Errorf("%w: activator is nil", activation.ErrInvalidArgument)
	}
	b.mu.Lock()
	b.activator = a
	b.mu.Unlock()
	return nil
}

// UseContainerActivator makes b activate controllers from lookup first,
// building them only when nothing is registered for their type.
func UseContainerActivator(b *Builder, lookup activation.Lookup) (*Builder, error) {
	if b == nil {
		return nil, fmt.Errorf("%w: builder is nil", activation.ErrInvalidArgument)
	}
	if lookup == nil {
		return nil, fmt.Errorf("%w: lookup is nil", activation.ErrInvalidArgument)
	}
	a, err := NewContainerActivator(lookup, b.cache)
	if err != nil {
		return nil, err
	}
	if err := b.SetActivator(a); err != nil {
		return nil, err
	}
	return b, nil
}

// UseRegisteredContainerActivator is UseContainerActivator with the
// application context registered in b's container as the lookup. It fails
// with ErrContextNotRegistered when there is no such context or when it is
// not registered as a singleton.
func UseRegisteredContainerActivator(b *Builder) (*Builder, error) {
	if b == nil {
		return nil, fmt.Errorf("%w: builder is nil", activation.ErrInvalidArgument)
	}
	ctx, err := appcontext.FromContainer(b.container)
	if err != nil {
		return nil, err
	}
	return UseContainerActivator(b, ctx)
}

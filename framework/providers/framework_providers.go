package providers

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/km-arc/go-activation/framework/activation"
	"github.com/km-arc/go-activation/framework/activation/resolvers"
	"github.com/km-arc/go-activation/framework/appcontext"
	"github.com/km-arc/go-activation/framework/config"
	"github.com/km-arc/go-activation/framework/container"
	"github.com/km-arc/go-activation/framework/logging"
	"github.com/km-arc/go-activation/framework/metrics"
	"github.com/km-arc/go-activation/framework/mvc"
	"github.com/km-arc/go-activation/framework/routing"
)

// ── ConfigServiceProvider ─────────────────────────────────────────────────────

// ConfigServiceProvider loads the application configuration from .env and
// the environment.
//
// Bound abstracts:
//   - KeyFor[*config.Config]  → *config.Config
//   - "config"                → alias
type ConfigServiceProvider struct {
	EnvFiles []string
}

func (p *ConfigServiceProvider) Register(app *container.Container) error {
	envFiles := p.EnvFiles
	container.SingletonOf(app, func(*container.Container) *config.Config {
		return config.Load(envFiles...)
	})
	app.Alias(container.KeyFor[*config.Config](), "config")
	return nil
}

// ── LoggingServiceProvider ────────────────────────────────────────────────────

// LoggingServiceProvider builds the zap logger from the "log" section of
// the configuration.
//
// Bound abstracts:
//   - KeyFor[*zap.Logger]  → *zap.Logger
//   - "logger"             → alias
type LoggingServiceProvider struct{}

func (p *LoggingServiceProvider) Register(app *container.Container) error {
	container.SingletonOf(app, func(c *container.Container) *zap.Logger {
		cfg := container.Resolve[*config.Config](c, "config")
		return logging.Must(cfg.Log)
	})
	app.Alias(container.KeyFor[*zap.Logger](), "logger")
	return nil
}

// ── RoutingServiceProvider ────────────────────────────────────────────────────

// RoutingServiceProvider registers the HTTP router with request logging.
//
// Bound abstracts:
//   - KeyFor[*routing.Router]  → *routing.Router
//   - "router"                 → alias
type RoutingServiceProvider struct{}

func (p *RoutingServiceProvider) Register(app *container.Container) error {
	container.SingletonOf(app, func(c *container.Container) *routing.Router {
		return routing.New(container.Resolve[*zap.Logger](c, "logger"))
	})
	app.Alias(container.KeyFor[*routing.Router](), "router")
	return nil
}

// ── MetricsServiceProvider ────────────────────────────────────────────────────

// MetricsServiceProvider registers the activation metrics recorder and, when
// metrics are enabled, exposes it on the router at cfg.Metrics.Path.
//
// Bound abstracts:
//   - KeyFor[*metrics.Recorder]  → *metrics.Recorder
//   - "metrics"                  → alias
type MetricsServiceProvider struct{}

func (p *MetricsServiceProvider) Register(app *container.Container) error {
	container.SingletonOf(app, func(c *container.Container) *metrics.Recorder {
		cache, err := container.ResolveType[*activation.Cache](c)
		if err != nil {
			return metrics.NewRecorder(nil)
		}
		return metrics.NewRecorder(cache.Len)
	})
	app.Alias(container.KeyFor[*metrics.Recorder](), "metrics")
	return nil
}

func (p *MetricsServiceProvider) Boot(app *container.Container) error {
	cfg := container.Resolve[*config.Config](app, "config")
	if !cfg.Metrics.Enabled {
		return nil
	}
	rec := container.Resolve[*metrics.Recorder](app, "metrics")
	container.Resolve[*routing.Router](app, "router").Handle(cfg.Metrics.Path, rec.Handler())
	return nil
}

// ── ActivationServiceProvider ─────────────────────────────────────────────────

// ActivationServiceProvider wires controller activation: the factory cache,
// the dig graph for services that are not container entries, the
// application context and the mvc builder.
//
// Bound abstracts:
//   - KeyFor[*activation.Constructors]  → *activation.Constructors
//   - KeyFor[*activation.Cache]         → *activation.Cache
//   - KeyFor[*resolvers.Dig]            → *resolvers.Dig, aliased "dig"
//   - appcontext.Key                    → *appcontext.Context (on Boot)
//   - KeyFor[*mvc.Builder]              → *mvc.Builder, aliased "mvc" (on Boot)
//
// Configuration read from "config":
//   - Activation.ContextFile: optional YAML with the context arguments
//   - Activation.Activator:   "container" (default) or "default"
//   - App.Debug:              expose activation errors in responses
type ActivationServiceProvider struct {
	// Constructors is the constructor table the factory cache consults.
	// A new one is created when nil.
	Constructors *activation.Constructors
}

func (p *ActivationServiceProvider) Register(app *container.Container) error {
	ctors := p.Constructors
	if ctors == nil {
		ctors = activation.NewConstructors()
	}
	container.InstanceOf(app, ctors)
	container.SingletonOf(app, func(*container.Container) *activation.Cache {
		return activation.NewCache(activation.WithConstructors(ctors))
	})
	container.SingletonOf(app, func(*container.Container) *resolvers.Dig {
		return resolvers.NewDig()
	})
	app.Alias(container.KeyFor[*resolvers.Dig](), "dig")
	return nil
}

// Boot registers the application context, which builds the singletons
// registered so far when its Refresh argument is set, and then the builder.
func (p *ActivationServiceProvider) Boot(app *container.Container) error {
	cfg := container.Resolve[*config.Config](app, "config")

	args, err := config.LoadContextArgs(cfg.Activation.ContextFile)
	if err != nil {
		return err
	}
	appCtx, err := appcontext.Register(app, args)
	if err != nil {
		return err
	}

	cache, err := container.ResolveType[*activation.Cache](app)
	if err != nil {
		return err
	}
	graph, err := container.ResolveType[*resolvers.Dig](app)
	if err != nil {
		return err
	}

	opts := []mvc.Option{
		mvc.WithLogger(container.Resolve[*zap.Logger](app, "logger")),
		mvc.WithCache(cache),
		mvc.WithServices(resolvers.Chain{appCtx, graph}),
		mvc.WithDebug(cfg.App.Debug),
	}
	if cfg.Metrics.Enabled {
		opts = append(opts, mvc.WithMetrics(container.Resolve[*metrics.Recorder](app, "metrics")))
	}
	b := mvc.NewBuilder(app, container.Resolve[*routing.Router](app, "router"), opts...)

	switch cfg.Activation.Activator {
	case config.ActivatorContainer:
		if _, err := mvc.UseRegisteredContainerActivator(b); err != nil {
			return err
		}
	case config.ActivatorDefault:
	default:
		return fmt.Errorf("providers: unknown activator %q", cfg.Activation.Activator)
	}

	container.InstanceOf(app, b)
	app.Alias(container.KeyFor[*mvc.Builder](), "mvc")
	return nil
}

package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/km-arc/go-activation/framework/activation"
	"github.com/km-arc/go-activation/framework/activation/resolvers"
	"github.com/km-arc/go-activation/framework/appcontext"
	"github.com/km-arc/go-activation/framework/config"
	"github.com/km-arc/go-activation/framework/container"
	gohttp "github.com/km-arc/go-activation/framework/http"
	"github.com/km-arc/go-activation/framework/mvc"
	"github.com/km-arc/go-activation/framework/providers"
	"github.com/km-arc/go-activation/framework/routing"
)

// ShutdownTimeout bounds how long Run waits for in-flight requests once a
// shutdown signal arrives.
var ShutdownTimeout = 10 * time.Second

// Application is the top-level application container.
// It embeds the IoC Container and ProviderRegistry so user code can
// call app.Bind(), app.Singleton(), app.Register() directly.
type Application struct {
	*container.Container
	Providers *container.ProviderRegistry
}

// New creates the application and registers the framework providers.
// Nothing is built until Boot.
func New(envFiles ...string) *Application {
	c := container.New()
	registry := container.NewProviderRegistry(c)

	app := &Application{
		Container: c,
		Providers: registry,
	}

	// Registration never fails for the framework providers.
	for _, p := range []container.ServiceProvider{
		&providers.ConfigServiceProvider{EnvFiles: envFiles},
		&providers.LoggingServiceProvider{},
		&providers.RoutingServiceProvider{},
		&providers.MetricsServiceProvider{},
		&providers.ActivationServiceProvider{},
	} {
		if err := registry.Register(p); err != nil {
			panic(err)
		}
	}

	return app
}

// Register adds a ServiceProvider to the application.
func (a *Application) Register(provider container.ServiceProvider) error {
	return a.Providers.Register(provider)
}

// Boot runs the Boot() phase on all providers. Controllers registered in the
// container before Boot are visible to the container activator.
func (a *Application) Boot() error {
	return a.Providers.Boot()
}

// Config resolves *config.Config from the container.
func (a *Application) Config() *config.Config {
	return container.Resolve[*config.Config](a.Container, "config")
}

// Logger resolves the application logger.
func (a *Application) Logger() *zap.Logger {
	return container.Resolve[*zap.Logger](a.Container, "logger")
}

// Router resolves *routing.Router from the container.
func (a *Application) Router() *routing.Router {
	return container.Resolve[*routing.Router](a.Container, "router")
}

// Mvc returns the controller route builder. Only available after Boot.
func (a *Application) Mvc() *mvc.Builder {
	return container.Resolve[*mvc.Builder](a.Container, "mvc")
}

// Dig returns the dependency graph consulted for controller dependencies
// that are not container entries.
func (a *Application) Dig() *resolvers.Dig {
	return container.Resolve[*resolvers.Dig](a.Container, "dig")
}

// Constructors returns the constructor table used by the factory cache.
func (a *Application) Constructors() *activation.Constructors {
	ctors, err := container.ResolveType[*activation.Constructors](a.Container)
	if err != nil {
		panic(err)
	}
	return ctors
}

// Context returns the application context. Only available after Boot.
func (a *Application) Context() (*appcontext.Context, error) {
	return appcontext.FromContainer(a.Container)
}

// Run boots the application (if needed) and serves HTTP on APP_PORT until
// ctx is cancelled or SIGINT/SIGTERM arrives. In-flight requests get
// ShutdownTimeout to finish; the container is disposed afterwards.
func (a *Application) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", ":"+a.Config().App.Port)
	if err != nil {
		return fmt.Errorf("app: listen: %w", err)
	}
	return a.Serve(ctx, ln)
}

// Serve is Run over an existing listener. It closes ln.
func (a *Application) Serve(ctx context.Context, ln net.Listener) error {
	if !a.Providers.Booted() {
		if err := a.Boot(); err != nil {
			return err
		}
	}
	cfg := a.Config()
	log := a.Logger()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Handler:           a.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server started",
			zap.String("app", cfg.App.Name),
			zap.String("env", cfg.App.Env),
			zap.String("addr", ln.Addr().String()),
			zap.String("activator", cfg.Activation.Activator),
		)
		errCh <- srv.Serve(ln)
	}()

	var serveErr error
	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			serveErr = fmt.Errorf("app: serve: %w", err)
		}
	case <-ctx.Done():
		log.Info("shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			serveErr = fmt.Errorf("app: shutdown: %w", err)
		}
	}

	if err := a.Container.Dispose(); err != nil {
		log.Error("dispose failed", zap.Error(err))
		serveErr = errors.Join(serveErr, err)
	}
	_ = log.Sync()
	return serveErr
}

// Environment returns APP_ENV value.
func (a *Application) Environment() string { return a.Config().App.Env }
func (a *Application) IsLocal() bool       { return a.Environment() == "local" }
func (a *Application) IsProduction() bool  { return a.Environment() == "production" }
func (a *Application) IsTesting() bool     { return a.Environment() == "testing" }
func (a *Application) IsDebug() bool       { return a.Config().App.Debug }

// Controller is an embeddable base for HTTP controllers.
type Controller struct{}

func (c *Controller) Request(r *http.Request) *gohttp.Request {
	return gohttp.NewRequest(r)
}
func (c *Controller) Response(w http.ResponseWriter) *gohttp.Response {
	return gohttp.NewResponse(w)
}

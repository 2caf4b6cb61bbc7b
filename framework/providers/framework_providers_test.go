package providers_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/km-arc/go-activation/framework/activation"
	"github.com/km-arc/go-activation/framework/activation/resolvers"
	"github.com/km-arc/go-activation/framework/appcontext"
	"github.com/km-arc/go-activation/framework/config"
	"github.com/km-arc/go-activation/framework/container"
	"github.com/km-arc/go-activation/framework/metrics"
	"github.com/km-arc/go-activation/framework/mvc"
	"github.com/km-arc/go-activation/framework/providers"
	"github.com/km-arc/go-activation/framework/routing"
)

type greeter interface{ Greet() string }

type english struct{}

func (english) Greet() string { return "hello" }

type homeController struct {
	Greeter greeter `inject:""`
	suffix  string
}

func (h *homeController) Index(w http.ResponseWriter, _ *http.Request) {
	fmt.Fprint(w, h.Greeter.Greet()+h.suffix)
}

type labelController struct{ label string }

func (l *labelController) Index(w http.ResponseWriter, _ *http.Request) { fmt.Fprint(w, l.label) }

func quietEnv(t *testing.T) {
	t.Helper()
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("CONTEXT_FILE", "")
}

// register wires the framework providers into a fresh container. Boot is
// left to the caller so tests can register entries first.
func register(t *testing.T) (*container.Container, *container.ProviderRegistry) {
	t.Helper()
	c := container.New()
	reg := container.NewProviderRegistry(c)
	for _, p := range []container.ServiceProvider{
		&providers.ConfigServiceProvider{},
		&providers.LoggingServiceProvider{},
		&providers.RoutingServiceProvider{},
		&providers.MetricsServiceProvider{},
		&providers.ActivationServiceProvider{},
	} {
		require.NoError(t, reg.Register(p))
	}
	return c, reg
}

func get(t *testing.T, c *container.Container, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	container.Resolve[*routing.Router](c, "router").ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestProviders_BindCoreServices(t *testing.T) {
	quietEnv(t)
	c, reg := register(t)
	container.SingletonOf(c, func(*container.Container) greeter { return english{} })
	require.NoError(t, reg.Boot())

	assert.Equal(t, "GoActivation", container.Resolve[*config.Config](c, "config").App.Name)
	assert.NotNil(t, container.Resolve[*zap.Logger](c, "logger"))
	assert.NotNil(t, container.Resolve[*metrics.Recorder](c, "metrics"))
	assert.NotNil(t, container.Resolve[*resolvers.Dig](c, "dig"))

	b := container.Resolve[*mvc.Builder](c, "mvc")
	assert.Same(t, container.Resolve[*routing.Router](c, "router"), b.Router())

	appCtx, err := appcontext.FromContainer(c)
	require.NoError(t, err)
	assert.Equal(t, "application", appCtx.Name())
	assert.True(t, c.Resolved(container.KeyFor[greeter]()), "refresh builds registered singletons")
}

func TestProviders_ContainerActivatorUsesRegisteredController(t *testing.T) {
	quietEnv(t)
	c, reg := register(t)
	container.InstanceOf(c, &homeController{Greeter: english{}, suffix: " from container"})
	require.NoError(t, reg.Boot())

	mvc.Get(container.Resolve[*mvc.Builder](c, "mvc"), "/", (*homeController).Index)

	w := get(t, c, "/")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hello from container", w.Body.String())
}

func TestProviders_DefaultActivatorBuildsFromDig(t *testing.T) {
	quietEnv(t)
	t.Setenv("ACTIVATOR", config.ActivatorDefault)
	c, reg := register(t)
	container.InstanceOf(c, &homeController{Greeter: english{}, suffix: " from container"})
	require.NoError(t, reg.Boot())

	container.Resolve[*resolvers.Dig](c, "dig").MustProvide(func() greeter { return english{} })
	mvc.Get(container.Resolve[*mvc.Builder](c, "mvc"), "/", (*homeController).Index)

	w := get(t, c, "/")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hello", w.Body.String())
}

func TestProviders_ConstructorsReachTheCache(t *testing.T) {
	quietEnv(t)
	t.Setenv("ACTIVATOR", config.ActivatorDefault)
	c, reg := register(t)
	require.NoError(t, reg.Boot())

	ctors, err := container.ResolveType[*activation.Constructors](c)
	require.NoError(t, err)
	ctors.MustRegister(func() *labelController { return &labelController{label: "constructed"} })
	mvc.Get(container.Resolve[*mvc.Builder](c, "mvc"), "/label", (*labelController).Index)

	assert.Equal(t, "constructed", get(t, c, "/label").Body.String())
}

func TestProviders_MetricsEndpoint(t *testing.T) {
	quietEnv(t)
	c, reg := register(t)
	require.NoError(t, reg.Boot())

	w := get(t, c, "/metrics")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "activation_cached_factories")
}

func TestProviders_MetricsDisabled(t *testing.T) {
	quietEnv(t)
	t.Setenv("METRICS_ENABLED", "false")
	c, reg := register(t)
	require.NoError(t, reg.Boot())

	assert.Equal(t, http.StatusNotFound, get(t, c, "/metrics").Code)
}

func TestProviders_UnknownActivator(t *testing.T) {
	quietEnv(t)
	t.Setenv("ACTIVATOR", "magic")
	_, reg := register(t)

	err := reg.Boot()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown activator "magic"`)
}

func TestProviders_MissingContextFile(t *testing.T) {
	quietEnv(t)
	t.Setenv("CONTEXT_FILE", "does-not-exist.yaml")
	_, reg := register(t)

	assert.Error(t, reg.Boot())
}

func TestProviders_FailingSingletonFailsBoot(t *testing.T) {
	quietEnv(t)
	c, reg := register(t)
	c.Singleton("db", func(c *container.Container) any { return c.Make("dsn") })

	var err error
	require.NotPanics(t, func() { err = reg.Boot() })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refresh [db]")
}

func TestProviders_ContextResourcesFromEnv(t *testing.T) {
	quietEnv(t)
	t.Setenv("CONTEXT_RESOURCES", "controllers")
	c, reg := register(t)
	c.Singleton("home", func(*container.Container) any { return &homeController{Greeter: english{}} })
	c.Singleton("idle", func(*container.Container) any { return &labelController{} })
	c.Tag([]string{"home"}, "controllers")
	require.NoError(t, reg.Boot())

	assert.True(t, c.Resolved("home"))
	assert.False(t, c.Resolved("idle"))
}

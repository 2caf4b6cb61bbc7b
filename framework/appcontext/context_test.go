package appcontext_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-activation/framework/activation"
	"github.com/km-arc/go-activation/framework/appcontext"
	"github.com/km-arc/go-activation/framework/config"
	"github.com/km-arc/go-activation/framework/container"
)

type homeController struct{ disposed bool }

func (h *homeController) Dispose() error {
	h.disposed = true
	return nil
}

func args(caseSensitive, refresh bool) config.ApplicationContextArgs {
	a := config.DefaultContextArgs()
	a.CaseSensitive = caseSensitive
	a.Refresh = refresh
	return a
}

func TestNew_NilContainer(t *testing.T) {
	_, err := appcontext.New(nil, config.DefaultContextArgs())
	assert.ErrorIs(t, err, activation.ErrInvalidArgument)
}

func TestNew_RefreshBuildsSingletons(t *testing.T) {
	c := container.New()
	builds := 0
	c.Singleton("home", func(*container.Container) any {
		builds++
		return &homeController{}
	})
	c.Bind("transient", func(*container.Container) any {
		t.Fatal("transient bindings are not refreshed")
		return nil
	})

	_, err := appcontext.New(c, args(true, true))
	require.NoError(t, err)
	assert.Equal(t, 1, builds)
	assert.True(t, c.Resolved("home"))
}

func TestNew_NoRefreshStaysLazy(t *testing.T) {
	c := container.New()
	c.Singleton("home", func(*container.Container) any { return &homeController{} })

	_, err := appcontext.New(c, args(true, false))
	require.NoError(t, err)
	assert.False(t, c.Resolved("home"))
}

func TestRegisterAndFromContainer(t *testing.T) {
	c := container.New()

	_, err := appcontext.FromContainer(c)
	assert.ErrorIs(t, err, appcontext.ErrNotRegistered)

	ctx, err := appcontext.Register(c, config.DefaultContextArgs())
	require.NoError(t, err)

	got, err := appcontext.FromContainer(c)
	require.NoError(t, err)
	assert.Same(t, ctx, got)
	assert.Equal(t, "application", got.Name())
}

func TestFromContainer_RejectsTransient(t *testing.T) {
	c := container.New()
	c.Bind(appcontext.Key, func(c *container.Container) any {
		ctx, _ := appcontext.New(c, config.DefaultContextArgs())
		return ctx
	})

	_, err := appcontext.FromContainer(c)
	assert.ErrorIs(t, err, appcontext.ErrNotRegistered)
}

func TestFromContainer_WrongType(t *testing.T) {
	c := container.New()
	c.Instance(appcontext.Key, "not a context")

	_, err := appcontext.FromContainer(c)
	assert.ErrorIs(t, err, appcontext.ErrNotRegistered)
}

func TestResolveNamed_CaseFolding(t *testing.T) {
	c := container.New()
	c.Instance("HomeController", "home")

	sensitive, err := appcontext.New(c, args(true, false))
	require.NoError(t, err)
	_, err = sensitive.ResolveNamed("homecontroller")
	assert.ErrorIs(t, err, container.ErrNotBound)
	assert.False(t, sensitive.ContainsObject("homecontroller"))

	insensitive, err := appcontext.New(c, args(false, false))
	require.NoError(t, err)
	got, err := insensitive.ResolveNamed("homecontroller")
	require.NoError(t, err)
	assert.Equal(t, "home", got)
	assert.True(t, insensitive.ContainsObject("HOMECONTROLLER"))
}

func TestFindByTypeAndObjectsOfType(t *testing.T) {
	c := container.New()
	home := &homeController{}
	c.Instance("home", home)

	ctx, err := appcontext.New(c, config.DefaultContextArgs())
	require.NoError(t, err)

	found := ctx.FindByType(activation.TypeOf[*homeController]())
	require.Len(t, found, 1)
	assert.Same(t, home, found[0].Instance)

	assert.Equal(t, map[string]*homeController{"home": home}, appcontext.ObjectsOfType[*homeController](ctx))
}

func TestClose_DisposesSingletons(t *testing.T) {
	c := container.New()
	home := &homeController{}
	c.Instance("home", home)

	ctx, err := appcontext.Register(c, config.DefaultContextArgs())
	require.NoError(t, err)

	require.NoError(t, ctx.Close())
	assert.True(t, home.disposed)
}

func TestRefresh_FailingSingletonIsAnError(t *testing.T) {
	c := container.New()
	c.Singleton("db", func(c *container.Container) any { return c.Make("dsn") })

	var err error
	require.NotPanics(t, func() { _, err = appcontext.New(c, config.DefaultContextArgs()) })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "[db]")
	assert.Contains(t, err.Error(), "dsn")
}

func TestRefresh_ResourcesLimitScope(t *testing.T) {
	c := container.New()
	c.Singleton("home", func(*container.Container) any { return &homeController{} })
	c.Singleton("reports", func(*container.Container) any { return &homeController{} })
	c.Tag([]string{"home"}, "controllers")

	a := args(true, true)
	a.Resources = []string{"controllers"}
	ctx, err := appcontext.New(c, a)
	require.NoError(t, err)

	assert.True(t, c.Resolved("home"))
	assert.False(t, c.Resolved("reports"))
	assert.Equal(t, []string{"controllers"}, ctx.Resources())
}

func TestRefresh_ResourceMemberMustBeBound(t *testing.T) {
	c := container.New()
	c.Tag([]string{"ghost"}, "controllers")

	a := args(true, true)
	a.Resources = []string{"controllers"}
	_, err := appcontext.New(c, a)
	assert.ErrorIs(t, err, container.ErrNotBound)
}

func TestFindByType_SkipsContextAndContainer(t *testing.T) {
	c := container.New()
	ctx, err := appcontext.Register(c, args(true, true))
	require.NoError(t, err)

	assert.Empty(t, ctx.FindByType(activation.TypeOf[activation.Lookup]()))
}

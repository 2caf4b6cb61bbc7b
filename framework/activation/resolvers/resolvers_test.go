package resolvers_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-activation/framework/activation"
	"github.com/km-arc/go-activation/framework/activation/resolvers"
)

type clock interface{ Now() int }

type fixedClock struct{ at int }

func (c fixedClock) Now() int { return c.at }

type ticketController struct {
	Clock clock  `inject:""`
	Zone  string `inject:"zone"`
}

// namedOnly resolves names from a map and nothing by type.
type namedOnly map[string]any

func (n namedOnly) Resolve(t reflect.Type) (any, error) { return nil, errors.New("by type: no") }

func (n namedOnly) ResolveNamed(name string) (any, error) {
	if v, ok := n[name]; ok {
		return v, nil
	}
	return nil, errors.New("no " + name)
}

var clockType = activation.TypeOf[clock]()

// ── Dig ───────────────────────────────────────────────────────────────────────

func TestDig_ResolvesProvidedInterface(t *testing.T) {
	d := resolvers.NewDig()
	d.MustProvide(func() clock { return fixedClock{at: 42} })

	got, err := d.Resolve(clockType)
	require.NoError(t, err)
	assert.Equal(t, 42, got.(clock).Now())
}

func TestDig_RunsConstructorsOnce(t *testing.T) {
	d := resolvers.NewDig()
	calls := 0
	d.MustProvide(func() *fixedClock {
		calls++
		return &fixedClock{at: calls}
	})

	a, err := d.Resolve(activation.TypeOf[*fixedClock]())
	require.NoError(t, err)
	b, err := d.Resolve(activation.TypeOf[*fixedClock]())
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Equal(t, 1, calls)
}

func TestDig_ProvideValue(t *testing.T) {
	d := resolvers.NewDig()
	require.NoError(t, resolvers.ProvideValue[clock](d, fixedClock{at: 7}))

	got, err := d.Resolve(clockType)
	require.NoError(t, err)
	assert.Equal(t, fixedClock{at: 7}, got)
}

func TestDig_Missing(t *testing.T) {
	d := resolvers.NewDig()

	_, err := d.Resolve(clockType)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dig cannot resolve")

	_, err = d.Resolve(nil)
	assert.ErrorIs(t, err, activation.ErrInvalidArgument)
}

func TestDig_DrivesActivator(t *testing.T) {
	d := resolvers.NewDig()
	d.MustProvide(func() clock { return fixedClock{at: 1} })
	chain := resolvers.Chain{d, namedOnly{"zone": "UTC"}}

	a := activation.New(nil, nil)
	ctrl, err := activation.CreateAs[*ticketController](a, chain)
	require.NoError(t, err)
	assert.Equal(t, 1, ctrl.Clock.Now())
	assert.Equal(t, "UTC", ctrl.Zone)
}

// ── Values ────────────────────────────────────────────────────────────────────

func TestValues(t *testing.T) {
	v := resolvers.Set[clock](resolvers.Values{}, fixedClock{at: 3})

	got, err := v.Resolve(clockType)
	require.NoError(t, err)
	assert.Equal(t, 3, got.(clock).Now())

	_, err = v.Resolve(activation.TypeOf[fixedClock]())
	assert.ErrorIs(t, err, resolvers.ErrUnresolved)
}

// ── Chain ─────────────────────────────────────────────────────────────────────

func TestChain_FirstSuccessWins(t *testing.T) {
	front := resolvers.Set[clock](resolvers.Values{}, fixedClock{at: 1})
	back := resolvers.Set[clock](resolvers.Values{}, fixedClock{at: 2})

	got, err := resolvers.Chain{nil, front, back}.Resolve(clockType)
	require.NoError(t, err)
	assert.Equal(t, 1, got.(clock).Now())
}

func TestChain_AllFail(t *testing.T) {
	boom := errors.New("boom")
	failing := activation.ResolverFunc(func(reflect.Type) (any, error) { return nil, boom })

	_, err := resolvers.Chain{failing, resolvers.Values{}}.Resolve(clockType)
	assert.ErrorIs(t, err, resolvers.ErrUnresolved)
	assert.ErrorIs(t, err, boom)

	_, err = resolvers.Chain{}.Resolve(clockType)
	assert.ErrorIs(t, err, resolvers.ErrUnresolved)
}

func TestChain_ResolveNamedSkipsUnnamedMembers(t *testing.T) {
	chain := resolvers.Chain{resolvers.Values{}, namedOnly{"zone": "CET"}}

	got, err := chain.ResolveNamed("zone")
	require.NoError(t, err)
	assert.Equal(t, "CET", got)

	_, err = chain.ResolveNamed("missing")
	assert.ErrorIs(t, err, resolvers.ErrUnresolved)
}

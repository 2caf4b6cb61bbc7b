package activation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
)

const tagInject = "inject"

// Factory builds new instances of a single type. Factories are created by a
// Cache, shared by every request for that type and never rebuilt.
//
// The type is analysed on the first call to New, not when the factory is
// created, so caching a factory for a type that can never be built is
// harmless until somebody actually tries to build it.
type Factory struct {
	typ   reflect.Type
	ctors *Constructors
	fn    func(ServiceResolver) (any, error)

	once    sync.Once
	plan    *plan
	planErr error
}

// NewFactory returns a factory for t that uses a registered constructor when
// ctors has one, and `inject` struct-field injection otherwise.
func NewFactory(t reflect.Type, ctors *Constructors) *Factory {
	return &Factory{typ: t, ctors: ctors}
}

// NewFuncFactory returns a factory for t backed by fn.
func NewFuncFactory(t reflect.Type, fn func(ServiceResolver) (any, error)) *Factory {
	return &Factory{typ: t, fn: fn}
}

// Type returns the type this factory produces.
func (f *Factory) Type() reflect.Type { return f.typ }

// New builds an instance, resolving dependencies through resolver. Every
// failure is reported as a *ConstructionError.
func (f *Factory) New(resolver ServiceResolver) (any, error) {
	if resolver == nil {
		return nil, invalidArgument("resolver")
	}
	if f.fn != nil {
		instance, err := f.fn(resolver)
		if err != nil {
			return nil, f.fail(err)
		}
		return instance, nil
	}

	f.once.Do(func() {
		f.plan, f.planErr = analyse(f.typ, f.ctors)
	})
	if f.planErr != nil {
		return nil, f.fail(f.planErr)
	}

	instance, err := f.plan.build(resolver)
	if err != nil {
		return nil, f.fail(err)
	}
	return instance, nil
}

func (f *Factory) fail(err error) error {
	var ce *ConstructionError
	if errors.As(err, &ce) && ce.Type == f.typ {
		return err
	}
	return &ConstructionError{Type: f.typ, Err: err}
}

// ── Plans ─────────────────────────────────────────────────────────────────────

type plan struct {
	// constructor plan
	ctor       reflect.Value
	params     []reflect.Type
	returnsErr bool

	// struct plan
	elem   reflect.Type
	ptr    bool
	fields []fieldPlan
}

type fieldPlan struct {
	index    int
	name     string
	typ      reflect.Type
	named    string
	optional bool
}

func analyse(t reflect.Type, ctors *Constructors) (*plan, error) {
	if ctor, ok := ctors.lookup(t); ok {
		ct := ctor.Type()
		p := &plan{ctor: ctor, returnsErr: ct.NumOut() == 2}
		for i := 0; i < ct.NumIn(); i++ {
			p.params = append(p.params, ct.In(i))
		}
		return p, nil
	}

	p := &plan{}
	switch {
	case t.Kind() == reflect.Pointer && t.Elem().Kind() == reflect.Struct:
		p.elem, p.ptr = t.Elem(), true
	case t.Kind() == reflect.Struct:
		p.elem = t
	default:
		return nil, fmt.Errorf("%w for kind %s", ErrNoConstructor, t.Kind())
	}

	for i := 0; i < p.elem.NumField(); i++ {
		sf := p.elem.Field(i)
		tag, ok := sf.Tag.Lookup(tagInject)
		if !ok {
			continue
		}
		if !sf.IsExported() {
			return nil, fmt.Errorf("field %s is tagged %q but not exported", sf.Name, tagInject)
		}
		name, opts, _ := strings.Cut(tag, ",")
		p.fields = append(p.fields, fieldPlan{
			index:    i,
			name:     sf.Name,
			typ:      sf.Type,
			named:    name,
			optional: opts == "optional",
		})
	}
	return p, nil
}

func (p *plan) build(resolver ServiceResolver) (any, error) {
	if p.ctor.IsValid() {
		return p.callConstructor(resolver)
	}

	ptr := reflect.New(p.elem)
	v := ptr.Elem()
	for _, fp := range p.fields {
		dep, err := resolveField(resolver, fp)
		if err != nil {
			if fp.optional {
				continue
			}
			return nil, fmt.Errorf("field %s: %w", fp.name, err)
		}
		if dep.IsValid() {
			v.Field(fp.index).Set(dep)
		}
	}

	if p.ptr {
		return ptr.Interface(), nil
	}
	return v.Interface(), nil
}

func (p *plan) callConstructor(resolver ServiceResolver) (any, error) {
	args := make([]reflect.Value, len(p.params))
	for i, pt := range p.params {
		dep, err := resolveValue(resolver, pt, "")
		if err != nil {
			return nil, fmt.Errorf("constructor parameter %d (%s): %w", i, pt, err)
		}
		if !dep.IsValid() {
			dep = reflect.Zero(pt)
		}
		args[i] = dep
	}

	out := p.ctor.Call(args)
	if p.returnsErr && !out[1].IsNil() {
		return nil, out[1].Interface().(error)
	}
	return out[0].Interface(), nil
}

func resolveField(resolver ServiceResolver, fp fieldPlan) (reflect.Value, error) {
	return resolveValue(resolver, fp.typ, fp.named)
}

// resolveValue asks the resolver for a dependency and checks that the result
// fits into a slot of type t. A nil result yields an invalid Value, which the
// caller treats as "leave the zero value".
func resolveValue(resolver ServiceResolver, t reflect.Type, named string) (reflect.Value, error) {
	var (
		dep any
		err error
	)
	if named != "" {
		nr, ok := resolver.(NamedResolver)
		if !ok {
			return reflect.Value{}, fmt.Errorf("resolver %T cannot resolve by name %q", resolver, named)
		}
		dep, err = nr.ResolveNamed(named)
	} else {
		dep, err = resolver.Resolve(t)
	}
	if err != nil {
		return reflect.Value{}, err
	}
	if dep == nil {
		return reflect.Value{}, nil
	}

	v := reflect.ValueOf(dep)
	if !v.Type().AssignableTo(t) {
		return reflect.Value{}, fmt.Errorf("resolved %s is not assignable to %s", v.Type(), t)
	}
	return v, nil
}

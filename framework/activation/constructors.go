package activation

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// ErrBadConstructor is returned by Constructors.Register for values that are
// not a func returning T or (T, error).
var ErrBadConstructor = errors.New("activation: constructor must be a func returning T or (T, error)")

// Constructors maps a produced type to the constructor function that builds
// it. A factory consults the table before falling back to field injection,
// which is how a type with required setup logic opts out of zero-value
// allocation.
//
//	ctors := activation.NewConstructors()
//	ctors.MustRegister(func(store UserStore, log *zap.Logger) *UserController {
//	    return &UserController{store: store, log: log.Named("users")}
//	})
type Constructors struct {
	mu     sync.RWMutex
	byType map[reflect.Type]reflect.Value
}

// NewConstructors creates an empty constructor table.
func NewConstructors() *Constructors {
	return &Constructors{byType: make(map[reflect.Type]reflect.Value)}
}

// Register adds fn under its first return type. Registering a second
// constructor for the same type replaces the first; factories that already
// analysed the type keep the constructor they saw.
func (c *Constructors) Register(fn any) error {
	if fn == nil {
		return invalidArgument("constructor")
	}
	v := reflect.ValueOf(fn)
	t := v.Type()
	if t.Kind() != reflect.Func {
		return fmt.Errorf("%w: got %s", ErrBadConstructor, t)
	}
	switch {
	case t.NumOut() == 1:
	case t.NumOut() == 2 && t.Out(1) == errorType:
	default:
		return fmt.Errorf("%w: got %s", ErrBadConstructor, t)
	}
	if t.IsVariadic() {
		return fmt.Errorf("%w: variadic %s", ErrBadConstructor, t)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.byType[t.Out(0)] = v
	return nil
}

// MustRegister is Register that panics on error. Meant for bootstrap code.
func (c *Constructors) MustRegister(fns ...any) {
	for _, fn := range fns {
		if err := c.Register(fn); err != nil {
			panic(err)
		}
	}
}

func (c *Constructors) lookup(t reflect.Type) (reflect.Value, bool) {
	if c == nil {
		return reflect.Value{}, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.byType[t]
	return v, ok
}

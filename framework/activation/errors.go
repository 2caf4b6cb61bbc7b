package activation

import (
	"errors"
	"fmt"
	"reflect"
)

// ErrInvalidArgument is returned when a required input is nil.
// It always signals a programmer error and is never worth retrying.
var ErrInvalidArgument = errors.New("activation: invalid argument")

// ErrNoConstructor is the cause of a ConstructionError for types that
// cannot be built (interfaces, funcs, channels, basic kinds).
var ErrNoConstructor = errors.New("no usable constructor")

// invalidArgument wraps ErrInvalidArgument with the offending argument name.
func invalidArgument(name string) error {
	return fmt.Errorf("%w: %s is nil", ErrInvalidArgument, name)
}

// IsNil reports whether v is nil or holds a nil pointer, map, slice, func,
// channel or interface.
func IsNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// ConstructionError is returned when the fallback factory cannot build the
// requested type: no usable constructor, a dependency the resolver could
// not supply, or a constructor that itself failed.
type ConstructionError struct {
	Type reflect.Type
	Err  error
}

// Error implements the error interface.
func (e *ConstructionError) Error() string {
	return fmt.Sprintf("activation: cannot construct %s: %v", typeName(e.Type), e.Err)
}

// Unwrap exposes the underlying cause to errors.Is / errors.As.
func (e *ConstructionError) Unwrap() error { return e.Err }

// IsConstructionError reports whether err is (or wraps) a ConstructionError.
func IsConstructionError(err error) bool {
	var ce *ConstructionError
	return errors.As(err, &ce)
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}

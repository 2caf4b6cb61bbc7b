package mvc

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"

	"go.uber.org/zap"

	"github.com/km-arc/go-activation/framework/activation"
	gohttp "github.com/km-arc/go-activation/framework/http"
)

// Serve activates a controller of type t for the request, hands it to
// invoke and releases it afterwards, also when invoke panics. Activation
// failures are answered with a 500 JSON error and invoke is not called.
//
// Action and the framework adapters are built on Serve.
func (b *Builder) Serve(w http.ResponseWriter, r *http.Request, t reflect.Type, invoke func(controller any)) {
	services, ok := ServicesFrom(r.Context())
	if !ok {
		services = NewRequestServices(w, r, b.services)
	}
	cc := NewControllerContext(w, r, t, services)
	services.bind(w, r, cc)

	act := b.Activator()
	controller, source, err := activate(act, cc)
	if err == nil {
		err = checkType(controller, t)
	}
	b.metrics.Activation(cc.ControllerName(), source, err)
	if err != nil {
		b.log.Error("controller activation failed",
			zap.String("controller", cc.ControllerName()),
			zap.String("activation_id", cc.ID),
			zap.Error(err),
		)
		b.writeActivationError(w, cc, err)
		return
	}

	defer func() {
		if err := act.Release(cc, controller); err != nil {
			b.metrics.ReleaseError(cc.ControllerName())
			b.log.Warn("controller release failed",
				zap.String("controller", cc.ControllerName()),
				zap.String("activation_id", cc.ID),
				zap.Error(err),
			)
		}
	}()

	invoke(controller)
}

func activate(a ControllerActivator, cc *ControllerContext) (any, string, error) {
	if sa, ok := a.(SourceActivator); ok {
		controller, src, err := sa.Activate(cc)
		return controller, src.String(), err
	}
	controller, err := a.Create(cc)
	return controller, "unknown", err
}

func checkType(controller any, t reflect.Type) error {
	if activation.IsNil(controller) {
		return fmt.Errorf("mvc: activator returned nil for %s", t)
	}
	if !reflect.TypeOf(controller).AssignableTo(t) {
		return fmt.Errorf("mvc: activator returned %T for %s", controller, t)
	}
	return nil
}

func (b *Builder) writeActivationError(w http.ResponseWriter, cc *ControllerContext, err error) {
	msg := "Server Error."
	var ce *activation.ConstructionError
	if errors.As(err, &ce) {
		msg = "Controller could not be activated."
	}
	if b.debug {
		msg = err.Error()
	}
	gohttp.NewResponse(w).ErrorWithID(http.StatusInternalServerError, msg, cc.ID)
}

// ── Actions ───────────────────────────────────────────────────────────────────

// Action returns a handler that activates a T per request and calls fn
// with it.
//
//	b.Router().Get("/", mvc.Action(b, (*HomeController).Index))
func Action[T any](b *Builder, fn func(T, http.ResponseWriter, *http.Request)) http.HandlerFunc {
	t := activation.TypeOf[T]()
	return func(w http.ResponseWriter, r *http.Request) {
		b.Serve(w, r, t, func(controller any) {
			fn(controller.(T), w, r)
		})
	}
}

func Get[T any](b *Builder, pattern string, fn func(T, http.ResponseWriter, *http.Request)) {
	b.router.Get(pattern, Action(b, fn))
}

func Post[T any](b *Builder, pattern string, fn func(T, http.ResponseWriter, *http.Request)) {
	b.router.Post(pattern, Action(b, fn))
}

func Put[T any](b *Builder, pattern string, fn func(T, http.ResponseWriter, *http.Request)) {
	b.router.Put(pattern, Action(b, fn))
}

func Patch[T any](b *Builder, pattern string, fn func(T, http.ResponseWriter, *http.Request)) {
	b.router.Patch(pattern, Action(b, fn))
}

func Delete[T any](b *Builder, pattern string, fn func(T, http.ResponseWriter, *http.Request)) {
	b.router.Delete(pattern, Action(b, fn))
}

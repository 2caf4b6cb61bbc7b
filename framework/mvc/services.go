package mvc

import (
	"context"
	"fmt"
	"net/http"
	"reflect"

	"github.com/km-arc/go-activation/framework/activation"
	"github.com/km-arc/go-activation/framework/activation/resolvers"
)

var (
	typeRequest           = activation.TypeOf[*http.Request]()
	typeResponseWriter    = activation.TypeOf[http.ResponseWriter]()
	typeContext           = activation.TypeOf[context.Context]()
	typeControllerContext = activation.TypeOf[*ControllerContext]()
)

// RequestServices is the resolver controllers are built with on the
// fallback path. It serves, in order:
//
//   - the request itself: *http.Request, http.ResponseWriter,
//     context.Context and *ControllerContext
//   - values added for this request with Provide
//   - the application resolver
//
// A RequestServices belongs to one request and is not safe for concurrent
// use.
type RequestServices struct {
	w          http.ResponseWriter
	r          *http.Request
	controller *ControllerContext
	scoped     map[reflect.Type]any
	app        activation.ServiceResolver
}

// NewRequestServices returns request services backed by app, which may be nil.
func NewRequestServices(w http.ResponseWriter, r *http.Request, app activation.ServiceResolver) *RequestServices {
	return &RequestServices{w: w, r: r, app: app, scoped: make(map[reflect.Type]any)}
}

// Resolve implements activation.ServiceResolver.
func (s *RequestServices) Resolve(t reflect.Type) (any, error) {
	switch t {
	case nil:
		return nil, fmt.Errorf("%w: type is nil", activation.ErrInvalidArgument)
	case typeRequest:
		return s.r, nil
	case typeResponseWriter:
		return s.w, nil
	case typeContext:
		return s.r.Context(), nil
	case typeControllerContext:
		if s.controller != nil {
			return s.controller, nil
		}
	}
	if v, ok := s.scoped[t]; ok {
		return v, nil
	}
	if s.app == nil {
		return nil, fmt.Errorf("%w: %s", resolvers.ErrUnresolved, t)
	}
	return s.app.Resolve(t)
}

// ResolveNamed implements activation.NamedResolver when the application
// resolver does.
func (s *RequestServices) ResolveNamed(name string) (any, error) {
	if n, ok := s.app.(activation.NamedResolver); ok {
		return n.ResolveNamed(name)
	}
	return nil, fmt.Errorf("%w: no named services for %q", resolvers.ErrUnresolved, name)
}

// bind points the services at the writer and request actually being served,
// which middleware may have wrapped since the services were created.
func (s *RequestServices) bind(w http.ResponseWriter, r *http.Request, cc *ControllerContext) {
	s.w, s.r, s.controller = w, r, cc
}

// ── Request scope ─────────────────────────────────────────────────────────────

type servicesKey struct{}

// RequestServicesMiddleware attaches a RequestServices backed by app to
// every request, so that middleware further down can Provide values to the
// controllers of that request.
func RequestServicesMiddleware(app activation.ServiceResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			s := NewRequestServices(w, r, app)
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), servicesKey{}, s)))
		})
	}
}

// ServicesFrom returns the request services attached to ctx, if any.
func ServicesFrom(ctx context.Context) (*RequestServices, bool) {
	s, ok := ctx.Value(servicesKey{}).(*RequestServices)
	return s, ok
}

// Provide makes value available as T to the controllers activated for r. It
// reports false when r carries no request services.
//
//	func auth(next http.Handler) http.Handler {
//	    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
//	        mvc.Provide[*User](r, currentUser(r))
//	        next.ServeHTTP(w, r)
//	    })
//	}
func Provide[T any](r *http.Request, value T) bool {
	s, ok := ServicesFrom(r.Context())
	if !ok {
		return false
	}
	s.scoped[activation.TypeOf[T]()] = value
	return true
}

var _ activation.NamedResolver = (*RequestServices)(nil)

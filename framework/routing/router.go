package routing

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/km-arc/go-activation/framework/logging"
)

// Router wraps chi.Router with a few registration helpers.
type Router struct {
	mux chi.Router
}

// New creates a Router with request IDs, zap request logging, panic
// recovery and RealIP. A nil logger disables request logging.
func New(log *zap.Logger) *Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	if log != nil {
		r.Use(logging.RequestLogger(log))
	}
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	return &Router{mux: r}
}

// ── HTTP verbs ───────────────────────────────────────────────────────────────

func (r *Router) Get(pattern string, h http.HandlerFunc)    { r.mux.Get(pattern, h) }
func (r *Router) Post(pattern string, h http.HandlerFunc)   { r.mux.Post(pattern, h) }
func (r *Router) Put(pattern string, h http.HandlerFunc)    { r.mux.Put(pattern, h) }
func (r *Router) Patch(pattern string, h http.HandlerFunc)  { r.mux.Patch(pattern, h) }
func (r *Router) Delete(pattern string, h http.HandlerFunc) { r.mux.Delete(pattern, h) }

// Method registers h for an arbitrary HTTP method.
func (r *Router) Method(method, pattern string, h http.HandlerFunc) {
	r.mux.Method(method, pattern, h)
}

// Handle attaches a plain http.Handler, e.g. the metrics endpoint.
func (r *Router) Handle(pattern string, h http.Handler) {
	r.mux.Handle(pattern, h)
}

// ── Groups & Prefixes ────────────────────────────────────────────────────────

// Group creates an inline group sharing the parent's prefix.
func (r *Router) Group(fn func(r *Router)) {
	r.mux.Group(func(mx chi.Router) {
		fn(&Router{mux: mx})
	})
}

// Prefix creates a sub-router with a URL prefix.
func (r *Router) Prefix(pattern string, fn func(r *Router)) {
	r.mux.Route(pattern, func(mx chi.Router) {
		fn(&Router{mux: mx})
	})
}

// ── Middleware ───────────────────────────────────────────────────────────────

// Middleware adds one or more middleware to the router.
func (r *Router) Middleware(mw ...func(http.Handler) http.Handler) {
	r.mux.Use(mw...)
}

// ── Resource routes ──────────────────────────────────────────────────────────

// ResourceHandlers holds the handlers of a RESTful resource. Nil handlers
// are not routed.
//
//	GET    /photos           → Index
//	POST   /photos           → Store
//	GET    /photos/{id}      → Show
//	PUT    /photos/{id}      → Update (PATCH too)
//	DELETE /photos/{id}      → Destroy
type ResourceHandlers struct {
	Index, Store, Show, Update, Destroy http.HandlerFunc
}

// Resource registers the standard RESTful routes under pattern.
func (r *Router) Resource(pattern string, h ResourceHandlers) {
	if h.Index != nil {
		r.mux.Get(pattern, h.Index)
	}
	if h.Store != nil {
		r.mux.Post(pattern, h.Store)
	}
	if h.Show != nil {
		r.mux.Get(pattern+"/{id}", h.Show)
	}
	if h.Update != nil {
		r.mux.Put(pattern+"/{id}", h.Update)
		r.mux.Patch(pattern+"/{id}", h.Update)
	}
	if h.Destroy != nil {
		r.mux.Delete(pattern+"/{id}", h.Destroy)
	}
}

// ── Params ───────────────────────────────────────────────────────────────────

// Param extracts a URL route parameter.
func Param(r *http.Request, key string) string {
	return chi.URLParam(r, key)
}

// ── Serve ────────────────────────────────────────────────────────────────────

// ServeHTTP implements http.Handler so Router can be passed to http.Server.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Handler returns the underlying http.Handler (for testing etc.).
func (r *Router) Handler() http.Handler {
	return r.mux
}

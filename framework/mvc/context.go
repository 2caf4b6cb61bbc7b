package mvc

import (
	"net/http"
	"reflect"

	"github.com/google/uuid"

	"github.com/km-arc/go-activation/framework/activation"
)

// ControllerContext describes one controller activation: the request being
// served, the controller type to activate and the services available to
// build it.
type ControllerContext struct {
	// ID identifies this activation in logs and error responses.
	ID string

	Request *http.Request
	Writer  http.ResponseWriter

	// ControllerType is the type the route is bound to.
	ControllerType reflect.Type

	// Services resolves dependencies of controllers built on the fallback
	// path. It is usually the request's *RequestServices.
	Services activation.ServiceResolver
}

// NewControllerContext returns a context with a fresh ID.
func NewControllerContext(w http.ResponseWriter, r *http.Request, t reflect.Type, services activation.ServiceResolver) *ControllerContext {
	return &ControllerContext{
		ID:             uuid.NewString(),
		Request:        r,
		Writer:         w,
		ControllerType: t,
		Services:       services,
	}
}

// ControllerName is the printable controller type, "" when unset.
func (c *ControllerContext) ControllerName() string {
	if c == nil || c.ControllerType == nil {
		return ""
	}
	return c.ControllerType.String()
}

// Package ginmvc runs the mvc activation pipeline behind gin routes.
//
//	r := gin.New()
//	r.GET("/tickets/:id", ginmvc.Action(b, (*TicketController).ShowGin))
package ginmvc

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/km-arc/go-activation/framework/activation"
	"github.com/km-arc/go-activation/framework/mvc"
)

// Action returns a gin handler that activates a T per request through b's
// activator and calls fn with it. The controller is released when fn
// returns.
func Action[T any](b *mvc.Builder, fn func(T, *gin.Context)) gin.HandlerFunc {
	t := activation.TypeOf[T]()
	return func(c *gin.Context) {
		b.Serve(c.Writer, c.Request, t, func(controller any) {
			fn(controller.(T), c)
		})
	}
}

// Provide is mvc.Provide for a gin request.
func Provide[T any](c *gin.Context, value T) bool {
	return mvc.Provide(c.Request, value)
}

// RequestServices is mvc.RequestServicesMiddleware as gin middleware.
func RequestServices(app activation.ServiceResolver) gin.HandlerFunc {
	mw := mvc.RequestServicesMiddleware(app)
	return func(c *gin.Context) {
		mw(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			c.Request = r
			c.Next()
		})).ServeHTTP(c.Writer, c.Request)
	}
}

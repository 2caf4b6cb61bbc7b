// Package mvc activates a controller per request and routes requests to it.
//
// A route is bound to a controller type rather than to a controller value:
//
//	b := mvc.NewBuilder(app.Container, app.Router())
//	mvc.Get(b, "/tickets/{id}", (*TicketController).Show)
//	mvc.Resource[*TicketController](b, "/tickets")
//
// For every request the builder's ControllerActivator produces the
// controller, the action runs, and the controller is released again.
//
// # Activators
//
// A new Builder uses the default activator, which builds every controller
// through the factory cache, injecting `inject`-tagged fields from the
// request services.
//
// UseContainerActivator switches to activation from a lookup: a controller
// registered as a singleton (for example with container.InstanceOf) is used
// as is, anything else is built as before.
//
//	if _, err := mvc.UseContainerActivator(b, appCtx); err != nil { ... }
//
// UseRegisteredContainerActivator does the same with the application
// context registered in the container under appcontext.Key.
//
// The first registered instance wins. With the container as lookup that is
// the one registered first.
//
// # Request services
//
// Controllers built on the fallback path can depend on the request itself
// (*http.Request, http.ResponseWriter, context.Context, *ControllerContext),
// on values middleware added with Provide, and on application services.
//
// # Release
//
// After the action returns, or panics, the controller is released: a
// controller implementing activation.Disposer or io.Closer is disposed.
// Release failures are logged and counted but do not change the response.
package mvc

package mvc

import (
	"net/http"

	"github.com/km-arc/go-activation/framework/activation"
	"github.com/km-arc/go-activation/framework/routing"
)

// Resource actions. A controller implements the ones it supports.
type (
	Indexer interface {
		Index(w http.ResponseWriter, r *http.Request)
	}
	Storer interface {
		Store(w http.ResponseWriter, r *http.Request)
	}
	Shower interface {
		Show(w http.ResponseWriter, r *http.Request)
	}
	Updater interface {
		Update(w http.ResponseWriter, r *http.Request)
	}
	Destroyer interface {
		Destroy(w http.ResponseWriter, r *http.Request)
	}
)

// Resource mounts the RESTful routes of T under pattern, one per resource
// action T implements. Each request activates its own T.
//
//	mvc.Resource[*TicketController](b, "/tickets")
func Resource[T any](b *Builder, pattern string) {
	t := activation.TypeOf[T]()
	var h routing.ResourceHandlers

	if t.Implements(activation.TypeOf[Indexer]()) {
		h.Index = Action(b, func(c T, w http.ResponseWriter, r *http.Request) { any(c).(Indexer).Index(w, r) })
	}
	if t.Implements(activation.TypeOf[Storer]()) {
		h.Store = Action(b, func(c T, w http.ResponseWriter, r *http.Request) { any(c).(Storer).Store(w, r) })
	}
	if t.Implements(activation.TypeOf[Shower]()) {
		h.Show = Action(b, func(c T, w http.ResponseWriter, r *http.Request) { any(c).(Shower).Show(w, r) })
	}
	if t.Implements(activation.TypeOf[Updater]()) {
		h.Update = Action(b, func(c T, w http.ResponseWriter, r *http.Request) { any(c).(Updater).Update(w, r) })
	}
	if t.Implements(activation.TypeOf[Destroyer]()) {
		h.Destroy = Action(b, func(c T, w http.ResponseWriter, r *http.Request) { any(c).(Destroyer).Destroy(w, r) })
	}

	b.router.Resource(pattern, h)
}

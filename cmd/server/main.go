package main

import (
	"context"
	"net/http"
	"os"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/km-arc/go-activation/framework/app"
	"github.com/km-arc/go-activation/framework/container"
	"github.com/km-arc/go-activation/framework/http/validation"
	"github.com/km-arc/go-activation/framework/mvc"
	"github.com/km-arc/go-activation/framework/mvc/ginmvc"
)

func main() {
	application := app.New() // loads .env automatically

	// Registered before Boot: the container activator serves this instance
	// to every request instead of building a new StatusController.
	container.InstanceOf(application.Container, &StatusController{version: "0.1.0"})

	if err := application.Boot(); err != nil {
		panic(err)
	}
	log := application.Logger()

	// Not a container entry: TicketController gets its store from dig.
	application.Dig().MustProvide(newMemoryTickets)

	b := application.Mvc()
	r := application.Router()

	mvc.Get(b, "/", (*StatusController).Index)

	mvc.Resource[*TicketController](b, "/api/v1/tickets")
	mvc.Get(b, "/api/v1/reports/{id}", (*ReportController).Show)

	// gin routes share the activation pipeline.
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.GET("/gin/status", ginmvc.Action(b, (*StatusController).Gin))
	r.Handle("/gin/*", engine)

	if err := application.Run(context.Background()); err != nil {
		log.Error("server stopped", zap.Error(err))
		os.Exit(1)
	}
}

// ── Controllers ───────────────────────────────────────────────────────────────

// StatusController is registered once and shared by every request.
type StatusController struct {
	app.Controller
	version string
}

func (s *StatusController) Index(w http.ResponseWriter, _ *http.Request) {
	s.Response(w).Success(map[string]string{"version": s.version})
}

func (s *StatusController) Gin(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"version": s.version, "via": "gin"})
}

// TicketController is built per request; its fields are injected.
type TicketController struct {
	app.Controller
	Tickets TicketStore `inject:""`
	Log     *zap.Logger `inject:""`
}

func (t *TicketController) Index(w http.ResponseWriter, _ *http.Request) {
	t.Response(w).Success(t.Tickets.All())
}

func (t *TicketController) Store(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Title string `json:"title"`
	}
	errs, err := t.Request(r).Validate(&body, validation.Rules{"title": "required|string|max:200"})
	if err != nil {
		t.Response(w).BadRequest("invalid request body")
		return
	}
	if errs != nil {
		t.Response(w).ValidationError(errs)
		return
	}
	ticket := t.Tickets.Add(body.Title)
	t.Log.Info("ticket created", zap.Int("id", ticket.ID))
	t.Response(w).Created(ticket)
}

func (t *TicketController) Show(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(t.Request(r).RouteParam("id"))
	if err != nil {
		t.Response(w).BadRequest("id must be a number")
		return
	}
	ticket, ok := t.Tickets.Find(id)
	if !ok {
		t.Response(w).NotFound()
		return
	}
	t.Response(w).Success(ticket)
}

// ReportController holds a per-request scratch buffer and gives it back
// when released.
type ReportController struct {
	app.Controller
	Req  *http.Request `inject:""`
	rows []string
}

func (rc *ReportController) Show(w http.ResponseWriter, r *http.Request) {
	rc.rows = append(rc.rows, "report "+rc.Request(r).RouteParam("id"))
	rc.Response(w).Success(map[string]any{"rows": rc.rows, "request_id": rc.Request(rc.Req).RequestID()})
}

func (rc *ReportController) Dispose() error {
	rc.rows = nil
	return nil
}

// ── Services ──────────────────────────────────────────────────────────────────

type Ticket struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

type TicketStore interface {
	All() []Ticket
	Add(title string) Ticket
	Find(id int) (Ticket, bool)
}

type memoryTickets struct {
	mu      sync.RWMutex
	tickets []Ticket
}

func newMemoryTickets() TicketStore { return &memoryTickets{} }

func (m *memoryTickets) All() []Ticket {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Ticket(nil), m.tickets...)
}

func (m *memoryTickets) Add(title string) Ticket {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := Ticket{ID: len(m.tickets) + 1, Title: title}
	m.tickets = append(m.tickets, t)
	return t
}

func (m *memoryTickets) Find(id int) (Ticket, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if id < 1 || id > len(m.tickets) {
		return Ticket{}, false
	}
	return m.tickets[id-1], true
}

package www

import (
	"context"
	"html/template"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"

	"agvdash/engine"
	"agvdash/fleet"
	"agvdash/restapi"
	"agvdash/store"
)

// Catalog is the template CRUD the dashboard passes straight through to the
// backend. None of it is mirrored in the live state.
type Catalog interface {
	GetOrderTemplate(ctx context.Context, id int64) (*fleet.OrderTemplate, error)

	ListActionTemplates(ctx context.Context, opts restapi.ListOptions) (*restapi.ListResponse[fleet.ActionTemplate], error)
	GetActionTemplate(ctx context.Context, id int64) (*fleet.ActionTemplate, error)
	SaveActionTemplate(ctx context.Context, a *fleet.ActionTemplate) (*fleet.ActionTemplate, error)
	DeleteActionTemplate(ctx context.Context, id int64) error

	ListNodeTemplates(ctx context.Context, opts restapi.ListOptions) (*restapi.ListResponse[fleet.NodeTemplate], error)
	GetNodeTemplate(ctx context.Context, id int64) (*fleet.NodeTemplate, error)
	SaveNodeTemplate(ctx context.Context, n *fleet.NodeTemplate) (*fleet.NodeTemplate, error)
	DeleteNodeTemplate(ctx context.Context, id int64) error

	ListEdgeTemplates(ctx context.Context, opts restapi.ListOptions) (*restapi.ListResponse[fleet.EdgeTemplate], error)
	GetEdgeTemplate(ctx context.Context, id int64) (*fleet.EdgeTemplate, error)
	SaveEdgeTemplate(ctx context.Context, e *fleet.EdgeTemplate) (*fleet.EdgeTemplate, error)
	DeleteEdgeTemplate(ctx context.Context, id int64) error
}

var _ Catalog = (*restapi.Client)(nil)

type Handlers struct {
	engine   *engine.Engine
	db       *store.DB
	catalog  Catalog
	sessions *sessions.CookieStore
	tmpls    map[string]*template.Template
	eventHub *EventHub
}

func NewRouter(eng *engine.Engine, db *store.DB, catalog Catalog) (http.Handler, func()) {
	hub := NewEventHub()
	hub.Start()
	detach := hub.SetupEngineListeners(eng)

	sessionStore := newSessionStore(eng.AppConfig().Web.SessionSecret)

	// Each page is cloned from the layout set so every page can define "content".
	base := template.New("").Funcs(templateFuncs())
	base = template.Must(base.ParseFS(templateFS, "templates/layout.html", "templates/partials/*.html"))

	pages := []string{
		"templates/dashboard.html",
		"templates/robots.html",
		"templates/login.html",
	}
	tmpls := make(map[string]*template.Template, len(pages))
	for _, p := range pages {
		clone := template.Must(base.Clone())
		clone = template.Must(clone.ParseFS(templateFS, p))
		tmpls[p[len("templates/"):]] = clone
	}

	h := &Handlers{
		engine:   eng,
		db:       db,
		catalog:  catalog,
		sessions: sessionStore,
		tmpls:    tmpls,
		eventHub: hub,
	}

	h.ensureDefaultAdmin()

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	r.Get("/events", hub.SSEHandler)

	// Public routes
	r.Get("/", h.handleDashboard)
	r.Get("/robots", h.handleRobots)
	r.Get("/login", h.handleLoginPage)
	r.Post("/login", h.handleLogin)
	r.Get("/logout", h.handleLogout)

	// Read API, served from the live state
	r.Route("/api", func(r chi.Router) {
		r.Get("/dashboard", h.apiDashboard)
		r.Get("/robots", h.apiListRobots)
		r.Get("/robots/{serial}", h.apiGetRobot)
		r.Get("/orders", h.apiListOrders)
		r.Get("/templates", h.apiListTemplates)
		r.Get("/alerts", h.apiListAlerts)
		r.Get("/connection", h.apiConnection)
		r.Get("/health", h.apiHealthCheck)
	})

	// Protected routes
	r.Group(func(r chi.Router) {
		r.Use(h.requireAuth)

		r.Post("/api/robots/{serial}/select", h.apiSelectRobot)
		r.Post("/api/robots/{serial}/remove", h.apiRemoveRobot)
		r.Post("/api/robots/{serial}/subscribe", h.apiSubscribeRobot)
		r.Post("/api/robots/{serial}/unsubscribe", h.apiUnsubscribeRobot)
		r.Post("/api/robots/{serial}/request-state", h.apiRequestRobotState)
		r.Post("/api/robots/{serial}/refresh", h.apiRefreshRobot)
		r.Post("/api/robots/{serial}/command", h.apiRobotCommand)

		r.Post("/api/orders/execute", h.apiExecuteOrder)
		r.Post("/api/orders/refresh", h.apiRefreshOrders)
		r.Post("/api/orders/{id}/cancel", h.apiCancelOrder)
		r.Post("/api/orders/{id}/status", h.apiUpdateOrderStatus)

		r.Post("/api/templates", h.apiSaveTemplate)
		r.Post("/api/templates/refresh", h.apiRefreshTemplates)
		r.Post("/api/templates/delete", h.apiDeleteTemplates)
		r.Get("/api/templates/{id}", h.apiGetTemplate)
		r.Put("/api/templates/{id}", h.apiSaveTemplate)
		r.Delete("/api/templates/{id}", h.apiDeleteTemplate)

		r.Route("/api/catalog", h.catalogRoutes)

		r.Post("/api/alerts/clear", h.apiClearAlerts)
		r.Post("/api/alerts/{id}/ack", h.apiAcknowledgeAlert)
		r.Post("/api/alerts/{id}/dismiss", h.apiDismissAlert)

		r.Post("/api/connection/reconnect", h.apiReconnect)
		r.Post("/api/account/password", h.apiChangePassword)
	})

	stopFn := func() {
		detach()
		hub.Stop()
	}

	return r, stopFn
}

func (h *Handlers) render(w http.ResponseWriter, name string, data any) {
	tmpl, ok := h.tmpls[name]
	if !ok {
		log.Printf("render: template %q not found", name)
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}
	if err := tmpl.ExecuteTemplate(w, "layout", data); err != nil {
		log.Printf("render %s: %v", name, err)
		http.Error(w, "template error", http.StatusInternalServerError)
	}
}

func (h *Handlers) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	data := map[string]any{
		"Page":          "login",
		"Authenticated": h.isAuthenticated(r),
	}
	h.render(w, "login.html", data)
}

func (h *Handlers) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	username := r.FormValue("username")
	password := r.FormValue("password")

	user, err := h.db.GetAdminUser(username)
	if err != nil || !checkPassword(user.PasswordHash, password) {
		w.WriteHeader(http.StatusUnauthorized)
		data := map[string]any{
			"Page":  "login",
			"Error": "Invalid username or password",
		}
		h.render(w, "login.html", data)
		return
	}

	session, _ := h.sessions.Get(r, sessionName)
	session.Values["authenticated"] = true
	session.Values["username"] = username
	if err := session.Save(r, w); err != nil {
		log.Printf("auth: session save error: %v", err)
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handlers) handleLogout(w http.ResponseWriter, r *http.Request) {
	h.endSession(w, r)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

package www

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"agvdash/fleet"
)

func (h *Handlers) apiListRobots(w http.ResponseWriter, r *http.Request) {
	s := h.engine.Snapshot()
	h.jsonOK(w, map[string]any{
		"robots":   robotViews(s),
		"selected": s.Robots.SelectedRobot,
		"loading":  s.Robots.Loading,
		"error":    s.Robots.Error,
	})
}

func (h *Handlers) apiGetRobot(w http.ResponseWriter, r *http.Request) {
	serial := chi.URLParam(r, "serial")
	s := h.engine.Snapshot()
	if !s.Robots.IsConnected(serial) {
		h.jsonError(w, "robot not connected", http.StatusNotFound)
		return
	}
	h.jsonOK(w, newRobotView(s, serial))
}

// apiListOrders returns executions newest first, optionally filtered by
// ?status=.
func (h *Handlers) apiListOrders(w http.ResponseWriter, r *http.Request) {
	s := h.engine.Snapshot()
	orders := s.Orders.Executions
	if status := r.URL.Query().Get("status"); status != "" {
		filtered := make([]fleet.OrderExecution, 0, len(orders))
		for _, o := range orders {
			if o.Status == status {
				filtered = append(filtered, o)
			}
		}
		orders = filtered
	}
	if orders == nil {
		orders = []fleet.OrderExecution{}
	}
	h.jsonOK(w, map[string]any{
		"orders":  orders,
		"loading": s.Orders.Loading,
		"error":   s.Orders.Error,
	})
}

func (h *Handlers) apiListTemplates(w http.ResponseWriter, r *http.Request) {
	s := h.engine.Snapshot()
	templates := s.Templates.OrderTemplates
	if templates == nil {
		templates = []fleet.OrderTemplate{}
	}
	h.jsonOK(w, map[string]any{
		"templates": templates,
		"loading":   s.Templates.Loading,
		"error":     s.Templates.Error,
	})
}

func (h *Handlers) apiListAlerts(w http.ResponseWriter, r *http.Request) {
	alerts := h.engine.Alerts()
	if alerts == nil {
		alerts = []fleet.Alert{}
	}
	h.jsonOK(w, alerts)
}

func (h *Handlers) apiConnection(w http.ResponseWriter, r *http.Request) {
	h.jsonOK(w, h.engine.ChannelStatus())
}

func (h *Handlers) apiHealthCheck(w http.ResponseWriter, r *http.Request) {
	st := h.engine.ChannelStatus()
	h.jsonOK(w, map[string]any{
		"status":    "ok",
		"channel":   st.Connected,
		"transport": st.Transport,
		"sse":       h.eventHub.ClientCount(),
	})
}

func (h *Handlers) apiReconnect(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.Reconnect(r.Context()); err != nil {
		h.jsonError(w, err.Error(), http.StatusBadGateway)
		return
	}
	h.jsonOK(w, h.engine.ChannelStatus())
}

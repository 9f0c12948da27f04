package www

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Acknowledging or dismissing a synthetic alert changes nothing; it is
// rebuilt from robot health on the next read.

func (h *Handlers) apiAcknowledgeAlert(w http.ResponseWriter, r *http.Request) {
	h.engine.AcknowledgeAlert(chi.URLParam(r, "id"))
	h.jsonOK(w, map[string]string{"status": "ok"})
}

func (h *Handlers) apiDismissAlert(w http.ResponseWriter, r *http.Request) {
	h.engine.DismissAlert(chi.URLParam(r, "id"))
	h.jsonOK(w, map[string]string{"status": "ok"})
}

func (h *Handlers) apiClearAlerts(w http.ResponseWriter, r *http.Request) {
	h.engine.ClearAlerts()
	h.jsonOK(w, map[string]string{"status": "ok"})
}

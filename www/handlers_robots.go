package www

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"agvdash/fleet"
)

func (h *Handlers) apiSelectRobot(w http.ResponseWriter, r *http.Request) {
	h.engine.SelectRobot(chi.URLParam(r, "serial"))
	h.jsonOK(w, map[string]string{"status": "ok"})
}

func (h *Handlers) apiRemoveRobot(w http.ResponseWriter, r *http.Request) {
	h.engine.RemoveRobot(chi.URLParam(r, "serial"))
	h.jsonOK(w, map[string]string{"status": "ok"})
}

// Channel sends are fire and forget; "sent" only means the dashboard
// was connected when it tried.

func (h *Handlers) apiSubscribeRobot(w http.ResponseWriter, r *http.Request) {
	h.engine.SubscribeRobot(chi.URLParam(r, "serial"))
	h.channelSent(w)
}

func (h *Handlers) apiUnsubscribeRobot(w http.ResponseWriter, r *http.Request) {
	h.engine.UnsubscribeRobot(chi.URLParam(r, "serial"))
	h.channelSent(w)
}

func (h *Handlers) apiRequestRobotState(w http.ResponseWriter, r *http.Request) {
	h.engine.RequestRobotState(chi.URLParam(r, "serial"))
	h.channelSent(w)
}

func (h *Handlers) channelSent(w http.ResponseWriter) {
	h.jsonOK(w, map[string]bool{"sent": h.engine.Channel().IsConnected()})
}

func (h *Handlers) apiRefreshRobot(w http.ResponseWriter, r *http.Request) {
	serial := chi.URLParam(r, "serial")
	if err := h.engine.RefreshRobot(r.Context(), serial); err != nil {
		h.actionError(w, r, err)
		return
	}
	h.jsonOK(w, newRobotView(h.engine.Snapshot(), serial))
}

func (h *Handlers) apiRobotCommand(w http.ResponseWriter, r *http.Request) {
	var cmd fleet.RobotCommand
	if !h.decodeJSON(w, r, &cmd) {
		return
	}
	if err := h.engine.SendRobotCommand(r.Context(), chi.URLParam(r, "serial"), &cmd); err != nil {
		h.actionError(w, r, err)
		return
	}
	h.jsonOK(w, map[string]string{"status": "ok"})
}

package www

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"agvdash/fleet"
)

func (h *Handlers) apiExecuteOrder(w http.ResponseWriter, r *http.Request) {
	var req fleet.ExecuteOrderRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	o, err := h.engine.ExecuteOrder(r.Context(), &req)
	if err != nil {
		h.actionError(w, r, err)
		return
	}
	h.jsonOK(w, o)
}

func (h *Handlers) apiCancelOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.engine.CancelOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.actionError(w, r, err)
		return
	}
	h.jsonOK(w, o)
}

func (h *Handlers) apiUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status       string `json:"status"`
		ErrorMessage string `json:"errorMessage"`
	}
	if !h.decodeJSON(w, r, &req) {
		return
	}
	if req.Status == "" {
		h.jsonError(w, "status is required", http.StatusBadRequest)
		return
	}
	id := chi.URLParam(r, "id")
	if err := h.engine.UpdateOrderStatus(r.Context(), id, req.Status, req.ErrorMessage); err != nil {
		h.actionError(w, r, err)
		return
	}
	o, ok := h.engine.Snapshot().Orders.Order(id)
	if !ok {
		h.jsonOK(w, map[string]string{"status": "ok"})
		return
	}
	h.jsonOK(w, o)
}

func (h *Handlers) apiRefreshOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.engine.RefreshOrders(r.Context(), listOptions(r))
	if err != nil {
		h.actionError(w, r, err)
		return
	}
	if orders == nil {
		orders = []fleet.OrderExecution{}
	}
	h.jsonOK(w, orders)
}

package www

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"agvdash/fleet"
	"agvdash/restapi"
)

// --- Order templates (mirrored in the live state) ---

func (h *Handlers) apiGetTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	t, err := h.catalog.GetOrderTemplate(r.Context(), id)
	if err != nil {
		h.actionError(w, r, err)
		return
	}
	h.jsonOK(w, t)
}

// apiSaveTemplate creates on POST and updates on PUT /api/templates/{id}.
func (h *Handlers) apiSaveTemplate(w http.ResponseWriter, r *http.Request) {
	var t fleet.OrderTemplate
	if !h.decodeJSON(w, r, &t) {
		return
	}
	if raw := chi.URLParam(r, "id"); raw != "" {
		id, err := parseID(raw)
		if err != nil {
			h.jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
		t.ID = id
	}
	saved, err := h.engine.SaveTemplate(r.Context(), &t)
	if err != nil {
		h.actionError(w, r, err)
		return
	}
	h.jsonOK(w, saved)
}

func (h *Handlers) apiDeleteTemplate(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.engine.DeleteTemplates(r.Context(), []int64{id}); err != nil {
		h.actionError(w, r, err)
		return
	}
	h.jsonOK(w, map[string]string{"status": "ok"})
}

// apiDeleteTemplates removes many templates at once. Partial failures
// still apply the deletes that succeeded.
func (h *Handlers) apiDeleteTemplates(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IDs []int64 `json:"ids"`
	}
	if !h.decodeJSON(w, r, &req) {
		return
	}
	if len(req.IDs) == 0 {
		h.jsonError(w, "ids is required", http.StatusBadRequest)
		return
	}
	if err := h.engine.DeleteTemplates(r.Context(), req.IDs); err != nil {
		h.actionError(w, r, err)
		return
	}
	h.jsonOK(w, map[string]any{"status": "ok", "deleted": len(req.IDs)})
}

func (h *Handlers) apiRefreshTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.engine.RefreshTemplates(r.Context())
	if err != nil {
		h.actionError(w, r, err)
		return
	}
	if templates == nil {
		templates = []fleet.OrderTemplate{}
	}
	h.jsonOK(w, templates)
}

// --- Catalog pass-through: action, node and edge templates ---

func (h *Handlers) catalogRoutes(r chi.Router) {
	r.Get("/actions", catalogList(h, h.catalog.ListActionTemplates))
	r.Post("/actions", catalogSave(h, h.catalog.SaveActionTemplate, func(a *fleet.ActionTemplate, id int64) { a.ID = id }))
	r.Get("/actions/{id}", catalogGet(h, h.catalog.GetActionTemplate))
	r.Put("/actions/{id}", catalogSave(h, h.catalog.SaveActionTemplate, func(a *fleet.ActionTemplate, id int64) { a.ID = id }))
	r.Delete("/actions/{id}", catalogDelete(h, h.catalog.DeleteActionTemplate))

	r.Get("/nodes", catalogList(h, h.catalog.ListNodeTemplates))
	r.Post("/nodes", catalogSave(h, h.catalog.SaveNodeTemplate, func(n *fleet.NodeTemplate, id int64) { n.ID = id }))
	r.Get("/nodes/{id}", catalogGet(h, h.catalog.GetNodeTemplate))
	r.Put("/nodes/{id}", catalogSave(h, h.catalog.SaveNodeTemplate, func(n *fleet.NodeTemplate, id int64) { n.ID = id }))
	r.Delete("/nodes/{id}", catalogDelete(h, h.catalog.DeleteNodeTemplate))

	r.Get("/edges", catalogList(h, h.catalog.ListEdgeTemplates))
	r.Post("/edges", catalogSave(h, h.catalog.SaveEdgeTemplate, func(e *fleet.EdgeTemplate, id int64) { e.ID = id }))
	r.Get("/edges/{id}", catalogGet(h, h.catalog.GetEdgeTemplate))
	r.Put("/edges/{id}", catalogSave(h, h.catalog.SaveEdgeTemplate, func(e *fleet.EdgeTemplate, id int64) { e.ID = id }))
	r.Delete("/edges/{id}", catalogDelete(h, h.catalog.DeleteEdgeTemplate))
}

func catalogList[T any](h *Handlers, list func(context.Context, restapi.ListOptions) (*restapi.ListResponse[T], error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := list(r.Context(), listOptions(r))
		if err != nil {
			h.actionError(w, r, err)
			return
		}
		if out.Items == nil {
			out.Items = []T{}
		}
		h.jsonOK(w, out)
	}
}

func catalogGet[T any](h *Handlers, get func(context.Context, int64) (*T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(chi.URLParam(r, "id"))
		if err != nil {
			h.jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
		v, err := get(r.Context(), id)
		if err != nil {
			h.actionError(w, r, err)
			return
		}
		h.jsonOK(w, v)
	}
}

// catalogSave creates when the route has no {id}, otherwise updates that id.
func catalogSave[T any](h *Handlers, save func(context.Context, *T) (*T, error), setID func(*T, int64)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var v T
		if !h.decodeJSON(w, r, &v) {
			return
		}
		if raw := chi.URLParam(r, "id"); raw != "" {
			id, err := parseID(raw)
			if err != nil {
				h.jsonError(w, err.Error(), http.StatusBadRequest)
				return
			}
			setID(&v, id)
		}
		saved, err := save(r.Context(), &v)
		if err != nil {
			h.actionError(w, r, err)
			return
		}
		h.jsonOK(w, saved)
	}
}

func catalogDelete(h *Handlers, del func(context.Context, int64) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(chi.URLParam(r, "id"))
		if err != nil {
			h.jsonError(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := del(r.Context(), id); err != nil {
			h.actionError(w, r, err)
			return
		}
		h.jsonOK(w, map[string]string{"status": "ok"})
	}
}

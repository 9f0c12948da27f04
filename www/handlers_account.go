package www

import (
	"log"
	"net/http"
)

const minPasswordLen = 4

func (h *Handlers) apiChangePassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Current string `json:"current"`
		New     string `json:"new"`
	}
	if !h.decodeJSON(w, r, &req) {
		return
	}
	if len(req.New) < minPasswordLen {
		h.jsonError(w, "new password is too short", http.StatusBadRequest)
		return
	}

	username := h.getUsername(r)
	user, err := h.db.GetAdminUser(username)
	if err != nil || !checkPassword(user.PasswordHash, req.Current) {
		h.jsonError(w, "current password is incorrect", http.StatusForbidden)
		return
	}
	hash, err := hashPassword(req.New)
	if err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if err := h.db.UpdateAdminPassword(username, hash); err != nil {
		h.jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	log.Printf("auth: password changed for %s", username)
	h.jsonOK(w, map[string]string{"status": "ok"})
}

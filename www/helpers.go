package www

import (
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"agvdash/fleet"
	"agvdash/restapi"
)

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"timeAgo": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			d := time.Since(t)
			switch {
			case d < time.Minute:
				return "just now"
			case d < time.Hour:
				m := int(d.Minutes())
				if m == 1 {
					return "1 minute ago"
				}
				return fmt.Sprintf("%d minutes ago", m)
			case d < 24*time.Hour:
				h := int(d.Hours())
				if h == 1 {
					return "1 hour ago"
				}
				return fmt.Sprintf("%d hours ago", h)
			default:
				days := int(d.Hours() / 24)
				if days == 1 {
					return "1 day ago"
				}
				return fmt.Sprintf("%d days ago", days)
			}
		},
		"formatTime": func(t time.Time) string {
			if t.IsZero() {
				return "-"
			}
			return t.Format("2006-01-02 15:04:05")
		},
		"statusColor": func(status string) string {
			switch status {
			case fleet.OrderCreated, fleet.OrderSent:
				return "bg-yellow-100 text-yellow-800"
			case fleet.OrderAcknowledged:
				return "bg-blue-100 text-blue-800"
			case fleet.OrderExecuting:
				return "bg-indigo-100 text-indigo-800"
			case fleet.OrderCompleted:
				return "bg-green-100 text-green-800"
			case fleet.OrderFailed:
				return "bg-red-100 text-red-800"
			default:
				return "bg-gray-100 text-gray-800"
			}
		},
		"alertColor": func(level string) string {
			switch level {
			case fleet.AlertError:
				return "alert-error"
			case fleet.AlertWarning:
				return "alert-warning"
			case fleet.AlertSuccess:
				return "alert-success"
			default:
				return "alert-info"
			}
		},
		"robotState": func(v robotView) string {
			switch {
			case v.Health == nil:
				return "unknown"
			case !v.Health.IsOnline:
				return "offline"
			case v.Health.Faulted():
				return "error"
			case v.Health.IsCharging:
				return "charging"
			case v.Health.IsDriving:
				return "driving"
			case v.Health.IsPaused:
				return "paused"
			default:
				return "idle"
			}
		},
		"upper": strings.ToUpper,
		"lower": strings.ToLower,
		"pct": func(f float64) string {
			return fmt.Sprintf("%.0f", f)
		},
		"f1": func(f float64) string {
			return fmt.Sprintf("%.1f", f)
		},
	}
}

func (h *Handlers) jsonOK(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func (h *Handlers) jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func (h *Handlers) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.jsonError(w, "invalid request", http.StatusBadRequest)
		return false
	}
	return true
}

// actionError answers a failed user action. Validation failures never
// reached the backend and answer 400. A backend 401 also ends the
// operator's session.
func (h *Handlers) actionError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *fleet.ValidationError
	if errors.As(err, &ve) {
		h.jsonError(w, ve.Error(), http.StatusBadRequest)
		return
	}
	if errors.Is(err, restapi.ErrUnauthorized) {
		log.Printf("auth: backend rejected credentials, ending session for %q", h.getUsername(r))
		h.endSession(w, r)
		h.jsonError(w, restapi.MsgSessionExpired, http.StatusUnauthorized)
		return
	}

	code := http.StatusBadGateway
	var apiErr *restapi.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Kind == restapi.KindTimeout:
			code = http.StatusGatewayTimeout
		case apiErr.StatusCode == http.StatusNotFound, apiErr.StatusCode == http.StatusForbidden,
			apiErr.StatusCode == http.StatusUnprocessableEntity, apiErr.StatusCode == http.StatusTooManyRequests:
			code = apiErr.StatusCode
		}
	}
	h.jsonError(w, restapi.Message(err), code)
}

func listOptions(r *http.Request) restapi.ListOptions {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	return restapi.ListOptions{Limit: limit, Offset: offset}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

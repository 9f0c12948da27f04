package www

import (
	"log"
	"net/http"
	"strings"

	"github.com/gorilla/sessions"
	"golang.org/x/crypto/bcrypt"
)

const sessionName = "agvdash-session"

const defaultAdmin = "admin"

func newSessionStore(secret string) *sessions.CookieStore {
	if secret == "" {
		secret = "agvdash-default-secret-change-me"
	}
	s := sessions.NewCookieStore([]byte(secret))
	s.Options.HttpOnly = true
	s.Options.Secure = false
	s.Options.SameSite = http.SameSiteLaxMode
	return s
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(hash), err
}

func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

func (h *Handlers) isAuthenticated(r *http.Request) bool {
	session, err := h.sessions.Get(r, sessionName)
	if err != nil {
		return false
	}
	auth, ok := session.Values["authenticated"].(bool)
	return ok && auth
}

// requireAuth redirects browsers to the login page; API callers get a 401.
func (h *Handlers) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.isAuthenticated(r) {
			if strings.HasPrefix(r.URL.Path, "/api/") {
				h.jsonError(w, "authentication required", http.StatusUnauthorized)
				return
			}
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handlers) getUsername(r *http.Request) string {
	session, err := h.sessions.Get(r, sessionName)
	if err != nil {
		return ""
	}
	username, _ := session.Values["username"].(string)
	return username
}

// endSession clears the operator's session cookie.
func (h *Handlers) endSession(w http.ResponseWriter, r *http.Request) {
	session, _ := h.sessions.Get(r, sessionName)
	session.Values["authenticated"] = false
	session.Values["username"] = ""
	if err := session.Save(r, w); err != nil {
		log.Printf("auth: session save error: %v", err)
	}
}

func (h *Handlers) ensureDefaultAdmin() {
	exists, err := h.db.AdminUserExists()
	if err != nil || exists {
		return
	}
	hash, err := hashPassword(defaultAdmin)
	if err != nil {
		return
	}
	if err := h.db.CreateAdminUser(defaultAdmin, hash); err != nil {
		log.Printf("auth: create default admin: %v", err)
		return
	}
	log.Printf("auth: created default %s account", defaultAdmin)
}

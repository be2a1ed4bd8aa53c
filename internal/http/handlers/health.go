package handlers

import (
	"net/http"
	"strconv"

	"crowdfund/internal/middleware"
	"crowdfund/internal/providers/infinitepay"
)

func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]string{"status": "ok"})
}

type meResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name,omitempty"`
	Handle string `json:"handle,omitempty"`
	Role   string `json:"role,omitempty"`
	Locale string `json:"locale"`
	Source string `json:"source"`
}

// Me reports the caller identity: the forwarded user id when present,
// otherwise the payment runtime's user or the development user.
func (a *App) Me(w http.ResponseWriter, r *http.Request) {
	locale := middleware.LocaleFromContext(r.Context())
	if id := middleware.UserIDFromContext(r.Context()); id != "" {
		a.json(w, http.StatusOK, meResponse{ID: id, Locale: locale, Source: "header"})
		return
	}
	user := infinitepay.CurrentUser(r.Context(), a.Runtime, a.RuntimeWait, a.Logger)
	source := "runtime"
	if user == infinitepay.DevUser {
		source = "dev"
	}
	a.json(w, http.StatusOK, meResponse{
		ID:     formatUserID(user.ID),
		Name:   user.Name,
		Handle: user.Handle,
		Role:   user.Role,
		Locale: locale,
		Source: source,
	})
}

func formatUserID(id int64) string {
	return strconv.FormatInt(id, 10)
}

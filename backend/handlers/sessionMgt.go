package handlers

import (
	"net/http"
	"time"

	"socialhub/backend/auth"
)

func setSessionCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// identity is set by the auth middleware on every /api route that needs a
// session.
func identity(r *http.Request) auth.Identity {
	id, _ := auth.FromContext(r.Context())
	return id
}

// Unauthorized is the auth middleware's deny hook.
func Unauthorized(w http.ResponseWriter, _ *http.Request, err error) {
	sendErrorResponse(w, "Unauthorized", http.StatusUnauthorized)
}

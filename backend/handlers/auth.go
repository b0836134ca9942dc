package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"socialhub/backend/auth"
	"socialhub/backend/models"
)

type loginResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      models.User `json:"user"`
}

// POST /api/register
func (a *API) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var data models.RegistrationData
	if !decodeBody(w, r, &data) {
		return
	}
	out, err := a.proc.Register(r.Context(), data)
	commit(a, w, r, http.StatusCreated, out, err)
}

// POST /api/login  { "username": name or email, "password": ... }
func (a *API) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var creds models.Credentials
	if !decodeBody(w, r, &creds) {
		return
	}
	user, err := a.proc.Login(r.Context(), creds)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	token, expires, err := a.issuer.Issue(auth.Identity{UserID: user.ID, Username: user.Username})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	setSessionCookie(w, token, expires)
	a.log.Info().Int64("user_id", user.ID).Msg("user logged in")
	writeJSON(w, http.StatusOK, loginResponse{Token: token, ExpiresAt: expires, User: user})
}

// GET /api/session
func (a *API) SessionHandler(w http.ResponseWriter, r *http.Request) {
	id := identity(r)
	writeJSON(w, http.StatusOK, map[string]any{"user_id": id.UserID, "username": id.Username})
}

// POST /api/logout drops the cookie. Tokens are stateless and expire on
// their own.
func (a *API) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	clearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]bool{"logged_out": true})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if r.ContentLength == 0 {
		sendErrorResponse(w, "Empty request body", http.StatusBadRequest)
		return false
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(v); err != nil {
		sendErrorResponse(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

package handlers

import "net/http"

type inviteRequest struct {
	Contact string `json:"contact"`
}

// POST /api/invites
func (a *API) CreateInviteHandler(w http.ResponseWriter, r *http.Request) {
	var req inviteRequest
	if !decodeBody(w, r, &req) {
		return
	}
	out, err := a.proc.CreateInvite(r.Context(), identity(r).UserID, req.Contact)
	commit(a, w, r, http.StatusCreated, out, err)
}

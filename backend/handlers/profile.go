package handlers

import (
	"net/http"

	"socialhub/backend/actions"
)

type pokeResponse struct {
	Applied bool                `json:"applied"`
	Reason  string              `json:"reason,omitempty"`
	Poke    *actions.PokeResult `json:"poke,omitempty"`
}

// GET /api/users/{userID}
func (a *API) ProfileHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}
	profile, err := a.asm.Profile(r.Context(), identity(r).UserID, userID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// GET /api/users/{userID}/wall?limit=
func (a *API) WallHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}
	limit, ok := queryLimit(w, r)
	if !ok {
		return
	}
	posts, err := a.asm.Wall(r.Context(), identity(r).UserID, userID, limit)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

// POST /api/users/{userID}/poke
// A poke inside the cooldown is not an error: it answers 200 with
// applied=false and the reason.
func (a *API) PokeHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}
	out, err := a.proc.SendPoke(r.Context(), identity(r).UserID, userID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.publish(r, out.Deliveries)
	resp := pokeResponse{Applied: out.Applied, Reason: out.Reason}
	if out.Applied {
		resp.Poke = &out.Payload
	}
	writeJSON(w, http.StatusOK, resp)
}

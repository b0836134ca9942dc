package handlers

import (
	"net/http"

	"socialhub/backend/actions"
)

// GET /api/pokes?limit=
func (a *API) PokesHandler(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryLimit(w, r)
	if !ok {
		return
	}
	pokes, err := a.asm.Pokes(r.Context(), identity(r).UserID, limit)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pokes)
}

// POST /api/pokes/read
func (a *API) MarkPokesReadHandler(w http.ResponseWriter, r *http.Request) {
	out, err := a.proc.MarkPokesRead(r.Context(), identity(r).UserID)
	commit(a, w, r, http.StatusOK, markedOutcome(out), err)
}

type marked struct {
	Marked int64 `json:"marked"`
}

func markedOutcome(out actions.Outcome[int64]) actions.Outcome[marked] {
	return actions.Outcome[marked]{
		Applied:    out.Applied,
		Reason:     out.Reason,
		Payload:    marked{Marked: out.Payload},
		Deliveries: out.Deliveries,
	}
}

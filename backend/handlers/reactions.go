package handlers

import "net/http"

// POST /api/posts/{postID}/like
func (a *API) ToggleLikeHandler(w http.ResponseWriter, r *http.Request) {
	postID, ok := pathID(w, r, "postID")
	if !ok {
		return
	}
	out, err := a.proc.ToggleLike(r.Context(), postID, identity(r).UserID)
	commit(a, w, r, http.StatusOK, out, err)
}

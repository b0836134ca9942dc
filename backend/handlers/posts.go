package handlers

import (
	"net/http"

	"socialhub/backend/actions"
)

// GET /api/feed?limit=
func (a *API) FeedHandler(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryLimit(w, r)
	if !ok {
		return
	}
	posts, err := a.asm.Feed(r.Context(), identity(r).UserID, limit)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

// POST /api/posts
func (a *API) CreatePostHandler(w http.ResponseWriter, r *http.Request) {
	var in actions.NewPost
	if !decodeBody(w, r, &in) {
		return
	}
	in.AuthorID = identity(r).UserID
	out, err := a.proc.CreatePost(r.Context(), in)
	commit(a, w, r, http.StatusCreated, out, err)
}

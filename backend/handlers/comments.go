package handlers

import "net/http"

type commentRequest struct {
	Content string `json:"content"`
}

// GET /api/posts/{postID}/comments
func (a *API) CommentsHandler(w http.ResponseWriter, r *http.Request) {
	postID, ok := pathID(w, r, "postID")
	if !ok {
		return
	}
	comments, err := a.asm.Comments(r.Context(), postID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

// POST /api/posts/{postID}/comments
func (a *API) AddCommentHandler(w http.ResponseWriter, r *http.Request) {
	postID, ok := pathID(w, r, "postID")
	if !ok {
		return
	}
	var req commentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	out, err := a.proc.AddComment(r.Context(), postID, identity(r).UserID, req.Content)
	commit(a, w, r, http.StatusCreated, out, err)
}

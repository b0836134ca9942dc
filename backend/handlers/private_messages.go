package handlers

import "net/http"

type messageRequest struct {
	Content string `json:"content"`
}

// GET /api/conversations/{userID}/messages?limit=
func (a *API) ConversationHandler(w http.ResponseWriter, r *http.Request) {
	otherID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}
	limit, ok := queryLimit(w, r)
	if !ok {
		return
	}
	msgs, err := a.asm.Conversation(r.Context(), identity(r).UserID, otherID, limit)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}

// POST /api/conversations/{userID}/messages
func (a *API) SendMessageHandler(w http.ResponseWriter, r *http.Request) {
	receiverID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}
	var req messageRequest
	if !decodeBody(w, r, &req) {
		return
	}
	out, err := a.proc.SendMessage(r.Context(), identity(r).UserID, receiverID, req.Content)
	commit(a, w, r, http.StatusCreated, out, err)
}

// POST /api/conversations/{userID}/read
func (a *API) MarkConversationReadHandler(w http.ResponseWriter, r *http.Request) {
	otherID, ok := pathID(w, r, "userID")
	if !ok {
		return
	}
	out, err := a.proc.MarkConversationRead(r.Context(), identity(r).UserID, otherID)
	commit(a, w, r, http.StatusOK, markedOutcome(out), err)
}

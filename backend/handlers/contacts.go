package handlers

import "net/http"

// GET /api/contacts lists every other user with unread message counts,
// most recent conversation first.
func (a *API) ContactsHandler(w http.ResponseWriter, r *http.Request) {
	contacts, err := a.asm.Contacts(r.Context(), identity(r).UserID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, contacts)
}

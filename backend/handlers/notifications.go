package handlers

import "net/http"

// GET /api/notifications?limit=
func (a *API) NotificationsHandler(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryLimit(w, r)
	if !ok {
		return
	}
	list, err := a.asm.Notifications(r.Context(), identity(r).UserID, limit)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// GET /api/unread
func (a *API) UnreadCountsHandler(w http.ResponseWriter, r *http.Request) {
	counts, err := a.asm.UnreadCounts(r.Context(), identity(r).UserID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, counts)
}

// POST /api/notifications/{notificationID}/read
func (a *API) MarkNotificationReadHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "notificationID")
	if !ok {
		return
	}
	out, err := a.proc.MarkNotificationRead(r.Context(), identity(r).UserID, id)
	commit(a, w, r, http.StatusOK, out, err)
}

// POST /api/notifications/read-all
func (a *API) MarkAllNotificationsReadHandler(w http.ResponseWriter, r *http.Request) {
	out, err := a.proc.MarkAllNotificationsRead(r.Context(), identity(r).UserID)
	commit(a, w, r, http.StatusOK, markedOutcome(out), err)
}

// GET /api/notifications/count
func (a *API) UnreadCountHandler(w http.ResponseWriter, r *http.Request) {
	n, err := a.asm.UnreadCount(r.Context(), identity(r).UserID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"count": n})
}

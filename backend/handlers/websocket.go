package handlers

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"

	"socialhub/backend/auth"
	"socialhub/backend/models"
	"socialhub/backend/ws"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     checkOrigin,
}

// checkOrigin requires the same origin when the session comes from the
// cookie, which browsers attach on their own. Bearer and query tokens are
// accepted from any origin.
func checkOrigin(r *http.Request) bool {
	if strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
		return true
	}
	if c, err := r.Cookie(auth.CookieName); err != nil || c.Value == "" {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, r.Host)
}

// GET /ws
// The session is checked before upgrading; anonymous sockets are refused.
func (a *API) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	id, err := a.issuer.Authenticate(r)
	if err != nil {
		Unauthorized(w, r, err)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		a.log.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := ws.NewClient(a.hub, conn, id.UserID, id.Username, a.sendBuffer)
	a.hub.Register(client)

	ctx := r.Context()
	if counts, err := a.asm.UnreadCounts(ctx, id.UserID); err == nil {
		client.Reply(models.EventUnreadCount, counts)
	}

	go client.WritePump()
	client.ReadPump(ctx, a)
}

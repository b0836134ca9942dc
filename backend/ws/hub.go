package ws

import (
	"context"

	"github.com/rs/zerolog"

	"socialhub/backend/metrics"
	"socialhub/backend/models"
)

type membership struct {
	client *Client
	room   models.Room
}

type directFrame struct {
	client *Client
	frame  []byte
}

type membersQuery struct {
	room  models.Room
	reply chan int
}

// Hub tracks which live clients are in which rooms. All state is owned by
// the Run goroutine; the exported methods only send it requests, so they
// are safe from any goroutine.
type Hub struct {
	rooms   map[models.Room]map[*Client]struct{}
	clients map[*Client]map[models.Room]struct{}

	register   chan *Client
	unregister chan *Client
	join       chan membership
	leave      chan membership
	publish    chan models.Delivery
	direct     chan directFrame
	members    chan membersQuery
	done       chan struct{}

	log zerolog.Logger
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		rooms:      make(map[models.Room]map[*Client]struct{}),
		clients:    make(map[*Client]map[models.Room]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		join:       make(chan membership),
		leave:      make(chan membership),
		publish:    make(chan models.Delivery, 256),
		direct:     make(chan directFrame, 64),
		members:    make(chan membersQuery),
		done:       make(chan struct{}),
		log:        log.With().Str("component", "hub").Logger(),
	}
}

// Run serves hub requests until ctx is cancelled, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				h.drop(c)
			}
			return

		case c := <-h.register:
			h.clients[c] = make(map[models.Room]struct{})
			metrics.ConnectedClients.Inc()
			h.add(c, models.UserRoom(c.UserID))
			h.log.Debug().Str("client", c.ID).Int64("user_id", c.UserID).Msg("client registered")

		case c := <-h.unregister:
			h.drop(c)

		case m := <-h.join:
			if _, ok := h.clients[m.client]; ok {
				h.add(m.client, m.room)
			}

		case m := <-h.leave:
			h.remove(m.client, m.room)

		case d := <-h.publish:
			h.deliver(d)

		case f := <-h.direct:
			if _, ok := h.clients[f.client]; ok {
				select {
				case f.client.send <- f.frame:
				default:
				}
			}

		case q := <-h.members:
			q.reply <- len(h.rooms[q.room])
		}
	}
}

func (h *Hub) add(c *Client, room models.Room) {
	set, ok := h.rooms[room]
	if !ok {
		set = make(map[*Client]struct{})
		h.rooms[room] = set
	}
	set[c] = struct{}{}
	h.clients[c][room] = struct{}{}
}

func (h *Hub) remove(c *Client, room models.Room) {
	if set, ok := h.rooms[room]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.rooms, room)
		}
	}
	if rooms, ok := h.clients[c]; ok {
		delete(rooms, room)
	}
}

// drop forgets c entirely and closes its send channel, which ends its
// write pump.
func (h *Hub) drop(c *Client) {
	rooms, ok := h.clients[c]
	if !ok {
		return
	}
	for room := range rooms {
		h.remove(c, room)
	}
	delete(h.clients, c)
	close(c.send)
	metrics.ConnectedClients.Dec()
	h.log.Debug().Str("client", c.ID).Int64("user_id", c.UserID).Msg("client unregistered")
}

func (h *Hub) deliver(d models.Delivery) {
	set := h.rooms[d.Room]
	if len(set) == 0 {
		return
	}
	frame, err := encodeFrame(d.Event, d.Payload)
	if err != nil {
		h.log.Error().Err(err).Str("event", d.Event).Msg("encode delivery")
		return
	}
	metrics.DeliveriesTotal.WithLabelValues(d.Event).Inc()
	for c := range set {
		if c.ID == d.ExceptClient {
			continue
		}
		select {
		case c.send <- frame:
		default:
			// a slow client only loses its own session
			metrics.DroppedClients.Inc()
			h.log.Warn().Str("client", c.ID).Msg("send buffer full, dropping client")
			h.drop(c)
		}
	}
}

func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
		close(c.send)
	}
}

func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

func (h *Hub) Join(c *Client, room models.Room) {
	select {
	case h.join <- membership{client: c, room: room}:
	case <-h.done:
	}
}

func (h *Hub) Leave(c *Client, room models.Room) {
	select {
	case h.leave <- membership{client: c, room: room}:
	case <-h.done:
	}
}

// Publish queues deliveries for the Run loop. Rooms nobody joined are
// skipped silently.
func (h *Hub) Publish(ctx context.Context, deliveries ...models.Delivery) {
	for _, d := range deliveries {
		select {
		case h.publish <- d:
		case <-h.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Members reports how many clients are in room.
func (h *Hub) Members(room models.Room) int {
	q := membersQuery{room: room, reply: make(chan int, 1)}
	select {
	case h.members <- q:
		return <-q.reply
	case <-h.done:
		return 0
	}
}

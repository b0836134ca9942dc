package ws

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socialhub/backend/models"
)

func startHub(t *testing.T) (*Hub, context.CancelFunc) {
	t.Helper()
	h := NewHub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)
	t.Cleanup(cancel)
	return h, cancel
}

func testClient(h *Hub, userID int64, buffer int) *Client {
	return &Client{
		ID:     uuid.NewString(),
		UserID: userID,
		hub:    h,
		send:   make(chan []byte, buffer),
		log:    zerolog.Nop(),
	}
}

func receive(t *testing.T, c *Client) outFrameJSON {
	t.Helper()
	select {
	case b, ok := <-c.send:
		require.True(t, ok, "send channel closed")
		var f outFrameJSON
		require.NoError(t, json.Unmarshal(b, &f))
		return f
	case <-time.After(time.Second):
		t.Fatal("no frame received")
	}
	return outFrameJSON{}
}

func nothing(t *testing.T, c *Client) {
	t.Helper()
	select {
	case b := <-c.send:
		t.Fatalf("unexpected frame %s", b)
	case <-time.After(50 * time.Millisecond):
	}
}

type outFrameJSON struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data"`
}

func TestHub_RegisterJoinsUserRoom(t *testing.T) {
	h, _ := startHub(t)
	c := testClient(h, 1, 4)
	h.Register(c)

	assert.Equal(t, 1, h.Members(models.UserRoom(1)))
	h.Publish(context.Background(), models.Delivery{
		Room:    models.UserRoom(1),
		Event:   models.EventUnreadCount,
		Payload: models.UnreadCounts{Notifications: 3},
	})

	f := receive(t, c)
	assert.Equal(t, models.EventUnreadCount, f.Type)
	assert.EqualValues(t, 3, f.Data["notifications"])
}

func TestHub_PublishToEmptyRoomIsNoop(t *testing.T) {
	h, _ := startHub(t)
	c := testClient(h, 1, 4)
	h.Register(c)

	h.Publish(context.Background(), models.Delivery{Room: models.UserRoom(2), Event: models.EventTyping})
	nothing(t, c)
}

func TestHub_ConversationRoomAndExcept(t *testing.T) {
	h, _ := startHub(t)
	a := testClient(h, 1, 4)
	b := testClient(h, 2, 4)
	h.Register(a)
	h.Register(b)
	room := models.ConversationRoom(2, 1)
	h.Join(a, room)
	h.Join(b, room)
	require.Equal(t, 2, h.Members(room))

	h.Publish(context.Background(), models.Delivery{Room: room, Event: models.EventTyping, ExceptClient: a.ID})
	assert.Equal(t, models.EventTyping, receive(t, b).Type)
	nothing(t, a)

	h.Publish(context.Background(), models.Delivery{Room: room, Event: models.EventReceiveMessage})
	assert.Equal(t, models.EventReceiveMessage, receive(t, a).Type)
	assert.Equal(t, models.EventReceiveMessage, receive(t, b).Type)

	h.Leave(b, room)
	assert.Equal(t, 1, h.Members(room))
}

func TestHub_SlowClientIsDroppedAlone(t *testing.T) {
	h, _ := startHub(t)
	slow := testClient(h, 1, 1)
	fast := testClient(h, 1, 8)
	h.Register(slow)
	h.Register(fast)
	room := models.UserRoom(1)

	for i := 0; i < 3; i++ {
		h.Publish(context.Background(), models.Delivery{Room: room, Event: models.EventNewNotification})
	}
	for i := 0; i < 3; i++ {
		assert.Equal(t, models.EventNewNotification, receive(t, fast).Type)
	}
	require.Eventually(t, func() bool { return h.Members(room) == 1 }, time.Second, 10*time.Millisecond)

	<-slow.send
	_, ok := <-slow.send
	assert.False(t, ok, "dropped client's channel is closed")
}

func TestHub_UnregisterLeavesAllRooms(t *testing.T) {
	h, _ := startHub(t)
	c := testClient(h, 1, 4)
	h.Register(c)
	room := models.ConversationRoom(1, 2)
	h.Join(c, room)

	h.Unregister(c)
	assert.Zero(t, h.Members(models.UserRoom(1)))
	assert.Zero(t, h.Members(room))
	_, ok := <-c.send
	assert.False(t, ok)

	// a second unregister is harmless
	h.Unregister(c)
}

func TestHub_JoinAfterUnregisterIsIgnored(t *testing.T) {
	h, _ := startHub(t)
	c := testClient(h, 1, 4)
	h.Register(c)
	h.Unregister(c)

	room := models.ConversationRoom(1, 2)
	h.Join(c, room)
	assert.Zero(t, h.Members(room))
}

func TestHub_ReplyGoesToOneClient(t *testing.T) {
	h, _ := startHub(t)
	a := testClient(h, 1, 4)
	b := testClient(h, 1, 4)
	h.Register(a)
	h.Register(b)

	a.Reply(models.EventJoined, map[string]string{"room": "conversation:1:2"})
	f := receive(t, a)
	assert.Equal(t, models.EventJoined, f.Type)
	assert.Equal(t, "conversation:1:2", f.Data["room"])
	nothing(t, b)
}

func TestHub_ShutdownClosesClients(t *testing.T) {
	h, cancel := startHub(t)
	c := testClient(h, 1, 4)
	h.Register(c)

	cancel()
	select {
	case _, ok := <-c.send:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("client not closed on shutdown")
	}
	assert.Zero(t, h.Members(models.UserRoom(1)))
}

func TestFrameDecode(t *testing.T) {
	var f Frame
	require.NoError(t, json.Unmarshal([]byte(`{"type":"join","data":{"with":7}}`), &f))
	var body struct {
		With int64 `json:"with"`
	}
	require.NoError(t, f.Decode(&body))
	assert.EqualValues(t, 7, body.With)

	assert.Error(t, Frame{Type: "leave"}.Decode(&body))
}

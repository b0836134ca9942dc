package feed_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socialhub/backend/actions"
	"socialhub/backend/feed"
	"socialhub/backend/ledger/ledgertest"
	"socialhub/backend/models"
)

type env struct {
	clock *ledgertest.Clock
	proc  *actions.Processor
	asm   *feed.Assembler
}

func newEnv(t *testing.T) *env {
	t.Helper()
	store, clock := ledgertest.Open(t)
	return &env{clock: clock, proc: actions.New(store, zerolog.Nop()), asm: feed.New(store)}
}

func (e *env) user(t *testing.T, name string) models.User {
	t.Helper()
	out, err := e.proc.Register(context.Background(), models.RegistrationData{
		Username: name, Email: name + "@example.test", Password: "secret1",
	})
	require.NoError(t, err)
	return out.Payload
}

func (e *env) post(t *testing.T, in actions.NewPost) models.Post {
	t.Helper()
	e.clock.Advance(time.Second)
	out, err := e.proc.CreatePost(context.Background(), in)
	require.NoError(t, err)
	return out.Payload
}

func TestLimit(t *testing.T) {
	tests := []struct {
		in, want int
		wantErr  bool
	}{
		{0, feed.DefaultLimit, false},
		{10, 10, false},
		{1000, feed.MaxLimit, false},
		{-1, 0, true},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.in), func(t *testing.T) {
			got, err := feed.Limit(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, models.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFeed_LiveCountsAndViewerFlags(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := e.user(t, "alice")
	b := e.user(t, "bob")
	c := e.user(t, "carol")

	first := e.post(t, actions.NewPost{AuthorID: a.ID, Content: "first"})
	second := e.post(t, actions.NewPost{AuthorID: b.ID, Content: "second", WallOwnerID: &a.ID, TaggedUserIDs: []int64{c.ID}})

	_, err := e.proc.ToggleLike(ctx, first.ID, b.ID)
	require.NoError(t, err)
	_, err = e.proc.ToggleLike(ctx, first.ID, c.ID)
	require.NoError(t, err)
	_, err = e.proc.AddComment(ctx, first.ID, c.ID, "hi")
	require.NoError(t, err)

	posts, err := e.asm.Feed(ctx, b.ID, 0)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, second.ID, posts[0].ID, "newest first")
	assert.Equal(t, "alice", posts[0].WallOwnerUsername)
	assert.Equal(t, []int64{c.ID}, posts[0].TaggedUserIDs)

	assert.Equal(t, first.ID, posts[1].ID)
	assert.EqualValues(t, 2, posts[1].LikesCount)
	assert.EqualValues(t, 1, posts[1].CommentsCount)
	assert.True(t, posts[1].ViewerHasLiked)
	assert.Equal(t, "alice", posts[1].AuthorUsername)

	// unliking is reflected on the next read
	_, err = e.proc.ToggleLike(ctx, first.ID, b.ID)
	require.NoError(t, err)
	posts, err = e.asm.Feed(ctx, b.ID, 1)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, second.ID, posts[0].ID)

	posts, err = e.asm.Feed(ctx, b.ID, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, posts[1].LikesCount)
	assert.False(t, posts[1].ViewerHasLiked)

	_, err = e.asm.Feed(ctx, b.ID, -5)
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestWall(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := e.user(t, "alice")
	b := e.user(t, "bob")

	own := e.post(t, actions.NewPost{AuthorID: a.ID, Content: "mine"})
	onWall := e.post(t, actions.NewPost{AuthorID: b.ID, Content: "for alice", WallOwnerID: &a.ID})
	e.post(t, actions.NewPost{AuthorID: b.ID, Content: "bob's own"})
	e.post(t, actions.NewPost{AuthorID: a.ID, Content: "on bob's wall", WallOwnerID: &b.ID})

	wall, err := e.asm.Wall(ctx, b.ID, a.ID, 0)
	require.NoError(t, err)
	require.Len(t, wall, 2)
	assert.Equal(t, onWall.ID, wall[0].ID)
	assert.Equal(t, own.ID, wall[1].ID)

	_, err = e.asm.Wall(ctx, b.ID, 999, 0)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestConversation_SymmetricAndOldestFirst(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := e.user(t, "alice")
	b := e.user(t, "bob")
	c := e.user(t, "carol")

	var sent []int64
	for i, from := range []models.User{a, b, a, b, a} {
		to := b
		if from.ID == b.ID {
			to = a
		}
		e.clock.Advance(time.Second)
		out, err := e.proc.SendMessage(ctx, from.ID, to.ID, fmt.Sprintf("m%d", i))
		require.NoError(t, err)
		sent = append(sent, out.Payload.ID)
	}
	_, err := e.proc.SendMessage(ctx, a.ID, c.ID, "elsewhere")
	require.NoError(t, err)

	ab, err := e.asm.Conversation(ctx, a.ID, b.ID, 0)
	require.NoError(t, err)
	ba, err := e.asm.Conversation(ctx, b.ID, a.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, ab, ba)

	var ids []int64
	for _, m := range ab {
		ids = append(ids, m.ID)
	}
	assert.Equal(t, sent, ids)

	last, err := e.asm.Conversation(ctx, b.ID, a.ID, 2)
	require.NoError(t, err)
	require.Len(t, last, 2)
	assert.Equal(t, sent[3:], []int64{last[0].ID, last[1].ID})
}

func TestNotificationsAndUnread(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := e.user(t, "alice")
	b := e.user(t, "bob")

	_, err := e.proc.SendPoke(ctx, b.ID, a.ID)
	require.NoError(t, err)

	list, err := e.asm.Notifications(ctx, a.ID, 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, models.NotificationPoke, list[0].Type)
	assert.Equal(t, models.NotificationWelcome, list[1].Type)

	n, err := e.asm.UnreadCount(ctx, a.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	_, err = e.proc.MarkAllNotificationsRead(ctx, a.ID)
	require.NoError(t, err)
	n, err = e.asm.UnreadCount(ctx, a.ID)
	require.NoError(t, err)
	assert.Zero(t, n)

	pokes, err := e.asm.Pokes(ctx, a.ID, 0)
	require.NoError(t, err)
	require.Len(t, pokes, 1)
	assert.Equal(t, "bob", pokes[0].PokerUsername)
}

func TestContacts_OrderAndUnread(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := e.user(t, "alice")
	b := e.user(t, "bob")
	c := e.user(t, "carol")
	e.user(t, "dave")

	_, err := e.proc.SendMessage(ctx, b.ID, a.ID, "one")
	require.NoError(t, err)
	e.clock.Advance(time.Minute)
	_, err = e.proc.SendMessage(ctx, c.ID, a.ID, "two")
	require.NoError(t, err)
	e.clock.Advance(time.Minute)
	_, err = e.proc.SendMessage(ctx, c.ID, a.ID, "three")
	require.NoError(t, err)

	contacts, err := e.asm.Contacts(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, contacts, 3)
	assert.Equal(t, "carol", contacts[0].Username)
	assert.EqualValues(t, 2, contacts[0].UnreadMessages)
	assert.Equal(t, "bob", contacts[1].Username)
	assert.Equal(t, "dave", contacts[2].Username)
	assert.Nil(t, contacts[2].LastMessageID)
	assert.Nil(t, contacts[2].LastMessageAt)

	require.NotNil(t, contacts[0].LastMessageAt)
	assert.True(t, ledgertest.Epoch.Add(2*time.Minute).Equal(*contacts[0].LastMessageAt))
	require.NotNil(t, contacts[1].LastMessageAt)
	assert.True(t, ledgertest.Epoch.Equal(*contacts[1].LastMessageAt))
}

func TestCommentsAndProfile(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	a := e.user(t, "alice")
	b := e.user(t, "bob")
	p := e.post(t, actions.NewPost{AuthorID: a.ID, Content: "hello"})

	_, err := e.proc.AddComment(ctx, p.ID, b.ID, "first")
	require.NoError(t, err)
	e.clock.Advance(time.Second)
	_, err = e.proc.AddComment(ctx, p.ID, a.ID, "second")
	require.NoError(t, err)

	comments, err := e.asm.Comments(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "first", comments[0].Content)
	assert.Equal(t, "bob", comments[0].AuthorUsername)

	_, err = e.asm.Comments(ctx, 999)
	assert.ErrorIs(t, err, models.ErrNotFound)

	prof, err := e.asm.Profile(ctx, b.ID, a.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, prof.PostCount)
	assert.False(t, prof.IsSelf)
	assert.Empty(t, prof.InviteCode)

	self, err := e.asm.Profile(ctx, a.ID, a.ID)
	require.NoError(t, err)
	assert.True(t, self.IsSelf)
	assert.NotEmpty(t, self.InviteCode)
}

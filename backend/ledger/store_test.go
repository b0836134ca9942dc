package ledger_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socialhub/backend/ledger"
	"socialhub/backend/ledger/ledgertest"
	"socialhub/backend/models"
)

func newUser(t *testing.T, s *ledger.Store, name string) models.User {
	t.Helper()
	u := models.User{
		Username:     name,
		Email:        name + "@example.test",
		PasswordHash: "x",
		InviteCode:   "code-" + name,
	}
	require.NoError(t, s.WithTx(context.Background(), func(ctx context.Context, tx *ledger.Tx) error {
		return tx.InsertUser(ctx, &u)
	}))
	return u
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	s, _ := ledgertest.Open(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.WithTx(ctx, func(ctx context.Context, tx *ledger.Tx) error {
		u := models.User{Username: "ghost", Email: "g@example.test", PasswordHash: "x", InviteCode: "g"}
		require.NoError(t, tx.InsertUser(ctx, &u))
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = s.UserByUsername(ctx, "ghost")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestWithTx_RollsBackOnPanic(t *testing.T) {
	s, _ := ledgertest.Open(t)
	ctx := context.Background()

	assert.Panics(t, func() {
		_ = s.WithTx(ctx, func(ctx context.Context, tx *ledger.Tx) error {
			u := models.User{Username: "ghost", Email: "g@example.test", PasswordHash: "x", InviteCode: "g"}
			require.NoError(t, tx.InsertUser(ctx, &u))
			panic("boom")
		})
	})

	_, err := s.UserByUsername(ctx, "ghost")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestInsertUser_DuplicateIsConflict(t *testing.T) {
	s, clock := ledgertest.Open(t)
	u := newUser(t, s, "alice")
	assert.Equal(t, clock.Now(), u.CreatedAt)
	assert.NotZero(t, u.ID)

	dup := models.User{Username: "alice", Email: "other@example.test", PasswordHash: "x", InviteCode: "other"}
	err := s.WithTx(context.Background(), func(ctx context.Context, tx *ledger.Tx) error {
		return tx.InsertUser(ctx, &dup)
	})
	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestInsertPost_UnknownWallOwnerIsNotFound(t *testing.T) {
	s, _ := ledgertest.Open(t)
	a := newUser(t, s, "alice")
	missing := int64(999)

	err := s.WithTx(context.Background(), func(ctx context.Context, tx *ledger.Tx) error {
		return tx.InsertPost(ctx, &models.Post{AuthorID: a.ID, WallOwnerID: &missing, Content: "hi"})
	})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestSQLiteDSN_AddsMissingParams(t *testing.T) {
	tests := []struct {
		name string
		dsn  string
		want string
	}{
		{"bare path", "a.db", "a.db?_foreign_keys=on&_txlock=immediate&_busy_timeout=5000"},
		{"own params", "a.db?cache=shared", "a.db?cache=shared&_foreign_keys=on&_txlock=immediate&_busy_timeout=5000"},
		{"empty query", "a.db?", "a.db?_foreign_keys=on&_txlock=immediate&_busy_timeout=5000"},
		{"keeps explicit value", "a.db?_busy_timeout=100", "a.db?_busy_timeout=100&_foreign_keys=on&_txlock=immediate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ledger.SQLiteDSN(tt.dsn))
		})
	}
}

func TestOpen_DSNWithQueryStillEnforcesForeignKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db") + "?cache=private"
	s, err := ledger.Open(context.Background(), ledger.DriverSQLite, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	a := newUser(t, s, "alice")
	missing := int64(999)
	err = s.WithTx(context.Background(), func(ctx context.Context, tx *ledger.Tx) error {
		return tx.InsertPost(ctx, &models.Post{AuthorID: a.ID, WallOwnerID: &missing, Content: "hi"})
	})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestLikes_InsertDeleteCount(t *testing.T) {
	s, _ := ledgertest.Open(t)
	ctx := context.Background()
	a := newUser(t, s, "alice")
	b := newUser(t, s, "bob")
	p := models.Post{AuthorID: a.ID, Content: "hello"}

	require.NoError(t, s.WithTx(ctx, func(ctx context.Context, tx *ledger.Tx) error {
		if err := tx.InsertPost(ctx, &p); err != nil {
			return err
		}
		inserted, err := tx.InsertLike(ctx, p.ID, b.ID)
		require.NoError(t, err)
		assert.True(t, inserted)

		inserted, err = tx.InsertLike(ctx, p.ID, b.ID)
		require.NoError(t, err)
		assert.False(t, inserted, "second like of the same pair is ignored")

		n, err := tx.CountLikes(ctx, p.ID)
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)

		removed, err := tx.DeleteLike(ctx, p.ID, b.ID)
		require.NoError(t, err)
		assert.True(t, removed)

		removed, err = tx.DeleteLike(ctx, p.ID, b.ID)
		require.NoError(t, err)
		assert.False(t, removed)
		return nil
	}))
}

func TestRecentPokeExists_WindowIsExclusive(t *testing.T) {
	s, clock := ledgertest.Open(t)
	ctx := context.Background()
	a := newUser(t, s, "alice")
	b := newUser(t, s, "bob")

	require.NoError(t, s.WithTx(ctx, func(ctx context.Context, tx *ledger.Tx) error {
		return tx.InsertPoke(ctx, &models.Poke{PokerID: a.ID, PokedID: b.ID})
	}))
	pokedAt := clock.Now()

	exists, err := s.RecentPokeExists(ctx, a.ID, b.ID, pokedAt.Add(-time.Second))
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = s.RecentPokeExists(ctx, a.ID, b.ID, pokedAt)
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = s.RecentPokeExists(ctx, b.ID, a.ID, pokedAt.Add(-time.Hour))
	require.NoError(t, err)
	assert.False(t, exists, "cooldown is per ordered pair")
}

func TestMarkNotificationRead_OtherUserIsNotFound(t *testing.T) {
	s, _ := ledgertest.Open(t)
	ctx := context.Background()
	a := newUser(t, s, "alice")
	b := newUser(t, s, "bob")

	var n models.Notification
	require.NoError(t, s.WithTx(ctx, func(ctx context.Context, tx *ledger.Tx) (err error) {
		n, err = tx.InsertNotification(ctx, a.ID, models.WelcomeKind{}, "welcome")
		return err
	}))

	err := s.WithTx(ctx, func(ctx context.Context, tx *ledger.Tx) error {
		return tx.MarkNotificationRead(ctx, b.ID, n.ID)
	})
	assert.ErrorIs(t, err, models.ErrNotFound)

	count, err := s.UnreadCount(ctx, a.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	require.NoError(t, s.WithTx(ctx, func(ctx context.Context, tx *ledger.Tx) error {
		return tx.MarkNotificationRead(ctx, a.ID, n.ID)
	}))
	count, err = s.UnreadCount(ctx, a.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestNotifications_DecodeKind(t *testing.T) {
	s, clock := ledgertest.Open(t)
	ctx := context.Background()
	a := newUser(t, s, "alice")
	b := newUser(t, s, "bob")

	require.NoError(t, s.WithTx(ctx, func(ctx context.Context, tx *ledger.Tx) error {
		_, err := tx.InsertNotification(ctx, a.ID, models.WelcomeKind{}, "welcome")
		return err
	}))
	clock.Advance(time.Minute)
	require.NoError(t, s.WithTx(ctx, func(ctx context.Context, tx *ledger.Tx) error {
		_, err := tx.InsertNotification(ctx, a.ID, models.PokeKind{PokeID: 7, PokerID: b.ID}, "poked")
		return err
	}))

	list, err := s.Notifications(ctx, a.ID, 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, models.PokeKind{PokeID: 7, PokerID: b.ID}, list[0].Kind)
	assert.Equal(t, models.WelcomeKind{}, list[1].Kind)
	assert.Nil(t, list[1].RelatedID)
}

func TestRebindPostgres(t *testing.T) {
	s := ledger.New(nil, ledger.DriverPostgres)
	assert.Equal(t, "SELECT $1, $2", ledger.Rebind(s, "SELECT ?, ?"))
	s = ledger.New(nil, ledger.DriverSQLite)
	assert.Equal(t, "SELECT ?, ?", ledger.Rebind(s, "SELECT ?, ?"))
}

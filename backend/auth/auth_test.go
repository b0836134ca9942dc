package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socialhub/backend/models"
)

func TestPassword(t *testing.T) {
	hash, err := HashPassword("password_a")
	require.NoError(t, err)
	assert.NotEqual(t, "password_a", hash)

	assert.NoError(t, CheckPassword(hash, "password_a"))
	assert.ErrorIs(t, CheckPassword(hash, "password_b"), models.ErrUnauthenticated)
}

func TestIssuer_RoundTrip(t *testing.T) {
	iss := NewIssuer("secret", time.Hour)
	token, expires, err := iss.Issue(Identity{UserID: 7, Username: "user_a"})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, time.Minute)

	id, err := iss.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, Identity{UserID: 7, Username: "user_a"}, id)
}

func TestIssuer_Rejects(t *testing.T) {
	iss := NewIssuer("secret", time.Hour)
	token, _, err := iss.Issue(Identity{UserID: 7})
	require.NoError(t, err)

	other := NewIssuer("other", time.Hour)
	_, err = other.Verify(token)
	assert.ErrorIs(t, err, models.ErrUnauthenticated)

	expired := NewIssuer("secret", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = expired.Verify(token)
	assert.ErrorIs(t, err, models.ErrUnauthenticated)

	_, err = iss.Verify("not-a-token")
	assert.ErrorIs(t, err, models.ErrUnauthenticated)
}

func TestTokenFromRequest(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/ws?token=q", nil)
	assert.Equal(t, "q", TokenFromRequest(r))

	r.AddCookie(&http.Cookie{Name: CookieName, Value: "c"})
	assert.Equal(t, "c", TokenFromRequest(r))

	r.Header.Set("Authorization", "Bearer h")
	assert.Equal(t, "h", TokenFromRequest(r))
}

func TestMiddleware(t *testing.T) {
	iss := NewIssuer("secret", time.Hour)
	token, _, err := iss.Issue(Identity{UserID: 3, Username: "user_c"})
	require.NoError(t, err)

	var denied error
	h := iss.Middleware(func(w http.ResponseWriter, _ *http.Request, err error) {
		denied = err
		w.WriteHeader(http.StatusUnauthorized)
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := FromContext(r.Context())
		require.True(t, ok)
		assert.EqualValues(t, 3, id.UserID)
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.ErrorIs(t, denied, models.ErrUnauthenticated)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coachkit/livechat/internal/domain"
)

const testCookieName = "session"

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func newTestAuthenticator(t *testing.T) (*Authenticator, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore()
	return NewAuthenticator(testSecret, testCookieName, store), store
}

func cookieHeader(t *testing.T, a *Authenticator, sessionID string) string {
	t.Helper()
	value, err := a.codec.Encode(testCookieName, sessionID)
	require.NoError(t, err)
	return testCookieName + "=" + value
}

func TestAuthenticate_OK(t *testing.T) {
	a, store := newTestAuthenticator(t)
	store.Put("sid-1", domain.Session{
		UserID:    "coach-1",
		ExpiresAt: time.Now().Add(time.Hour).Unix(),
	})

	userID, err := a.Authenticate(context.Background(), cookieHeader(t, a, "sid-1"))
	require.NoError(t, err)
	assert.Equal(t, domain.UserID("coach-1"), userID)
}

func TestAuthenticate_Rejections(t *testing.T) {
	a, store := newTestAuthenticator(t)
	store.Put("expired", domain.Session{
		UserID:    "coach-1",
		ExpiresAt: time.Now().Add(-time.Minute).Unix(),
	})
	store.Put("anonymous", domain.Session{
		ExpiresAt: time.Now().Add(time.Hour).Unix(),
	})

	tests := []struct {
		name    string
		header  string
		wantErr error
	}{
		{
			name:    "empty header",
			header:  "",
			wantErr: ErrNoSessionCookie,
		},
		{
			name:    "other cookies only",
			header:  "theme=dark; lang=en",
			wantErr: ErrNoSessionCookie,
		},
		{
			name:    "unsigned value",
			header:  "session=not-a-signed-value",
			wantErr: ErrBadCookie,
		},
		{
			name:    "store miss",
			header:  cookieHeader(t, a, "unknown-sid"),
			wantErr: ErrSessionNotFound,
		},
		{
			name:    "expired session",
			header:  cookieHeader(t, a, "expired"),
			wantErr: ErrSessionExpired,
		},
		{
			name:    "no principal",
			header:  cookieHeader(t, a, "anonymous"),
			wantErr: ErrNoPrincipal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.Authenticate(context.Background(), tt.header)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestAuthenticate_TamperedCookie(t *testing.T) {
	a, store := newTestAuthenticator(t)
	store.Put("sid-1", domain.Session{
		UserID:    "coach-1",
		ExpiresAt: time.Now().Add(time.Hour).Unix(),
	})

	// A cookie signed with a different key must not verify.
	other := NewAuthenticator([]byte("ffffffffffffffffffffffffffffffff"), testCookieName, store)
	_, err := a.Authenticate(context.Background(), cookieHeader(t, other, "sid-1"))
	assert.ErrorIs(t, err, ErrBadCookie)
}

func TestStaticOracle(t *testing.T) {
	o := NewStaticOracle()
	ctx := context.Background()

	owns, err := o.OwnsClient(ctx, "coach-1", "client-9")
	require.NoError(t, err)
	assert.False(t, owns)

	o.Grant("coach-1", "client-9")
	owns, err = o.OwnsClient(ctx, "coach-1", "client-9")
	require.NoError(t, err)
	assert.True(t, owns)

	owns, _ = o.OwnsClient(ctx, "coach-2", "client-9")
	assert.False(t, owns, "ownership is per coach")

	o.Revoke("coach-1", "client-9")
	owns, _ = o.OwnsClient(ctx, "coach-1", "client-9")
	assert.False(t, owns)
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, err := store.Lookup(ctx, "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	store.Put("sid-1", domain.Session{UserID: "coach-1", ExpiresAt: 42})
	sess, err := store.Lookup(ctx, "sid-1")
	require.NoError(t, err)
	assert.Equal(t, domain.UserID("coach-1"), sess.UserID)

	store.Delete("sid-1")
	_, err = store.Lookup(ctx, "sid-1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

// Package auth resolves connection handshakes to authenticated users
// and answers coach-client ownership questions. Both lean on external
// collaborators (session store, ownership facts); this package never
// issues sessions and never trusts client-supplied identity.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"

	"github.com/coachkit/livechat/internal/domain"
)

var (
	ErrNoSessionCookie = errors.New("no session cookie")
	ErrBadCookie       = errors.New("malformed session cookie")
	ErrSessionExpired  = errors.New("session expired")
	ErrNoPrincipal     = errors.New("session carries no user")
)

// Authenticator resolves a raw Cookie header to the user behind it.
// The cookie value is a signed wrapper around an opaque session id;
// the store is the only authority on who that id belongs to.
type Authenticator struct {
	codec      *securecookie.SecureCookie
	store      SessionStore
	cookieName string
	now        func() time.Time
}

func NewAuthenticator(secret []byte, cookieName string, store SessionStore) *Authenticator {
	return &Authenticator{
		codec:      securecookie.New(secret, nil),
		store:      store,
		cookieName: cookieName,
		now:        time.Now,
	}
}

// Authenticate performs the one-time handshake check: extract the
// session id from the cookie header, resolve it against the store and
// reject anything missing, unreadable or expired. Read-only; one store
// call per attempt. ctx should carry the handshake deadline.
func (a *Authenticator) Authenticate(ctx context.Context, rawCookieHeader string) (domain.UserID, error) {
	value, ok := a.findCookie(rawCookieHeader)
	if !ok {
		return "", ErrNoSessionCookie
	}

	var sessionID string
	if err := a.codec.Decode(a.cookieName, value, &sessionID); err != nil {
		return "", fmt.Errorf("%w: %v", ErrBadCookie, err)
	}

	sess, err := a.store.Lookup(ctx, sessionID)
	if err != nil {
		return "", err
	}
	if sess.Expired(a.now().Unix()) {
		return "", ErrSessionExpired
	}
	if sess.UserID == "" {
		return "", ErrNoPrincipal
	}
	return sess.UserID, nil
}

func (a *Authenticator) findCookie(rawHeader string) (string, bool) {
	cookies, err := http.ParseCookie(rawHeader)
	if err != nil {
		return "", false
	}
	for _, ck := range cookies {
		if ck.Name == a.cookieName {
			return ck.Value, true
		}
	}
	return "", false
}

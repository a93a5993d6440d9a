package handlers

import (
	"context"
	"net/http"
	"time"

	"simonseq/internal/session"
)

const sessionCookieName = "simonseq_session"

// cookieStore keeps the signed session token in a cookie, so the browser
// holds the current session between requests.
type cookieStore struct {
	w      http.ResponseWriter
	r      *http.Request
	issuer *session.Issuer
}

func newCookieStore(w http.ResponseWriter, r *http.Request, issuer *session.Issuer) *cookieStore {
	return &cookieStore{w: w, r: r, issuer: issuer}
}

func (c *cookieStore) Load(_ context.Context) (session.Session, bool, error) {
	cookie, err := c.r.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		return session.Session{}, false, nil
	}
	sess, err := c.issuer.Parse(cookie.Value)
	if err != nil {
		return session.Session{}, false, err
	}
	return sess, true, nil
}

func (c *cookieStore) Save(_ context.Context, sess session.Session) error {
	if !sess.Valid() {
		return session.ErrEmptySession
	}
	http.SetCookie(c.w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    sess.Token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   c.r.TLS != nil,
		Expires:  sess.ExpiresAt,
	})
	return nil
}

func (c *cookieStore) Clear(_ context.Context) error {
	http.SetCookie(c.w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
	})
	return nil
}

// Package session binds the session token to the HTTP response as a cookie.
package session

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	// CookieName is the cookie that carries the session token.
	CookieName = "token"

	// DefaultMaxAge is the cookie lifetime. It is longer than the token lifetime;
	// an expired token in a live cookie reads as anonymous.
	DefaultMaxAge = 7 * 24 * time.Hour
)

// CookieOptions controls the attributes of the session cookie.
type CookieOptions struct {
	MaxAge time.Duration
	// Secure is set in production so that the cookie only travels over HTTPS.
	Secure bool
}

// CookieSession writes the session cookie onto one gin response.
type CookieSession struct {
	c    *gin.Context
	opts CookieOptions
}

// NewCookieSession creates a session writer for the current request.
func NewCookieSession(c *gin.Context, opts CookieOptions) *CookieSession {
	if opts.MaxAge <= 0 {
		opts.MaxAge = DefaultMaxAge
	}
	return &CookieSession{c: c, opts: opts}
}

// SetSession sets the token cookie: HttpOnly, SameSite=None.
func (s *CookieSession) SetSession(token string) {
	s.c.SetSameSite(http.SameSiteNoneMode)
	s.c.SetCookie(CookieName, token, int(s.opts.MaxAge/time.Second), "/", "", s.opts.Secure, true)
}

// ClearSession expires the token cookie. Clearing an absent cookie is harmless.
func (s *CookieSession) ClearSession() {
	s.c.SetSameSite(http.SameSiteNoneMode)
	s.c.SetCookie(CookieName, "", -1, "/", "", s.opts.Secure, true)
}

type ctxKey struct{}

// WithSession stores the session writer in ctx for resolvers that need it.
func WithSession(ctx context.Context, s *CookieSession) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext returns the session writer stored by WithSession, or nil.
func FromContext(ctx context.Context) *CookieSession {
	s, _ := ctx.Value(ctxKey{}).(*CookieSession)
	return s
}

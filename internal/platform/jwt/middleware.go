package jwtmw

import (
	"context"

	"github.com/gin-gonic/gin"

	"account_backend/internal/platform/session"
)

// CookieName is the cookie that carries the session token.
const CookieName = session.CookieName

// ContextUserID is the gin context key holding the authenticated user id.
const ContextUserID = "userID"

type userIDKey struct{}

// TokenParser verifies a session token and returns its subject.
type TokenParser interface {
	ParseToken(token string) (string, error)
}

// WithUserID returns a copy of ctx carrying userID.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// UserIDFromContext returns the user id stored by SessionFromCookie, or "" for anonymous requests.
func UserIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey{}).(string)
	return id
}

// SessionFromCookie returns a Gin middleware that resolves the session cookie, if any.
// Requests without a valid token continue anonymously; nothing here rejects a request.
func SessionFromCookie(parser TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, err := c.Cookie(CookieName)
		if err != nil || tokenStr == "" {
			c.Next()
			return
		}

		userID, err := parser.ParseToken(tokenStr)
		if err != nil {
			c.Next()
			return
		}

		c.Set(ContextUserID, userID)
		c.Request = c.Request.WithContext(WithUserID(c.Request.Context(), userID))
		c.Next()
	}
}

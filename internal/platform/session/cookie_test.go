package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/graphql", nil)
	return c, w
}

func TestCookieSession_SetSession(t *testing.T) {
	tests := []struct {
		name   string
		opts   CookieOptions
		secure bool
		maxAge int
	}{
		{name: "development defaults", opts: CookieOptions{}, secure: false, maxAge: 7 * 24 * 3600},
		{name: "production", opts: CookieOptions{Secure: true, MaxAge: time.Hour}, secure: true, maxAge: 3600},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newTestContext()

			NewCookieSession(c, tt.opts).SetSession("abc.def.ghi")

			cookies := w.Result().Cookies()
			require.Len(t, cookies, 1)
			ck := cookies[0]
			assert.Equal(t, CookieName, ck.Name)
			assert.Equal(t, "abc.def.ghi", ck.Value)
			assert.Equal(t, "/", ck.Path)
			assert.True(t, ck.HttpOnly)
			assert.Equal(t, tt.secure, ck.Secure)
			assert.Equal(t, http.SameSiteNoneMode, ck.SameSite)
			assert.Equal(t, tt.maxAge, ck.MaxAge)
		})
	}
}

func TestCookieSession_ClearSession(t *testing.T) {
	c, w := newTestContext()

	NewCookieSession(c, CookieOptions{}).ClearSession()

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge)
}

func TestWithSession(t *testing.T) {
	c, _ := newTestContext()
	s := NewCookieSession(c, CookieOptions{})

	assert.Same(t, s, FromContext(WithSession(context.Background(), s)))
	assert.Nil(t, FromContext(context.Background()))
}

package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jtaylorisbell/lakebase-todo-app/internal/config"
	dom "github.com/jtaylorisbell/lakebase-todo-app/internal/domain"
)

func identityFor(t *testing.T, fallback config.UserConfig, headers map[string]string) dom.CurrentUser {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var got dom.CurrentUser
	r := gin.New()
	r.GET("/", Identity(fallback), func(c *gin.Context) {
		got = UserFromContext(c)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	return got
}

func TestIdentityFromHeaders(t *testing.T) {
	user := identityFor(t, config.UserConfig{}, map[string]string{
		"X-Forwarded-Email":              "ada@example.com",
		"X-Forwarded-Preferred-Username": "Ada Lovelace",
	})
	assert.Equal(t, "ada@example.com", user.Email)
	assert.Equal(t, "Ada Lovelace", user.Name)
	assert.True(t, user.IsAuthenticated())
	assert.Equal(t, "Ada Lovelace", user.DisplayName())
}

func TestIdentityFallbackToConfig(t *testing.T) {
	user := identityFor(t, config.UserConfig{Email: "dev@local", Name: "Dev"}, nil)
	assert.Equal(t, "dev@local", user.Email)
	assert.Equal(t, "Dev", user.Name)
}

func TestIdentityHeadersWinOverConfig(t *testing.T) {
	user := identityFor(t, config.UserConfig{Email: "dev@local"}, map[string]string{
		"X-Forwarded-Email": "ada@example.com",
	})
	assert.Equal(t, "ada@example.com", user.Email)
}

func TestIdentityAnonymous(t *testing.T) {
	user := identityFor(t, config.UserConfig{}, nil)
	assert.False(t, user.IsAuthenticated())
	assert.Equal(t, "Unknown", user.DisplayName())
	assert.Nil(t, user.EmailPtr())
}

func TestDisplayNameFallsBackToEmailLocalPart(t *testing.T) {
	user := identityFor(t, config.UserConfig{Email: "grace.hopper@example.com"}, nil)
	assert.Equal(t, "grace.hopper", user.DisplayName())
}

package auth

import (
	"github.com/gin-gonic/gin"

	"github.com/jtaylorisbell/lakebase-todo-app/internal/config"
	dom "github.com/jtaylorisbell/lakebase-todo-app/internal/domain"
)

const (
	headerEmail = "X-Forwarded-Email"
	headerName  = "X-Forwarded-Preferred-Username"

	contextKeyUser = "current_user"
)

// UserFromContext returns the caller identity set by Identity. The zero
// value means an unauthenticated caller.
func UserFromContext(c *gin.Context) dom.CurrentUser {
	v, ok := c.Get(contextKeyUser)
	if !ok {
		return dom.CurrentUser{}
	}
	u, ok := v.(dom.CurrentUser)
	if !ok {
		return dom.CurrentUser{}
	}
	return u
}

// Identity returns a middleware that resolves the caller from the auth
// proxy's forwarded headers, falling back to the configured local identity.
// Requests without either are served as unauthenticated; nothing is rejected.
func Identity(fallback config.UserConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := dom.CurrentUser{
			Email: c.GetHeader(headerEmail),
			Name:  c.GetHeader(headerName),
		}
		if user.Email == "" {
			user.Email = fallback.Email
			if user.Name == "" {
				user.Name = fallback.Name
			}
		}
		c.Set(contextKeyUser, user)
		c.Next()
	}
}

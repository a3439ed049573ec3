package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jtaylorisbell/lakebase-todo-app/internal/auth"
	"github.com/jtaylorisbell/lakebase-todo-app/internal/dto"
)

// UserHandler exposes the caller identity passthrough.
type UserHandler struct{}

func NewUserHandler() *UserHandler {
	return &UserHandler{}
}

// Me godoc
// @Summary      Current caller identity
// @Tags         user
// @Produce      json
// @Success      200  {object}  dto.CurrentUserResponse
// @Router       /me [get]
func (h *UserHandler) Me(c *gin.Context) {
	user := auth.UserFromContext(c)
	resp := dto.CurrentUserResponse{
		DisplayName:     user.DisplayName(),
		IsAuthenticated: user.IsAuthenticated(),
	}
	if user.Email != "" {
		resp.Email = &user.Email
	}
	if user.Name != "" {
		resp.Name = &user.Name
	}
	c.JSON(http.StatusOK, resp)
}

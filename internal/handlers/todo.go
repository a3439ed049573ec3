package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jtaylorisbell/lakebase-todo-app/internal/auth"
	dom "github.com/jtaylorisbell/lakebase-todo-app/internal/domain"
	"github.com/jtaylorisbell/lakebase-todo-app/internal/dto"
	"github.com/jtaylorisbell/lakebase-todo-app/internal/service"
)

const maxListLimit = 500

type TodoHandler struct {
	svc *service.TodoService
}

func NewTodoHandler(svc *service.TodoService) *TodoHandler {
	return &TodoHandler{svc: svc}
}

// Create godoc
// @Summary      Create a todo
// @Tags         todos
// @Accept       json
// @Produce      json
// @Param        body  body      dto.CreateTodoRequest  true  "Todo body"
// @Success      201   {object}  dto.TodoResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /todos [post]
func (h *TodoHandler) Create(c *gin.Context) {
	var req dto.CreateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, dto.ErrorResponse{Detail: err.Error()})
		return
	}
	user := auth.UserFromContext(c)
	t, err := h.svc.Create(c.Request.Context(), user, req.Title, req.Description, req.Priority)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.FromTodo(t))
}

// List godoc
// @Summary      List todos
// @Tags         todos
// @Produce      json
// @Param        completed  query  bool  false  "Filter by completion state"
// @Param        limit      query  int   false  "Max results (default 100)"
// @Success      200  {object}  dto.TodoListResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /todos [get]
func (h *TodoHandler) List(c *gin.Context) {
	f, ok := parseFilter(c)
	if !ok {
		return
	}
	list, err := h.svc.List(c.Request.Context(), f)
	if err != nil {
		writeError(c, err)
		return
	}
	todos := dto.FromTodos(list)
	c.JSON(http.StatusOK, dto.TodoListResponse{Todos: todos, Total: len(todos)})
}

// GetByID godoc
// @Summary      Get a todo by ID
// @Tags         todos
// @Produce      json
// @Param        id   path      string  true  "Todo ID"
// @Success      200  {object}  dto.TodoResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /todos/{id} [get]
func (h *TodoHandler) GetByID(c *gin.Context) {
	t, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromTodo(t))
}

// Update godoc
// @Summary      Update a todo
// @Tags         todos
// @Accept       json
// @Produce      json
// @Param        id    path      string  true  "Todo ID"
// @Param        body  body      dto.UpdateTodoRequest  true  "Partial update"
// @Success      200   {object}  dto.TodoResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /todos/{id} [put]
func (h *TodoHandler) Update(c *gin.Context) {
	var req dto.UpdateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, dto.ErrorResponse{Detail: err.Error()})
		return
	}
	t, err := h.svc.Update(c.Request.Context(), c.Param("id"), req.Title, req.Description, req.Completed, req.Priority)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromTodo(t))
}

// Toggle godoc
// @Summary      Flip a todo's completed flag
// @Tags         todos
// @Produce      json
// @Param        id   path      string  true  "Todo ID"
// @Success      200  {object}  dto.TodoResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /todos/{id}/toggle [patch]
func (h *TodoHandler) Toggle(c *gin.Context) {
	t, err := h.svc.Toggle(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromTodo(t))
}

// Delete godoc
// @Summary      Delete a todo
// @Tags         todos
// @Param        id   path  string  true  "Todo ID"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /todos/{id} [delete]
func (h *TodoHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Stats godoc
// @Summary      Aggregate todo counts
// @Tags         todos
// @Produce      json
// @Success      200  {object}  dto.TodoStatsResponse
// @Router       /stats [get]
func (h *TodoHandler) Stats(c *gin.Context) {
	user := auth.UserFromContext(c)
	st, err := h.svc.Stats(c.Request.Context(), user.EmailPtr())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.TodoStatsResponse{
		Total:        st.Total,
		Completed:    st.Completed,
		Pending:      st.Pending,
		HighPriority: st.HighPriority,
	})
}

// parseFilter reads the completed/limit query params and scopes the filter
// to the caller's email when authenticated.
func parseFilter(c *gin.Context) (dom.TodoFilter, bool) {
	var f dom.TodoFilter
	if raw, ok := c.GetQuery("completed"); ok {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, dto.ErrorResponse{Detail: "completed must be true or false"})
			return f, false
		}
		f.Completed = &v
	}
	limit := 0
	if raw, ok := c.GetQuery("limit"); ok {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxListLimit {
			c.JSON(http.StatusUnprocessableEntity, dto.ErrorResponse{Detail: "limit must be between 1 and 500"})
			return f, false
		}
		limit = n
	}
	f.Limit = limit
	f.UserEmail = auth.UserFromContext(c).EmailPtr()
	return f, true
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Detail: "Todo not found"})
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusUnprocessableEntity, dto.ErrorResponse{Detail: err.Error()})
	case errors.Is(err, service.ErrUnavailable):
		c.JSON(http.StatusServiceUnavailable, dto.ErrorResponse{Detail: "database unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Detail: err.Error()})
	}
}

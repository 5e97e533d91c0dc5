package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/chocobaby727/taskhub/internal/cache"
	"github.com/chocobaby727/taskhub/internal/domain/todo"
	"github.com/chocobaby727/taskhub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

// TodoStore is the ownership-scoped CRUD surface. Every lookup and mutation
// takes the caller's user id; rows owned by anyone else behave as missing.
type TodoStore interface {
	Create(ctx context.Context, userID int64, req todo.CreateTodoRequest) (todo.Todo, error)
	ListForUser(ctx context.Context, userID int64) ([]todo.Todo, error)
	GetByID(ctx context.Context, id, userID int64) (todo.Todo, error)
	Update(ctx context.Context, id, userID int64, req todo.UpdateTodoRequest) (todo.Todo, error)
	Delete(ctx context.Context, id, userID int64) error
}

type TodosHandler struct {
	repo TodoStore
	// shared with AdminHandler; mutations drop its listing entry so admins
	// never read a stale snapshot
	cache *cache.Cache
}

func NewTodosHandler(repo TodoStore) *TodosHandler {
	return &TodosHandler{repo: repo}
}

func NewTodosHandlerWithCache(repo TodoStore, c *cache.Cache) *TodosHandler {
	return &TodosHandler{repo: repo, cache: c}
}

func (h *TodosHandler) invalidateAdminListing() {
	if h.cache != nil {
		h.cache.Delete(adminTodosCacheKey)
	}
}

func callerID(ctx *gin.Context) (int64, bool) {
	id, ok := middlewares.UserIDFromContext(ctx)

	if !ok {
		RespondUnauthorized(ctx, "unauthorized", "Missing identity context")
		return 0, false
	}

	return id, true
}

func todoIDParam(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)

	if err != nil || id <= 0 {
		RespondBadRequest(ctx, "Invalid todo id", gin.H{
			"fields": []FieldError{
				{Field: "id", Rule: "numeric", Message: "must be a positive integer"},
			},
		})
		return 0, false
	}

	return id, true
}

func (h *TodosHandler) CreateTodo(ctx *gin.Context) {
	userID, ok := callerID(ctx)

	if !ok {
		return
	}

	var req todo.CreateTodoRequest

	if !BindJSON(ctx, &req) {
		return
	}

	t, err := h.repo.Create(ctx.Request.Context(), userID, req)

	if err != nil {
		RespondInternal(ctx, "Could not create todo")
		return
	}

	h.invalidateAdminListing()

	ctx.JSON(http.StatusCreated, t)
}

func (h *TodosHandler) ListTodos(ctx *gin.Context) {
	userID, ok := callerID(ctx)

	if !ok {
		return
	}

	todos, err := h.repo.ListForUser(ctx.Request.Context(), userID)

	if err != nil {
		RespondInternal(ctx, "Could not list todos")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": todos,
		"count": len(todos),
	})
}

func (h *TodosHandler) GetTodoByID(ctx *gin.Context) {
	userID, ok := callerID(ctx)

	if !ok {
		return
	}

	id, ok := todoIDParam(ctx)

	if !ok {
		return
	}

	t, err := h.repo.GetByID(ctx.Request.Context(), id, userID)

	if err != nil {
		if errors.Is(err, todo.ErrNotFound) {
			RespondNotFound(ctx, "Todo not found")
			return
		}

		RespondInternal(ctx, "Could not fetch todo")
		return
	}

	ctx.JSON(http.StatusOK, t)
}

func (h *TodosHandler) UpdateTodo(ctx *gin.Context) {
	userID, ok := callerID(ctx)

	if !ok {
		return
	}

	id, ok := todoIDParam(ctx)

	if !ok {
		return
	}

	var req todo.UpdateTodoRequest

	if !BindJSON(ctx, &req) {
		return
	}

	t, err := h.repo.Update(ctx.Request.Context(), id, userID, req)

	if err != nil {
		if errors.Is(err, todo.ErrNotFound) {
			RespondNotFound(ctx, "Todo not found")
			return
		}

		RespondInternal(ctx, "Could not update todo")
		return
	}

	h.invalidateAdminListing()

	ctx.JSON(http.StatusOK, t)
}

func (h *TodosHandler) DeleteTodo(ctx *gin.Context) {
	userID, ok := callerID(ctx)

	if !ok {
		return
	}

	id, ok := todoIDParam(ctx)

	if !ok {
		return
	}

	err := h.repo.Delete(ctx.Request.Context(), id, userID)

	if err != nil {
		if errors.Is(err, todo.ErrNotFound) {
			RespondNotFound(ctx, "Todo not found")
			return
		}

		RespondInternal(ctx, "Could not delete todo")
		return
	}

	h.invalidateAdminListing()

	ctx.Status(http.StatusNoContent)
}

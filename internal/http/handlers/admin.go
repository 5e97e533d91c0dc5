package handlers

import (
	"context"
	"net/http"

	"github.com/chocobaby727/taskhub/internal/cache"
	"github.com/chocobaby727/taskhub/internal/domain/todo"
	"github.com/gin-gonic/gin"
)

type AdminTodoLister interface {
	ListAll(ctx context.Context) ([]todo.Todo, error)
}

// AdminHandler serves the cross-user listing. It does no authorization
// itself; the role gate on the route is responsible for that.
type AdminHandler struct {
	repo  AdminTodoLister
	cache *cache.Cache
}

func NewAdminHandler(repo AdminTodoLister) *AdminHandler {
	return &AdminHandler{repo: repo}
}

func NewAdminHandlerWithCache(repo AdminTodoLister, c *cache.Cache) *AdminHandler {
	return &AdminHandler{repo: repo, cache: c}
}

const adminTodosCacheKey = "admin:todos"

func (h *AdminHandler) ListAllTodos(ctx *gin.Context) {
	if h.cache != nil {
		if v, ok := h.cache.Get(adminTodosCacheKey); ok {
			if todos, ok := v.([]todo.Todo); ok {
				ctx.JSON(http.StatusOK, gin.H{
					"items": todos,
					"count": len(todos),
				})
				return
			}
		}
	}

	todos, err := h.repo.ListAll(ctx.Request.Context())

	if err != nil {
		RespondInternal(ctx, "Could not list todos")
		return
	}

	if h.cache != nil {
		h.cache.Set(adminTodosCacheKey, todos)
	}

	ctx.JSON(http.StatusOK, gin.H{
		"items": todos,
		"count": len(todos),
	})
}

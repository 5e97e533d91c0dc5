package todo

import (
	"errors"
	"time"
)

type Todo struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"userId"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Priority    int       `json:"priority"`
	Complete    bool      `json:"complete"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

var ErrNotFound = errors.New("todo not found")

type CreateTodoRequest struct {
	Title       string `json:"title" binding:"required,min=1,max=120"`
	Description string `json:"description" binding:"omitempty,max=1000"`
	Priority    int    `json:"priority" binding:"required,min=1,max=5"`
	Complete    bool   `json:"complete"`
}

// a full update payload, not a patch: every mutable field is overwritten.
type UpdateTodoRequest struct {
	Title       string `json:"title" binding:"required,min=1,max=120"`
	Description string `json:"description" binding:"omitempty,max=1000"`
	Priority    int    `json:"priority" binding:"required,min=1,max=5"`
	Complete    bool   `json:"complete"`
}

package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/chocobaby727/taskhub/internal/domain/todo"
)

type TodosRepo struct {
	mu     sync.RWMutex
	nextID int64
	items  map[int64]todo.Todo
}

func NewTodosRepo() *TodosRepo {
	return &TodosRepo{
		items: make(map[int64]todo.Todo),
	}
}

func (r *TodosRepo) Create(ctx context.Context, userID int64, req todo.CreateTodoRequest) (todo.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	now := time.Now().UTC()

	t := todo.Todo{
		ID:          r.nextID,
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Complete:    req.Complete,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	r.items[t.ID] = t

	return t, nil
}

// ListForUser mirrors the postgres repo's creation order (id ascending).
func (r *TodosRepo) ListForUser(ctx context.Context, userID int64) ([]todo.Todo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]todo.Todo, 0)

	for _, t := range r.items {
		if t.UserID == userID {
			out = append(out, t)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

func (r *TodosRepo) GetByID(ctx context.Context, id, userID int64) (todo.Todo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.items[id]

	// a foreign todo behaves exactly like a missing one
	if !ok || t.UserID != userID {
		return todo.Todo{}, todo.ErrNotFound
	}

	return t, nil
}

func (r *TodosRepo) Update(ctx context.Context, id, userID int64, req todo.UpdateTodoRequest) (todo.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.items[id]

	if !ok || t.UserID != userID {
		return todo.Todo{}, todo.ErrNotFound
	}

	t.Title = req.Title
	t.Description = req.Description
	t.Priority = req.Priority
	t.Complete = req.Complete
	t.UpdatedAt = time.Now().UTC()

	r.items[id] = t

	return t, nil
}

func (r *TodosRepo) Delete(ctx context.Context, id, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.items[id]

	if !ok || t.UserID != userID {
		return todo.ErrNotFound
	}

	delete(r.items, id)

	return nil
}

func (r *TodosRepo) ListAll(ctx context.Context) ([]todo.Todo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]todo.Todo, 0, len(r.items))

	for _, t := range r.items {
		out = append(out, t)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

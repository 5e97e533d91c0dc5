package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/chocobaby727/taskhub/internal/auth"
	"github.com/chocobaby727/taskhub/internal/domain/todo"
	"github.com/chocobaby727/taskhub/internal/http/handlers"
	"github.com/chocobaby727/taskhub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

// Make sure Gin does not spam the console during the test

func init() {
	gin.SetMode(gin.TestMode)
}

var testJWT = auth.NewManager("test-secret-key", 20*time.Minute)

func bearerFor(t *testing.T, username string, userID int64, role string) string {
	t.Helper()

	token, err := testJWT.IssueAccessToken(username, userID, role)

	if err != nil {
		t.Fatalf("failed to issue test token: %v", err)
	}

	return "Bearer " + token
}

// fake implementation of the handlers.TodoStore interface

type fakeTodosRepo struct {
	createFn  func(ctx context.Context, userID int64, req todo.CreateTodoRequest) (todo.Todo, error)
	listFn    func(ctx context.Context, userID int64) ([]todo.Todo, error)
	getFn     func(ctx context.Context, id, userID int64) (todo.Todo, error)
	updateFn  func(ctx context.Context, id, userID int64, req todo.UpdateTodoRequest) (todo.Todo, error)
	deleteFn  func(ctx context.Context, id, userID int64) error
	listAllFn func(ctx context.Context) ([]todo.Todo, error)
}

func (f *fakeTodosRepo) Create(ctx context.Context, userID int64, req todo.CreateTodoRequest) (todo.Todo, error) {
	if f.createFn != nil {
		return f.createFn(ctx, userID, req)
	}

	return todo.Todo{}, nil
}

func (f *fakeTodosRepo) ListForUser(ctx context.Context, userID int64) ([]todo.Todo, error) {
	if f.listFn != nil {
		return f.listFn(ctx, userID)
	}

	return nil, nil
}

func (f *fakeTodosRepo) GetByID(ctx context.Context, id, userID int64) (todo.Todo, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id, userID)
	}

	return todo.Todo{}, nil
}

func (f *fakeTodosRepo) Update(ctx context.Context, id, userID int64, req todo.UpdateTodoRequest) (todo.Todo, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, userID, req)
	}

	return todo.Todo{}, nil
}

func (f *fakeTodosRepo) Delete(ctx context.Context, id, userID int64) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id, userID)
	}

	return nil
}

func (f *fakeTodosRepo) ListAll(ctx context.Context) ([]todo.Todo, error) {
	if f.listAllFn != nil {
		return f.listAllFn(ctx)
	}

	return nil, nil
}

// mounts one handler behind the real auth middleware

func setupAuthedRouter(method, path string, h gin.HandlerFunc) *gin.Engine {
	r := gin.New()

	authMw := middlewares.NewAuthMiddleware(testJWT)
	r.Handle(method, path, authMw.RequireAuth(), h)

	return r
}

func TestCreateTodoHandler(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name           string
		body           string
		authHeader     string
		repoSetup      func(*fakeTodosRepo)
		wantStatusCode int
	}{
		{
			name: "success",
			body: `{"title": "buy milk", "description": "2 liters", "priority": 3, "complete": false}`,
			repoSetup: func(f *fakeTodosRepo) {
				f.createFn = func(ctx context.Context, userID int64, req todo.CreateTodoRequest) (todo.Todo, error) {
					if userID != 42 {
						return todo.Todo{}, errors.New("owner not taken from the token")
					}

					return todo.Todo{
						ID:          1,
						UserID:      userID,
						Title:       req.Title,
						Description: req.Description,
						Priority:    req.Priority,
						Complete:    req.Complete,
						CreatedAt:   now,
						UpdatedAt:   now,
					}, nil
				}
			},
			wantStatusCode: http.StatusCreated,
		},
		{
			name:           "priority_too_low",
			body:           `{"title": "x", "priority": 0}`,
			repoSetup:      nil, // repo must not be called
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "priority_too_high",
			body:           `{"title": "x", "priority": 6}`,
			repoSetup:      nil,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "missing_title",
			body:           `{"priority": 3}`,
			repoSetup:      nil,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "repo_error",
			body: `{"title": "buy milk", "priority": 3}`,
			repoSetup: func(f *fakeTodosRepo) {
				f.createFn = func(ctx context.Context, userID int64, req todo.CreateTodoRequest) (todo.Todo, error) {
					return todo.Todo{}, errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
		{
			name:           "no_token",
			body:           `{"title": "buy milk", "priority": 3}`,
			authHeader:     "none",
			wantStatusCode: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			fakeRepo := &fakeTodosRepo{}

			if tt.repoSetup != nil {
				tt.repoSetup(fakeRepo)
			}

			h := handlers.NewTodosHandler(fakeRepo)
			r := setupAuthedRouter(http.MethodPost, "/todos", h.CreateTodo)

			req := httptest.NewRequest(http.MethodPost, "/todos", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")

			if tt.authHeader == "" {
				req.Header.Set("Authorization", bearerFor(t, "alice", 42, "user"))
			}

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestListTodosHandler(t *testing.T) {
	now := time.Now().UTC()

	fakeRepo := &fakeTodosRepo{
		listFn: func(ctx context.Context, userID int64) ([]todo.Todo, error) {
			if userID != 42 {
				return nil, errors.New("listing not scoped to the caller")
			}

			return []todo.Todo{
				{ID: 1, UserID: 42, Title: "buy milk", Priority: 3, CreatedAt: now, UpdatedAt: now},
			}, nil
		},
	}

	h := handlers.NewTodosHandler(fakeRepo)
	r := setupAuthedRouter(http.MethodGet, "/todos", h.ListTodos)

	req := httptest.NewRequest(http.MethodGet, "/todos", nil)
	req.Header.Set("Authorization", bearerFor(t, "alice", 42, "user"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}

	if resp.Count != 1 {
		t.Fatalf("got count %d, want 1", resp.Count)
	}
}

func TestGetTodoByIDHandler(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name           string
		url            string
		repoSetup      func(*fakeTodosRepo)
		wantStatusCode int
	}{
		{
			name: "success",
			url:  "/todos/1",
			repoSetup: func(f *fakeTodosRepo) {
				f.getFn = func(ctx context.Context, id, userID int64) (todo.Todo, error) {
					return todo.Todo{ID: id, UserID: userID, Title: "buy milk", Priority: 3, CreatedAt: now, UpdatedAt: now}, nil
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			// a todo owned by someone else surfaces exactly like a missing one
			name: "not_found_or_foreign",
			url:  "/todos/99",
			repoSetup: func(f *fakeTodosRepo) {
				f.getFn = func(ctx context.Context, id, userID int64) (todo.Todo, error) {
					return todo.Todo{}, todo.ErrNotFound
				}
			},
			wantStatusCode: http.StatusNotFound,
		},
		{
			name:           "invalid_id",
			url:            "/todos/abc",
			repoSetup:      nil,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "repo_error",
			url:  "/todos/1",
			repoSetup: func(f *fakeTodosRepo) {
				f.getFn = func(ctx context.Context, id, userID int64) (todo.Todo, error) {
					return todo.Todo{}, errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			fakeRepo := &fakeTodosRepo{}

			if tt.repoSetup != nil {
				tt.repoSetup(fakeRepo)
			}

			h := handlers.NewTodosHandler(fakeRepo)
			r := setupAuthedRouter(http.MethodGet, "/todos/:id", h.GetTodoByID)

			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			req.Header.Set("Authorization", bearerFor(t, "alice", 42, "user"))

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestUpdateTodoHandler(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name           string
		url            string
		body           string
		repoSetup      func(*fakeTodosRepo)
		wantStatusCode int
	}{
		{
			name: "success",
			url:  "/todos/1",
			body: `{"title": "updated", "description": "new", "priority": 5, "complete": true}`,
			repoSetup: func(f *fakeTodosRepo) {
				f.updateFn = func(ctx context.Context, id, userID int64, req todo.UpdateTodoRequest) (todo.Todo, error) {
					return todo.Todo{
						ID:          id,
						UserID:      userID,
						Title:       req.Title,
						Description: req.Description,
						Priority:    req.Priority,
						Complete:    req.Complete,
						CreatedAt:   now.Add(-time.Hour),
						UpdatedAt:   now,
					}, nil
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "not_found",
			url:  "/todos/99",
			body: `{"title": "updated", "priority": 5}`,
			repoSetup: func(f *fakeTodosRepo) {
				f.updateFn = func(ctx context.Context, id, userID int64, req todo.UpdateTodoRequest) (todo.Todo, error) {
					return todo.Todo{}, todo.ErrNotFound
				}
			},
			wantStatusCode: http.StatusNotFound,
		},
		{
			name:           "validation_error",
			url:            "/todos/1",
			body:           `{"title": "updated", "priority": 9}`,
			repoSetup:      nil,
			wantStatusCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			fakeRepo := &fakeTodosRepo{}

			if tt.repoSetup != nil {
				tt.repoSetup(fakeRepo)
			}

			h := handlers.NewTodosHandler(fakeRepo)
			r := setupAuthedRouter(http.MethodPut, "/todos/:id", h.UpdateTodo)

			req := httptest.NewRequest(http.MethodPut, tt.url, bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", bearerFor(t, "alice", 42, "user"))

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestDeleteTodoHandler(t *testing.T) {
	tests := []struct {
		name           string
		url            string
		repoSetup      func(*fakeTodosRepo)
		wantStatusCode int
	}{
		{
			name: "success",
			url:  "/todos/1",
			repoSetup: func(f *fakeTodosRepo) {
				f.deleteFn = func(ctx context.Context, id, userID int64) error {
					return nil
				}
			},
			wantStatusCode: http.StatusNoContent,
		},
		{
			name: "not_found",
			url:  "/todos/99",
			repoSetup: func(f *fakeTodosRepo) {
				f.deleteFn = func(ctx context.Context, id, userID int64) error {
					return todo.ErrNotFound
				}
			},
			wantStatusCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			fakeRepo := &fakeTodosRepo{}

			if tt.repoSetup != nil {
				tt.repoSetup(fakeRepo)
			}

			h := handlers.NewTodosHandler(fakeRepo)
			r := setupAuthedRouter(http.MethodDelete, "/todos/:id", h.DeleteTodo)

			req := httptest.NewRequest(http.MethodDelete, tt.url, nil)
			req.Header.Set("Authorization", bearerFor(t, "alice", 42, "user"))

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/chocobaby727/taskhub/internal/domain/todo"
	"github.com/chocobaby727/taskhub/internal/repo/memory"
)

func mustCreate(t *testing.T, r *memory.TodosRepo, userID int64, title string) todo.Todo {
	t.Helper()

	created, err := r.Create(context.Background(), userID, todo.CreateTodoRequest{
		Title:       title,
		Description: "desc",
		Priority:    3,
		Complete:    false,
	})

	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	return created
}

func TestCreateThenGetRoundTrip(t *testing.T) {
	r := memory.NewTodosRepo()
	ctx := context.Background()

	created := mustCreate(t, r, 1, "buy milk")

	if created.ID == 0 {
		t.Fatalf("expected a fresh id")
	}

	if !created.CreatedAt.Equal(created.UpdatedAt) {
		t.Fatalf("created_at and updated_at should match on creation")
	}

	got, err := r.GetByID(ctx, created.ID, 1)

	if err != nil {
		t.Fatalf("get failed: %v", err)
	}

	if got != created {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, created)
	}
}

func TestOwnershipScoping(t *testing.T) {
	r := memory.NewTodosRepo()
	ctx := context.Background()

	aliceTodo := mustCreate(t, r, 1, "alice's todo")

	// another user sees nothing, on every operation
	if _, err := r.GetByID(ctx, aliceTodo.ID, 2); !errors.Is(err, todo.ErrNotFound) {
		t.Fatalf("get as other user: got %v, want ErrNotFound", err)
	}

	_, err := r.Update(ctx, aliceTodo.ID, 2, todo.UpdateTodoRequest{Title: "stolen", Priority: 1})
	if !errors.Is(err, todo.ErrNotFound) {
		t.Fatalf("update as other user: got %v, want ErrNotFound", err)
	}

	if err := r.Delete(ctx, aliceTodo.ID, 2); !errors.Is(err, todo.ErrNotFound) {
		t.Fatalf("delete as other user: got %v, want ErrNotFound", err)
	}

	// the owner's record is untouched
	got, err := r.GetByID(ctx, aliceTodo.ID, 1)

	if err != nil {
		t.Fatalf("owner get failed: %v", err)
	}

	if got.Title != "alice's todo" {
		t.Fatalf("record was mutated by a foreign user: %+v", got)
	}
}

func TestUpdateRefreshesTimestamp(t *testing.T) {
	r := memory.NewTodosRepo()
	ctx := context.Background()

	created := mustCreate(t, r, 1, "before")

	time.Sleep(5 * time.Millisecond)

	updated, err := r.Update(ctx, created.ID, 1, todo.UpdateTodoRequest{
		Title:       "after",
		Description: "new desc",
		Priority:    5,
		Complete:    true,
	})

	if err != nil {
		t.Fatalf("update failed: %v", err)
	}

	if updated.Title != "after" || updated.Priority != 5 || !updated.Complete {
		t.Fatalf("fields not overwritten: %+v", updated)
	}

	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("created_at must not change on update")
	}

	if !updated.UpdatedAt.After(created.UpdatedAt) {
		t.Fatalf("updated_at must advance on update")
	}
}

func TestDeleteIsTerminal(t *testing.T) {
	r := memory.NewTodosRepo()
	ctx := context.Background()

	created := mustCreate(t, r, 1, "short-lived")

	if err := r.Delete(ctx, created.ID, 1); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if _, err := r.GetByID(ctx, created.ID, 1); !errors.Is(err, todo.ErrNotFound) {
		t.Fatalf("get after delete: got %v, want ErrNotFound", err)
	}

	if _, err := r.Update(ctx, created.ID, 1, todo.UpdateTodoRequest{Title: "zombie", Priority: 1}); !errors.Is(err, todo.ErrNotFound) {
		t.Fatalf("update after delete: got %v, want ErrNotFound", err)
	}

	// repeated delete fails, it does not silently succeed
	if err := r.Delete(ctx, created.ID, 1); !errors.Is(err, todo.ErrNotFound) {
		t.Fatalf("second delete: got %v, want ErrNotFound", err)
	}
}

func TestListScopesAndOrders(t *testing.T) {
	r := memory.NewTodosRepo()
	ctx := context.Background()

	first := mustCreate(t, r, 1, "first")
	mustCreate(t, r, 2, "bob's")
	second := mustCreate(t, r, 1, "second")

	mine, err := r.ListForUser(ctx, 1)

	if err != nil {
		t.Fatalf("list failed: %v", err)
	}

	if len(mine) != 2 {
		t.Fatalf("got %d todos, want 2", len(mine))
	}

	if mine[0].ID != first.ID || mine[1].ID != second.ID {
		t.Fatalf("list not in creation order: %+v", mine)
	}

	all, err := r.ListAll(ctx)

	if err != nil {
		t.Fatalf("list all failed: %v", err)
	}

	if len(all) != 3 {
		t.Fatalf("got %d todos across users, want 3", len(all))
	}
}

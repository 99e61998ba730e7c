//go:build integration

package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/ahmetcoskunkizilkaya/family-todo/internal/repository"
	"github.com/ahmetcoskunkizilkaya/family-todo/internal/session"
	"github.com/ahmetcoskunkizilkaya/family-todo/internal/testutil"
	"github.com/google/uuid"
)

func as(u session.User) context.Context {
	return session.WithUser(context.Background(), u)
}

func TestListStoreOnlyOwnerChangesList(t *testing.T) {
	db := testutil.OpenPostgres(t)
	mum, dad := testutil.CreateUser(t, db), testutil.CreateUser(t, db)
	lists := repository.NewListStore(db)

	list, err := lists.Insert(as(mum), repository.NewList{Title: "  Groceries ", OwnerID: mum.ID})
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if list.Title != "Groceries" || list.OwnerID != mum.ID {
		t.Errorf("unexpected row %+v", list)
	}

	if _, err := lists.Insert(as(dad), repository.NewList{Title: "Chores", OwnerID: mum.ID}); !errors.Is(err, repository.ErrNotOwner) {
		t.Errorf("insert for someone else: expected ErrNotOwner, got %v", err)
	}
	if _, err := lists.Update(as(dad), list.ID, repository.ListPatch{Title: repository.Set("Mine now")}); !errors.Is(err, repository.ErrNotOwner) {
		t.Errorf("rename by non-owner: expected ErrNotOwner, got %v", err)
	}
	if err := lists.Delete(as(dad), list.ID); !errors.Is(err, repository.ErrNotOwner) {
		t.Errorf("delete by non-owner: expected ErrNotOwner, got %v", err)
	}

	// Every member reads every list.
	seen, err := lists.Select(as(dad), repository.ListFilter{IDs: []uuid.UUID{list.ID}})
	if err != nil || len(seen) != 1 {
		t.Fatalf("Select by member: %v, %+v", err, seen)
	}

	renamed, err := lists.Update(as(mum), list.ID, repository.ListPatch{Title: repository.Set(" Weekly shop ")})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if renamed == nil || renamed.Title != "Weekly shop" {
		t.Errorf("expected renamed row, got %+v", renamed)
	}

	if err := lists.Delete(as(mum), list.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	gone, err := lists.Update(as(mum), list.ID, repository.ListPatch{Title: repository.Set("Again")})
	if err != nil || gone != nil {
		t.Errorf("update of deleted list: expected (nil, nil), got (%+v, %v)", gone, err)
	}
}

func TestListStoreRequiresCaller(t *testing.T) {
	db := testutil.OpenPostgres(t)
	lists := repository.NewListStore(db)

	if _, err := lists.Select(context.Background(), repository.ListFilter{}); !errors.Is(err, repository.ErrUnauthenticated) {
		t.Errorf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestTaskStoreIsSharedAndRecordsAuthor(t *testing.T) {
	db := testutil.OpenPostgres(t)
	mum, dad := testutil.CreateUser(t, db), testutil.CreateUser(t, db)
	lists := repository.NewListStore(db)
	tasks := repository.NewTaskStore(db)

	list, err := lists.Insert(as(mum), repository.NewList{Title: "Groceries", OwnerID: mum.ID})
	if err != nil {
		t.Fatalf("Insert list: %v", err)
	}

	desc := "Two litres"
	task, err := tasks.Insert(as(dad), repository.NewTask{ListID: list.ID, Title: "Milk", Description: &desc})
	if err != nil {
		t.Fatalf("Insert task: %v", err)
	}
	if task.CreatedBy != dad.ID {
		t.Errorf("expected created_by %v, got %v", dad.ID, task.CreatedBy)
	}

	row, err := tasks.Update(as(mum), task.ID, repository.TaskPatch{
		Completed:   repository.Set(true),
		Description: repository.Set[*string](nil),
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if row == nil || !row.Completed || row.Description != nil {
		t.Errorf("expected completed task without description, got %+v", row)
	}

	if _, err := tasks.Update(as(mum), task.ID, repository.TaskPatch{Title: repository.Set("  ")}); !errors.Is(err, repository.ErrEmptyTitle) {
		t.Errorf("expected ErrEmptyTitle, got %v", err)
	}

	missing, err := tasks.Update(as(mum), uuid.New(), repository.TaskPatch{Completed: repository.Set(true)})
	if err != nil || missing != nil {
		t.Errorf("update of unknown task: expected (nil, nil), got (%+v, %v)", missing, err)
	}

	got, err := tasks.Select(as(mum), repository.TaskFilter{ListID: list.ID})
	if err != nil || len(got) != 1 || got[0].ID != task.ID {
		t.Errorf("Select: %v, %+v", err, got)
	}
}

// Package testutil provides in-memory fakes of the repositories for tests.
package testutil

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/ahmetcoskunkizilkaya/family-todo/internal/models"
	"github.com/ahmetcoskunkizilkaya/family-todo/internal/repository"
	"github.com/ahmetcoskunkizilkaya/family-todo/internal/session"
	"github.com/google/uuid"
)

var epoch = time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)

// clock hands out strictly increasing creation times.
type clock struct {
	mu sync.Mutex
	n  int
}

func (c *clock) next() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n++
	return epoch.Add(time.Duration(c.n) * time.Minute)
}

// Calls counts invocations per verb.
type Calls struct {
	Select int
	Insert int
	Update int
	Delete int
}

// FakeLists is an in-memory repository.ListRepository.
type FakeLists struct {
	mu    sync.Mutex
	clock clock
	lists []models.List
	Calls Calls

	// Error injection
	SelectErr error
	InsertErr error
	UpdateErr error
	DeleteErr error
}

func NewFakeLists() *FakeLists {
	return &FakeLists{}
}

// Seed adds a list directly, bypassing call counting.
func (f *FakeLists) Seed(ownerID uuid.UUID, title string) models.List {
	f.mu.Lock()
	defer f.mu.Unlock()
	l := models.List{ID: uuid.New(), OwnerID: ownerID, Title: title, CreatedAt: f.clock.next()}
	f.lists = append(f.lists, l)
	return l
}

func (f *FakeLists) All() []models.List {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.List, len(f.lists))
	copy(out, f.lists)
	return out
}

func (f *FakeLists) Select(ctx context.Context, filter repository.ListFilter) ([]models.List, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls.Select++
	if f.SelectErr != nil {
		return nil, f.SelectErr
	}

	out := make([]models.List, 0, len(f.lists))
	for _, l := range f.lists {
		if len(filter.IDs) > 0 && !containsID(filter.IDs, l.ID) {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

func (f *FakeLists) Insert(ctx context.Context, in repository.NewList) (*models.List, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls.Insert++
	if f.InsertErr != nil {
		return nil, f.InsertErr
	}
	if caller, ok := session.UserFrom(ctx); !ok || caller.ID != in.OwnerID {
		return nil, repository.ErrNotOwner
	}

	l := models.List{ID: uuid.New(), OwnerID: in.OwnerID, Title: strings.TrimSpace(in.Title), CreatedAt: f.clock.next()}
	f.lists = append(f.lists, l)
	return &l, nil
}

func (f *FakeLists) Update(ctx context.Context, id uuid.UUID, patch repository.ListPatch) (*models.List, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls.Update++
	if f.UpdateErr != nil {
		return nil, f.UpdateErr
	}

	for i := range f.lists {
		if f.lists[i].ID != id {
			continue
		}
		if patch.Title.Set {
			f.lists[i].Title = strings.TrimSpace(patch.Title.Value)
		}
		l := f.lists[i]
		return &l, nil
	}
	return nil, nil
}

func (f *FakeLists) Delete(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls.Delete++
	if f.DeleteErr != nil {
		return f.DeleteErr
	}

	for i, l := range f.lists {
		if l.ID == id {
			f.lists = append(f.lists[:i], f.lists[i+1:]...)
			return nil
		}
	}
	return nil
}

// FakeTasks is an in-memory repository.TaskRepository.
type FakeTasks struct {
	mu    sync.Mutex
	clock clock
	tasks []models.Task
	Calls Calls

	// LastPatch records the most recent Update patch.
	LastPatch repository.TaskPatch

	// UpdateReturnsNoRow makes Update apply the patch but return no row,
	// like an update whose response body came back empty.
	UpdateReturnsNoRow bool

	// Error injection
	SelectErr error
	InsertErr error
	UpdateErr error
	DeleteErr error
}

func NewFakeTasks() *FakeTasks {
	return &FakeTasks{}
}

func (f *FakeTasks) Seed(listID, createdBy uuid.UUID, title string) models.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := models.Task{ID: uuid.New(), ListID: listID, Title: title, CreatedBy: createdBy, CreatedAt: f.clock.next()}
	f.tasks = append(f.tasks, t)
	return t
}

// Get returns the stored task, as the backend sees it.
func (f *FakeTasks) Get(id uuid.UUID) (models.Task, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return models.Task{}, false
}

func (f *FakeTasks) Select(ctx context.Context, filter repository.TaskFilter) ([]models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls.Select++
	if f.SelectErr != nil {
		return nil, f.SelectErr
	}

	out := make([]models.Task, 0)
	for _, t := range f.tasks {
		if filter.ListID != uuid.Nil && t.ListID != filter.ListID {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (f *FakeTasks) Insert(ctx context.Context, in repository.NewTask) (*models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls.Insert++
	if f.InsertErr != nil {
		return nil, f.InsertErr
	}

	caller, _ := session.UserFrom(ctx)
	t := models.Task{
		ID:          uuid.New(),
		ListID:      in.ListID,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		DueDate:     in.DueDate,
		CreatedBy:   caller.ID,
		CreatedAt:   f.clock.next(),
	}
	f.tasks = append(f.tasks, t)
	return &t, nil
}

func (f *FakeTasks) Update(ctx context.Context, id uuid.UUID, patch repository.TaskPatch) (*models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls.Update++
	f.LastPatch = patch
	if f.UpdateErr != nil {
		return nil, f.UpdateErr
	}

	for i := range f.tasks {
		if f.tasks[i].ID != id {
			continue
		}
		t := &f.tasks[i]
		if patch.Title.Set {
			t.Title = strings.TrimSpace(patch.Title.Value)
		}
		if patch.Description.Set {
			t.Description = patch.Description.Value
		}
		if patch.Completed.Set {
			t.Completed = patch.Completed.Value
		}
		if patch.DueDate.Set {
			t.DueDate = patch.DueDate.Value
		}
		if f.UpdateReturnsNoRow {
			return nil, nil
		}
		row := *t
		return &row, nil
	}
	return nil, nil
}

func (f *FakeTasks) Delete(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls.Delete++
	if f.DeleteErr != nil {
		return f.DeleteErr
	}

	for i, t := range f.tasks {
		if t.ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return nil
}

// FakeProfiles is an in-memory repository.ProfileRepository.
type FakeProfiles struct {
	mu       sync.Mutex
	profiles map[uuid.UUID]models.Profile
	Calls    Calls

	// Requests records the IDs of every Select call.
	Requests [][]uuid.UUID

	SelectErr error
}

func NewFakeProfiles() *FakeProfiles {
	return &FakeProfiles{profiles: make(map[uuid.UUID]models.Profile)}
}

func (f *FakeProfiles) Add(id uuid.UUID, displayName string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := models.Profile{ID: id}
	if displayName != "" {
		p.DisplayName = &displayName
	}
	f.profiles[id] = p
}

func (f *FakeProfiles) Select(ctx context.Context, filter repository.ProfileFilter) ([]models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls.Select++
	ids := make([]uuid.UUID, len(filter.IDs))
	copy(ids, filter.IDs)
	f.Requests = append(f.Requests, ids)
	if f.SelectErr != nil {
		return nil, f.SelectErr
	}

	out := make([]models.Profile, 0, len(filter.IDs))
	for _, id := range filter.IDs {
		if p, ok := f.profiles[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

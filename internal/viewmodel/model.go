// Package viewmodel holds the per-session list and task state and keeps it in
// step with the repositories: every mutation is a remote call followed, on
// success only, by a local patch. Failures leave state untouched and queue a
// toast.
package viewmodel

import (
	"context"
	"strings"
	"sync"

	"github.com/ahmetcoskunkizilkaya/family-todo/internal/models"
	"github.com/ahmetcoskunkizilkaya/family-todo/internal/repository"
	"github.com/ahmetcoskunkizilkaya/family-todo/internal/session"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Repositories struct {
	Lists    repository.ListRepository
	Tasks    repository.TaskRepository
	Profiles repository.ProfileRepository
}

// TaskEdit carries the editable task fields. Nil clears a field.
type TaskEdit struct {
	Title       string
	Description *string
	DueDate     *datatypes.Date
}

// State is a copy of the model for rendering.
type State struct {
	Lists      []models.List
	SelectedID uuid.UUID
	Tasks      []models.Task
	Loaded     bool
}

// Selected returns the selected list, if any.
func (s State) Selected() (models.List, bool) {
	if s.SelectedID == uuid.Nil {
		return models.List{}, false
	}
	for _, l := range s.Lists {
		if l.ID == s.SelectedID {
			return l, true
		}
	}
	return models.List{}, false
}

// Model is safe for concurrent use; operations on one Model run one at a time.
type Model struct {
	mu       sync.Mutex
	repos    Repositories
	user     session.User
	lists    []models.List
	selected uuid.UUID
	tasks    []models.Task
	profiles map[uuid.UUID]models.Profile
	toasts   []Toast
	loaded   bool
}

func New(repos Repositories, user session.User) *Model {
	return &Model{
		repos:    repos,
		user:     user,
		profiles: make(map[uuid.UUID]models.Profile),
	}
}

func (m *Model) User() session.User {
	return m.user
}

func (m *Model) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := State{
		Lists:      make([]models.List, len(m.lists)),
		SelectedID: m.selected,
		Tasks:      make([]models.Task, len(m.tasks)),
		Loaded:     m.loaded,
	}
	copy(s.Lists, m.lists)
	copy(s.Tasks, m.tasks)
	return s
}

// Task returns the local copy of a task in the selected list.
func (m *Model) Task(id uuid.UUID) (models.Task, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i := m.taskIndex(id); i >= 0 {
		return m.tasks[i], true
	}
	return models.Task{}, false
}

// List returns the local copy of a list.
func (m *Model) List(id uuid.UUID) (models.List, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i := m.listIndex(id); i >= 0 {
		return m.lists[i], true
	}
	return models.List{}, false
}

// scope attaches the model's user to ctx so repositories see the caller.
func (m *Model) scope(ctx context.Context) context.Context {
	return session.WithUser(ctx, m.user)
}

func (m *Model) listIndex(id uuid.UUID) int {
	for i, l := range m.lists {
		if l.ID == id {
			return i
		}
	}
	return -1
}

func (m *Model) taskIndex(id uuid.UUID) int {
	for i, t := range m.tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

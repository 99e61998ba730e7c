package dialogs

import (
	"context"
	"strings"
	"sync"

	"github.com/ahmetcoskunkizilkaya/family-todo/internal/models"
	"github.com/ahmetcoskunkizilkaya/family-todo/internal/viewmodel"
	"github.com/google/uuid"
)

type TaskTarget struct {
	ID          uuid.UUID
	Title       string
	Description *string
	DueDate     string // YYYY-MM-DD or ""
}

// TargetFromTask builds an edit target from a task row.
func TargetFromTask(t models.Task) TaskTarget {
	return TaskTarget{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		DueDate:     t.DueDateString(),
	}
}

// EditTaskFunc persists the normalized task fields.
type EditTaskFunc func(ctx context.Context, id uuid.UUID, edit viewmodel.TaskEdit) error

type EditTask struct {
	mu          sync.Mutex
	open        bool
	target      *TaskTarget
	title       string
	description string
	due         string
	saving      bool
}

func NewEditTask() *EditTask {
	return &EditTask{}
}

func (d *EditTask) Open(target TaskTarget) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.open = true
	d.target = &target
	d.reseed()
}

func (d *EditTask) SetTarget(target *TaskTarget) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if target != nil {
		t := *target
		target = &t
	}
	d.target = target
	d.reseed()
}

func (d *EditTask) SetOpen(open bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !open && d.saving {
		return
	}
	d.open = open
	d.reseed()
}

func (d *EditTask) reseed() {
	d.title, d.description, d.due = "", "", ""
	if d.target == nil {
		return
	}
	d.title = d.target.Title
	if d.target.Description != nil {
		d.description = *d.target.Description
	}
	d.due = d.target.DueDate
}

// SetFields replaces the three controlled fields.
func (d *EditTask) SetFields(title, description, due string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.title, d.description, d.due = title, description, due
}

// Fields returns the current title, description and due date inputs.
func (d *EditTask) Fields() (title, description, due string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.title, d.description, d.due
}

func (d *EditTask) Target() (TaskTarget, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.target == nil {
		return TaskTarget{}, false
	}
	return *d.target, true
}

func (d *EditTask) IsOpen() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.open
}

func (d *EditTask) Saving() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.saving
}

func (d *EditTask) CanSave() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.canSave()
}

func (d *EditTask) canSave() bool {
	return d.target != nil && !d.saving && strings.TrimSpace(d.title) != ""
}

// Save normalizes the fields and calls fn: the title is trimmed, a blank
// description and an empty due date become nil. A malformed due date is
// returned as an error without calling fn.
func (d *EditTask) Save(ctx context.Context, fn EditTaskFunc) error {
	d.mu.Lock()
	if d.saving {
		d.mu.Unlock()
		return ErrSaveInFlight
	}
	if !d.canSave() {
		d.mu.Unlock()
		return nil
	}

	edit := viewmodel.TaskEdit{Title: strings.TrimSpace(d.title)}
	if strings.TrimSpace(d.description) != "" {
		desc := d.description
		edit.Description = &desc
	}
	due, err := models.ParseDueDate(d.due)
	if err != nil {
		d.mu.Unlock()
		return err
	}
	edit.DueDate = due

	d.saving = true
	id := d.target.ID
	d.mu.Unlock()

	err = fn(ctx, id, edit)

	d.mu.Lock()
	defer d.mu.Unlock()
	d.saving = false
	if err == nil {
		d.open = false
		if d.target != nil && d.target.ID == id {
			d.target.Title = edit.Title
			d.target.Description = edit.Description
			d.target.DueDate = models.FormatDueDate(edit.DueDate)
		}
		d.reseed()
	}
	return err
}

func (d *EditTask) KeyPress(ctx context.Context, key string, fn EditTaskFunc) error {
	if key != KeyEnter {
		return nil
	}
	return d.Save(ctx, fn)
}

func (d *EditTask) Cancel() {
	d.SetOpen(false)
}

package viewmodel

import (
	"context"
	"strings"

	"github.com/ahmetcoskunkizilkaya/family-todo/internal/models"
	"github.com/ahmetcoskunkizilkaya/family-todo/internal/repository"
	"github.com/google/uuid"
)

// LoadTasks replaces the local tasks with the tasks of listID, oldest first.
func (m *Model) LoadTasks(ctx context.Context, listID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if listID == uuid.Nil {
		m.tasks = nil
		return nil
	}
	return m.loadTasks(m.scope(ctx), listID)
}

// loadTasks expects m.mu held and ctx already scoped.
func (m *Model) loadTasks(ctx context.Context, listID uuid.UUID) error {
	tasks, err := m.repos.Tasks.Select(ctx, repository.TaskFilter{ListID: listID})
	if err != nil {
		return m.fail(ActionLoadTasks, err)
	}
	m.tasks = tasks

	authors := make([]uuid.UUID, 0, len(tasks))
	for _, t := range tasks {
		authors = append(authors, t.CreatedBy)
	}
	m.resolveProfiles(ctx, authors)
	return nil
}

func (m *Model) AddTask(ctx context.Context, title string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if blank(title) || m.selected == uuid.Nil {
		return nil
	}

	ctx = m.scope(ctx)
	task, err := m.repos.Tasks.Insert(ctx, repository.NewTask{
		ListID: m.selected,
		Title:  strings.TrimSpace(title),
	})
	if err != nil {
		return m.fail(ActionAddTask, err)
	}

	m.tasks = append(m.tasks, *task)
	m.resolveProfiles(ctx, []uuid.UUID{task.CreatedBy})
	return nil
}

// ToggleTask asks the backend to flip completion. The local row is replaced by
// the row the backend returns; only when no row comes back is the local flag
// flipped.
func (m *Model) ToggleTask(ctx context.Context, task models.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	row, err := m.repos.Tasks.Update(m.scope(ctx), task.ID, repository.TaskPatch{
		Completed: repository.Set(!task.Completed),
	})
	if err != nil {
		return m.fail(ActionToggleTask, err)
	}

	if i := m.taskIndex(task.ID); i >= 0 {
		if row != nil {
			m.tasks[i] = *row
		} else {
			m.tasks[i].Completed = !m.tasks[i].Completed
		}
	}
	return nil
}

func (m *Model) EditTask(ctx context.Context, id uuid.UUID, edit TaskEdit) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if blank(edit.Title) {
		return nil
	}

	edit.Title = strings.TrimSpace(edit.Title)
	row, err := m.repos.Tasks.Update(m.scope(ctx), id, repository.TaskPatch{
		Title:       repository.Set(edit.Title),
		Description: repository.Set(edit.Description),
		DueDate:     repository.Set(edit.DueDate),
	})
	if err != nil {
		return m.fail(ActionEditTask, err)
	}

	if i := m.taskIndex(id); i >= 0 {
		if row != nil {
			m.tasks[i] = *row
		} else {
			m.tasks[i].Title = edit.Title
			m.tasks[i].Description = edit.Description
			m.tasks[i].DueDate = edit.DueDate
		}
	}
	return nil
}

func (m *Model) DeleteTask(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.repos.Tasks.Delete(m.scope(ctx), id); err != nil {
		return m.fail(ActionDeleteTask, err)
	}

	if i := m.taskIndex(id); i >= 0 {
		m.tasks = append(m.tasks[:i], m.tasks[i+1:]...)
	}
	return nil
}

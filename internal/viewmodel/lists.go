package viewmodel

import (
	"context"
	"strings"

	"github.com/ahmetcoskunkizilkaya/family-todo/internal/models"
	"github.com/ahmetcoskunkizilkaya/family-todo/internal/repository"
	"github.com/google/uuid"
)

// LoadLists replaces the local lists with every visible list, oldest first,
// and reloads the tasks of the selected list. With nothing selected (or the
// selection gone) the first list is selected.
func (m *Model) LoadLists(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ctx = m.scope(ctx)
	lists, err := m.repos.Lists.Select(ctx, repository.ListFilter{})
	if err != nil {
		return m.fail(ActionLoadLists, err)
	}

	m.lists = lists
	m.loaded = true

	owners := make([]uuid.UUID, 0, len(lists))
	for _, l := range lists {
		owners = append(owners, l.OwnerID)
	}
	m.resolveProfiles(ctx, owners)

	if m.selected != uuid.Nil && m.listIndex(m.selected) >= 0 {
		return m.loadTasks(ctx, m.selected)
	}
	m.selected = uuid.Nil
	m.tasks = nil
	if len(lists) == 0 {
		return nil
	}
	if err := m.loadTasks(ctx, lists[0].ID); err != nil {
		return err
	}
	m.selected = lists[0].ID
	return nil
}

// SelectList changes the selection and loads its tasks. uuid.Nil clears the
// selection and the tasks.
func (m *Model) SelectList(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id != uuid.Nil && m.listIndex(id) < 0 {
		return nil
	}
	if id == uuid.Nil {
		m.selected = uuid.Nil
		m.tasks = nil
		return nil
	}
	// The selection only moves once its tasks have arrived.
	if err := m.loadTasks(m.scope(ctx), id); err != nil {
		return err
	}
	m.selected = id
	return nil
}

func (m *Model) AddList(ctx context.Context, title string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if blank(title) || m.user.ID == uuid.Nil {
		return nil
	}

	ctx = m.scope(ctx)
	list, err := m.repos.Lists.Insert(ctx, repository.NewList{
		Title:   strings.TrimSpace(title),
		OwnerID: m.user.ID,
	})
	if err != nil {
		return m.fail(ActionAddList, err)
	}

	m.lists = append(m.lists, *list)
	m.selected = list.ID
	m.tasks = nil
	m.resolveProfiles(ctx, []uuid.UUID{list.OwnerID})
	return nil
}

func (m *Model) DeleteList(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.repos.Lists.Delete(m.scope(ctx), id); err != nil {
		return m.fail(ActionDeleteList, err)
	}

	if i := m.listIndex(id); i >= 0 {
		m.lists = append(m.lists[:i], m.lists[i+1:]...)
	}
	if m.selected == id {
		m.selected = uuid.Nil
		m.tasks = nil
	}
	return nil
}

// RenameList patches the local title from the row the backend returns.
func (m *Model) RenameList(ctx context.Context, id uuid.UUID, title string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if blank(title) {
		return nil
	}

	title = strings.TrimSpace(title)
	row, err := m.repos.Lists.Update(m.scope(ctx), id, repository.ListPatch{
		Title: repository.Set(title),
	})
	if err != nil {
		return m.fail(ActionRenameList, err)
	}

	if i := m.listIndex(id); i >= 0 {
		if row != nil {
			m.lists[i] = mergeList(m.lists[i], *row)
		} else {
			m.lists[i].Title = title
		}
	}
	return nil
}

func mergeList(local, remote models.List) models.List {
	local.Title = remote.Title
	if !remote.CreatedAt.IsZero() {
		local.CreatedAt = remote.CreatedAt
	}
	return local
}

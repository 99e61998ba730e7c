package web

import (
	"github.com/ahmetcoskunkizilkaya/family-todo/internal/appstate"
	"github.com/ahmetcoskunkizilkaya/family-todo/internal/dialogs"
	"github.com/ahmetcoskunkizilkaya/family-todo/internal/models"
	"github.com/gofiber/fiber/v2"
)

type homeVM struct {
	pageVM
	Email    string
	Lists    []listVM
	Selected *listVM
	Tasks    []taskVM
	Rename   *renameVM
	Edit     *editVM
}

type listVM struct {
	ID        string
	Title     string
	Owner     string
	Selected  bool
	CanManage bool
}

type taskVM struct {
	ID          string
	Title       string
	Description string
	Completed   bool
	Due         string
	Author      string
}

type renameVM struct {
	ListID  string
	Title   string
	CanSave bool
}

type editVM struct {
	TaskID      string
	Title       string
	Description string
	Due         string
	CanSave     bool
}

func (s *Server) handleHome(c *fiber.Ctx) error {
	st := s.state(c)
	// Other family members change the same lists, so every page load
	// refetches. A failure is queued as a toast and rendered below.
	_ = st.Model.LoadLists(c.UserContext())
	return s.render(c, "index.html", s.homeVM(st))
}

func (s *Server) homeVM(st *appstate.Session) homeVM {
	m := st.Model
	snap := m.Snapshot()
	user := m.User()

	vm := homeVM{
		pageVM: pageVM{Title: mainTitle, Description: mainDescription},
		Email:  user.Email,
		Lists:  make([]listVM, 0, len(snap.Lists)),
		Tasks:  make([]taskVM, 0, len(snap.Tasks)),
	}

	for _, l := range snap.Lists {
		lvm := listVM{
			ID:        l.ID.String(),
			Title:     l.Title,
			Owner:     m.ProfileLabel(l.OwnerID),
			Selected:  l.ID == snap.SelectedID,
			CanManage: l.OwnerID == user.ID,
		}
		vm.Lists = append(vm.Lists, lvm)
		if lvm.Selected {
			sel := lvm
			vm.Selected = &sel
		}
	}

	for _, t := range snap.Tasks {
		tvm := taskVM{
			ID:        t.ID.String(),
			Title:     t.Title,
			Completed: t.Completed,
			Due:       t.DueDateString(),
			Author:    m.ProfileLabel(t.CreatedBy),
		}
		if t.Description != nil {
			tvm.Description = *t.Description
		}
		vm.Tasks = append(vm.Tasks, tvm)
	}

	vm.Rename = syncRename(st.Rename, snap.Lists)
	vm.Edit = syncEdit(st.EditTask, snap.Tasks)
	vm.Toasts = m.TakeToasts()
	return vm
}

// syncRename follows the dialog's target list: a vanished list closes the
// dialog, a list renamed elsewhere reseeds the field.
func syncRename(d *dialogs.Rename, lists []models.List) *renameVM {
	if !d.IsOpen() {
		return nil
	}
	target, ok := d.Target()
	if !ok {
		d.Cancel()
		return nil
	}

	var current *models.List
	for i := range lists {
		if lists[i].ID == target.ID {
			current = &lists[i]
			break
		}
	}
	if current == nil {
		if !d.Saving() {
			d.SetTarget(nil)
			d.Cancel()
		}
		return nil
	}
	if current.Title != target.Title && !d.Saving() {
		d.SetTarget(&dialogs.ListTarget{ID: current.ID, Title: current.Title})
	}

	return &renameVM{
		ListID:  target.ID.String(),
		Title:   d.Title(),
		CanSave: d.CanSave(),
	}
}

func syncEdit(d *dialogs.EditTask, tasks []models.Task) *editVM {
	if !d.IsOpen() {
		return nil
	}
	target, ok := d.Target()
	if !ok {
		d.Cancel()
		return nil
	}

	found := false
	for _, t := range tasks {
		if t.ID == target.ID {
			found = true
			break
		}
	}
	if !found {
		if !d.Saving() {
			d.SetTarget(nil)
			d.Cancel()
		}
		return nil
	}

	title, description, due := d.Fields()
	return &editVM{
		TaskID:      target.ID.String(),
		Title:       title,
		Description: description,
		Due:         due,
		CanSave:     d.CanSave(),
	}
}

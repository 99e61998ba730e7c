package web

import (
	"errors"

	"github.com/ahmetcoskunkizilkaya/family-todo/internal/appstate"
	"github.com/ahmetcoskunkizilkaya/family-todo/internal/dialogs"
	"github.com/ahmetcoskunkizilkaya/family-todo/internal/viewmodel"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/google/uuid"
)

// View-model failures queue their own toasts, so the handlers below ignore
// the returned errors and redirect home where the toasts are rendered.

func (s *Server) handleAddList(c *fiber.Ctx) error {
	_ = s.state(c).Model.AddList(c.UserContext(), formValue(c, "title"))
	return backHome(c)
}

func (s *Server) handleSelectList(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid list id")
	}
	_ = s.state(c).Model.SelectList(c.UserContext(), id)
	return backHome(c)
}

func (s *Server) handleDeleteList(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid list id")
	}
	_ = s.state(c).Model.DeleteList(c.UserContext(), id)
	return backHome(c)
}

func (s *Server) handleOpenRename(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid list id")
	}
	st := s.state(c)
	if l, ok := st.Model.List(id); ok {
		st.EditTask.Cancel()
		st.Rename.Open(dialogs.ListTarget{ID: l.ID, Title: l.Title})
	}
	return backHome(c)
}

func (s *Server) handleRenameList(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid list id")
	}
	st := s.state(c)

	if target, ok := st.Rename.Target(); !ok || target.ID != id || !st.Rename.IsOpen() {
		l, ok := st.Model.List(id)
		if !ok {
			return backHome(c)
		}
		st.Rename.Open(dialogs.ListTarget{ID: l.ID, Title: l.Title})
	}
	st.Rename.SetTitle(formValue(c, "title"))

	err = st.Rename.Save(c.UserContext(), st.Model.RenameList)
	notifyDialogError(st, viewmodel.ActionRenameList, err)
	return backHome(c)
}

func (s *Server) handleAddTask(c *fiber.Ctx) error {
	_ = s.state(c).Model.AddTask(c.UserContext(), formValue(c, "title"))
	return backHome(c)
}

func (s *Server) handleToggleTask(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid task id")
	}
	m := s.state(c).Model
	if task, ok := m.Task(id); ok {
		_ = m.ToggleTask(c.UserContext(), task)
	}
	return backHome(c)
}

func (s *Server) handleOpenEdit(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid task id")
	}
	st := s.state(c)
	if task, ok := st.Model.Task(id); ok {
		st.Rename.Cancel()
		st.EditTask.Open(dialogs.TargetFromTask(task))
	}
	return backHome(c)
}

func (s *Server) handleEditTask(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid task id")
	}
	st := s.state(c)

	if target, ok := st.EditTask.Target(); !ok || target.ID != id || !st.EditTask.IsOpen() {
		task, ok := st.Model.Task(id)
		if !ok {
			return backHome(c)
		}
		st.EditTask.Open(dialogs.TargetFromTask(task))
	}
	st.EditTask.SetFields(formValue(c, "title"), formValue(c, "description"), formValue(c, "due_date"))

	err = st.EditTask.Save(c.UserContext(), st.Model.EditTask)
	notifyDialogError(st, viewmodel.ActionEditTask, err)
	return backHome(c)
}

func (s *Server) handleDeleteTask(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid task id")
	}
	_ = s.state(c).Model.DeleteTask(c.UserContext(), id)
	return backHome(c)
}

func (s *Server) handleCloseDialogs(c *fiber.Ctx) error {
	st := s.state(c)
	st.Rename.Cancel()
	st.EditTask.Cancel()
	return backHome(c)
}

// notifyDialogError toasts dialog errors the view model did not already
// report, such as a malformed due date or a save already in flight.
func notifyDialogError(st *appstate.Session, action string, err error) {
	if err == nil {
		return
	}
	var actionErr *viewmodel.ActionError
	if errors.As(err, &actionErr) {
		return
	}
	st.Model.Notify(viewmodel.Toast{
		Title:       action,
		Description: err.Error(),
		Variant:     viewmodel.VariantDestructive,
	})
}

// formValue copies a form field out of the request buffer, which fasthttp
// reuses after the handler returns. Titles end up in long-lived session state.
func formValue(c *fiber.Ctx, key string) string {
	return utils.CopyString(c.FormValue(key))
}

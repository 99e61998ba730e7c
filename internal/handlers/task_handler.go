package handlers

import (
	"strings"

	"github.com/ahmetcoskunkizilkaya/family-todo/internal/dto"
	"github.com/ahmetcoskunkizilkaya/family-todo/internal/models"
	"github.com/ahmetcoskunkizilkaya/family-todo/internal/repository"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type TaskHandler struct {
	tasks repository.TaskRepository
}

func NewTaskHandler(tasks repository.TaskRepository) *TaskHandler {
	return &TaskHandler{tasks: tasks}
}

// List returns the tasks of ?list_id=, oldest first.
func (h *TaskHandler) List(c *fiber.Ctx) error {
	listID, err := uuid.Parse(c.Query("list_id"))
	if err != nil {
		return badRequest(c, "list_id is required")
	}

	tasks, err := h.tasks.Select(c.UserContext(), repository.TaskFilter{ListID: listID})
	if err != nil {
		return repoError(c, err, "list tasks")
	}

	resp := make([]dto.TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		resp = append(resp, dto.NewTaskResponse(t))
	}
	return c.JSON(resp)
}

func (h *TaskHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.ListID == uuid.Nil {
		return badRequest(c, "list_id is required")
	}
	if strings.TrimSpace(req.Title) == "" {
		return repoError(c, repository.ErrEmptyTitle, "create task")
	}

	var due *datatypes.Date
	if req.DueDate != nil {
		d, err := models.ParseDueDate(*req.DueDate)
		if err != nil {
			return badRequest(c, err.Error())
		}
		due = d
	}

	task, err := h.tasks.Insert(c.UserContext(), repository.NewTask{
		ListID:      req.ListID,
		Title:       req.Title,
		Description: blankToNil(req.Description),
		DueDate:     due,
	})
	if err != nil {
		return repoError(c, err, "create task")
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewTaskResponse(*task))
}

func (h *TaskHandler) Update(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid task id")
	}

	var req dto.UpdateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	var patch repository.TaskPatch
	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			return repoError(c, repository.ErrEmptyTitle, "update task")
		}
		patch.Title = repository.Set(*req.Title)
	}
	if req.Description.Present {
		patch.Description = repository.Set(blankToNil(req.Description.Value))
	}
	if req.Completed != nil {
		patch.Completed = repository.Set(*req.Completed)
	}
	if req.DueDate.Present {
		var due *datatypes.Date
		if req.DueDate.Value != nil {
			due, err = models.ParseDueDate(*req.DueDate.Value)
			if err != nil {
				return badRequest(c, err.Error())
			}
		}
		patch.DueDate = repository.Set(due)
	}

	task, err := h.tasks.Update(c.UserContext(), id, patch)
	if err != nil {
		return repoError(c, err, "update task")
	}
	if task == nil {
		return repoError(c, repository.ErrNotFound, "update task")
	}
	return c.JSON(dto.NewTaskResponse(*task))
}

func (h *TaskHandler) Delete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "Invalid task id")
	}

	if err := h.tasks.Delete(c.UserContext(), id); err != nil {
		return repoError(c, err, "delete task")
	}
	return c.JSON(dto.MessageResponse{Message: "Task deleted"})
}

func blankToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	return s
}

package viewmodel

import "fmt"

type Variant string

const (
	VariantDefault     Variant = "default"
	VariantDestructive Variant = "destructive"
)

// Toast is a transient, dismissible notification.
type Toast struct {
	Title       string
	Description string
	Variant     Variant
}

// Action titles shown when a remote call fails.
const (
	ActionLoadLists  = "Failed to load lists"
	ActionLoadTasks  = "Failed to load tasks"
	ActionAddList    = "Could not create list"
	ActionDeleteList = "Could not delete list"
	ActionRenameList = "Could not rename list"
	ActionAddTask    = "Could not add task"
	ActionToggleTask = "Could not update task"
	ActionEditTask   = "Could not save task"
	ActionDeleteTask = "Could not delete task"
)

// ActionError names the action that failed and wraps the backend error.
type ActionError struct {
	Action string
	Err    error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Action, e.Err)
}

func (e *ActionError) Unwrap() error {
	return e.Err
}

// fail queues a destructive toast for the failed action. Caller holds m.mu.
func (m *Model) fail(action string, err error) error {
	m.toasts = append(m.toasts, Toast{Title: action, Description: err.Error(), Variant: VariantDestructive})
	return &ActionError{Action: action, Err: err}
}

// Notify queues a toast from outside the model (e.g. "Welcome back!").
func (m *Model) Notify(t Toast) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.Variant == "" {
		t.Variant = VariantDefault
	}
	m.toasts = append(m.toasts, t)
}

// TakeToasts drains the pending notifications.
func (m *Model) TakeToasts() []Toast {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := m.toasts
	m.toasts = nil
	return out
}

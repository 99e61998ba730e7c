package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// DueDateLayout is the wire format of Task.DueDate.
const DueDateLayout = "2006-01-02"

type Task struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ListID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"list_id"`
	Title       string          `gorm:"size:500;not null" json:"title"`
	Description *string         `gorm:"type:text" json:"description"`
	Completed   bool            `gorm:"not null;default:false" json:"completed"`
	DueDate     *datatypes.Date `json:"due_date"`
	CreatedAt   time.Time       `gorm:"index" json:"created_at"`
	CreatedBy   uuid.UUID       `gorm:"type:uuid;index" json:"created_by"`
}

func (Task) TableName() string {
	return "tasks"
}

// DueDateString renders the due date as YYYY-MM-DD, or "" when unset.
func (t Task) DueDateString() string {
	return FormatDueDate(t.DueDate)
}

func FormatDueDate(d *datatypes.Date) string {
	if d == nil {
		return ""
	}
	return time.Time(*d).UTC().Format(DueDateLayout)
}

// ParseDueDate parses a YYYY-MM-DD string. Blank input yields nil.
func ParseDueDate(s string) (*datatypes.Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(DueDateLayout, s)
	if err != nil {
		return nil, fmt.Errorf("invalid due date %q: expected YYYY-MM-DD", s)
	}
	d := datatypes.Date(t)
	return &d, nil
}

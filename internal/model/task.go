package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in-progress"
	StatusDone       Status = "done"
)

// Task is a unit of work owned by a single user.
//
// Completed and Status always agree: Completed is true exactly when Status is
// StatusDone. Use SetCompleted and SetStatus to change either of them.
type Task struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	Title       string     `gorm:"not null" json:"title"`
	Completed   bool       `gorm:"not null;default:false" json:"completed"`
	Priority    Priority   `gorm:"not null;default:'medium'" json:"priority"`
	Status      Status     `gorm:"not null;default:'todo'" json:"status"`
	DueDate     *time.Time `json:"due_date"`
	CategoryID  *uuid.UUID `gorm:"type:uuid;index" json:"category_id"`
	Description *string    `json:"description"`
	Order       int        `gorm:"column:position;not null;default:0" json:"order"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// SetCompleted flips completion and keeps the status in step.
func (t *Task) SetCompleted(completed bool) {
	t.Completed = completed
	if completed {
		t.Status = StatusDone
	} else {
		t.Status = StatusTodo
	}
}

// SetStatus moves the task to status and keeps the completion flag in step.
func (t *Task) SetStatus(status Status) {
	t.Status = status
	t.Completed = status == StatusDone
}

// TaskPatch carries the changed fields of a task update. Nil fields are left
// untouched. ClearDueDate, ClearCategory and ClearDescription null the column.
type TaskPatch struct {
	Title            *string    `json:"title,omitempty"`
	Completed        *bool      `json:"completed,omitempty"`
	Priority         *Priority  `json:"priority,omitempty"`
	Status           *Status    `json:"status,omitempty"`
	DueDate          *time.Time `json:"due_date,omitempty"`
	ClearDueDate     bool       `json:"clear_due_date,omitempty"`
	CategoryID       *uuid.UUID `json:"category_id,omitempty"`
	ClearCategory    bool       `json:"clear_category,omitempty"`
	Description      *string    `json:"description,omitempty"`
	ClearDescription bool       `json:"clear_description,omitempty"`
	Order            *int       `json:"order,omitempty"`
}

// Normalize makes Completed and Status consistent with each other. When only
// one of the pair is set the other one is derived from it; when both are set
// Status wins.
func (p TaskPatch) Normalize() TaskPatch {
	switch {
	case p.Status != nil:
		done := *p.Status == StatusDone
		p.Completed = &done
	case p.Completed != nil:
		status := StatusTodo
		if *p.Completed {
			status = StatusDone
		}
		p.Status = &status
	}
	return p
}

// Apply merges the patch into t.
func (p TaskPatch) Apply(t *Task) {
	p = p.Normalize()
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Status != nil {
		t.SetStatus(*p.Status)
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.ClearDueDate {
		t.DueDate = nil
	} else if p.DueDate != nil {
		due := *p.DueDate
		t.DueDate = &due
	}
	if p.ClearCategory {
		t.CategoryID = nil
	} else if p.CategoryID != nil {
		id := *p.CategoryID
		t.CategoryID = &id
	}
	if p.ClearDescription {
		t.Description = nil
	} else if p.Description != nil {
		desc := *p.Description
		t.Description = &desc
	}
	if p.Order != nil {
		t.Order = *p.Order
	}
}

// Columns returns the column/value map used to persist the patch.
func (p TaskPatch) Columns() map[string]any {
	p = p.Normalize()
	cols := map[string]any{}
	if p.Title != nil {
		cols["title"] = *p.Title
	}
	if p.Completed != nil {
		cols["completed"] = *p.Completed
	}
	if p.Status != nil {
		cols["status"] = string(*p.Status)
	}
	if p.Priority != nil {
		cols["priority"] = string(*p.Priority)
	}
	if p.ClearDueDate {
		cols["due_date"] = nil
	} else if p.DueDate != nil {
		cols["due_date"] = *p.DueDate
	}
	if p.ClearCategory {
		cols["category_id"] = nil
	} else if p.CategoryID != nil {
		cols["category_id"] = *p.CategoryID
	}
	if p.ClearDescription {
		cols["description"] = nil
	} else if p.Description != nil {
		cols["description"] = *p.Description
	}
	if p.Order != nil {
		cols["position"] = *p.Order
	}
	return cols
}

// Empty reports whether the patch changes nothing.
func (p TaskPatch) Empty() bool {
	return len(p.Columns()) == 0
}

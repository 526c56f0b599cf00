package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Category labels tasks. Color is an opaque styling token.
type Category struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Name      string    `gorm:"not null" json:"name"`
	Color     string    `gorm:"not null" json:"color"`
	CreatedAt time.Time `json:"created_at"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// DefaultCategories is the set every user starts with.
var DefaultCategories = []Category{
	{Name: "Work", Color: "217 91% 60%"},
	{Name: "Personal", Color: "142 76% 36%"},
	{Name: "Shopping", Color: "25 95% 53%"},
	{Name: "Health", Color: "346 77% 50%"},
	{Name: "Learning", Color: "262 83% 58%"},
}

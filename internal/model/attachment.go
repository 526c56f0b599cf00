package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Attachment references a stored object bound to one task. ObjectPath is the
// durable location inside the bucket; links are signed on demand.
type Attachment struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	TaskID     uuid.UUID `gorm:"type:uuid;not null;index" json:"task_id"`
	FileName   string    `gorm:"not null" json:"file_name"`
	FileType   string    `gorm:"not null" json:"file_type"`
	ObjectPath string    `gorm:"not null" json:"object_path"`
	FileSize   *int64    `json:"file_size"`
	CreatedAt  time.Time `json:"created_at"`
}

func (a *Attachment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

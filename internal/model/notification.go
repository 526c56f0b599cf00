package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationListLimit caps how many notifications a session loads.
const NotificationListLimit = 50

const (
	NotificationTypeReminder = "reminder"

	ReminderNotificationTitle   = "Reminder"
	ReminderNotificationMessage = "You have a scheduled reminder"
)

// Notification is append-only apart from IsRead.
type Notification struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	TaskID    *uuid.UUID `gorm:"type:uuid;index" json:"task_id"`
	Title     string     `gorm:"not null" json:"title"`
	Message   *string    `json:"message"`
	Type      string     `gorm:"not null;default:'info'" json:"type"`
	IsRead    bool       `gorm:"not null;default:false" json:"is_read"`
	CreatedAt time.Time  `json:"created_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

// ReminderNotification builds the notification emitted when r fires.
func ReminderNotification(r Reminder) Notification {
	msg := ReminderNotificationMessage
	if r.Message != nil && *r.Message != "" {
		msg = *r.Message
	}
	taskID := r.TaskID
	return Notification{
		UserID:  r.UserID,
		TaskID:  &taskID,
		Title:   ReminderNotificationTitle,
		Message: &msg,
		Type:    NotificationTypeReminder,
	}
}

package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Reminder fires once at RemindAt. A triggered reminder is inert.
type Reminder struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	TaskID      uuid.UUID `gorm:"type:uuid;not null;index" json:"task_id"`
	RemindAt    time.Time `gorm:"not null;index" json:"remind_at"`
	Message     *string   `json:"message"`
	IsTriggered bool      `gorm:"not null;default:false" json:"is_triggered"`
	CreatedAt   time.Time `json:"created_at"`
}

func (r *Reminder) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// Due reports whether the reminder should fire at now.
func (r Reminder) Due(now time.Time) bool {
	return !r.IsTriggered && !r.RemindAt.After(now)
}

// Quick presets offered when scheduling a reminder.
const (
	Preset15Minutes = "15min"
	Preset30Minutes = "30min"
	Preset1Hour     = "1hour"
	Preset3Hours    = "3hours"
	PresetTomorrow  = "tomorrow"
)

// PresetTime resolves a quick preset relative to now. Tomorrow means 09:00
// local time on the next day.
func PresetTime(preset string, now time.Time) (time.Time, bool) {
	switch preset {
	case Preset15Minutes:
		return now.Add(15 * time.Minute), true
	case Preset30Minutes:
		return now.Add(30 * time.Minute), true
	case Preset1Hour:
		return now.Add(time.Hour), true
	case Preset3Hours:
		return now.Add(3 * time.Hour), true
	case PresetTomorrow:
		d := now.AddDate(0, 0, 1)
		return time.Date(d.Year(), d.Month(), d.Day(), 9, 0, 0, 0, now.Location()), true
	}
	return time.Time{}, false
}

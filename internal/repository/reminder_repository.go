package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"planner/internal/model"
)

type ReminderRepository struct {
	db *gorm.DB
}

func NewReminderRepository(db *gorm.DB) *ReminderRepository {
	return &ReminderRepository{db: db}
}

// List returns the user's reminders by fire time
func (r *ReminderRepository) List(ctx context.Context, userID uuid.UUID) ([]model.Reminder, error) {
	var reminders []model.Reminder
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("remind_at ASC").
		Find(&reminders).Error
	return reminders, err
}

// Create stores the reminder; the owning task must belong to the same user
func (r *ReminderRepository) Create(ctx context.Context, reminder *model.Reminder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&model.Task{}).
			Where("id = ? AND user_id = ?", reminder.TaskID, reminder.UserID).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrTaskNotFound
		}
		return tx.Create(reminder).Error
	})
}

// MarkTriggered flags the reminder as fired. Marking an already fired
// reminder is not an error.
func (r *ReminderRepository) MarkTriggered(ctx context.Context, userID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Model(&model.Reminder{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_triggered", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrReminderNotFound
	}
	return nil
}

func (r *ReminderRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&model.Reminder{}, "id = ? AND user_id = ?", id, userID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrReminderNotFound
	}
	return nil
}

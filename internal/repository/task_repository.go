package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"planner/internal/model"
)

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// List returns the user's tasks in manual sort order
func (r *TaskRepository) List(ctx context.Context, userID uuid.UUID) ([]model.Task, error) {
	var tasks []model.Task
	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("position ASC").
		Order("created_at ASC").
		Find(&tasks)
	if result.Error != nil {
		return nil, result.Error
	}
	return tasks, nil
}

// Create adds a new task; a referenced category must belong to the same user
func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if task.CategoryID != nil {
			if err := ownsCategory(tx, task.UserID, *task.CategoryID); err != nil {
				return err
			}
		}
		return tx.Create(task).Error
	})
}

// GetByID retrieves a task by its ID
func (r *TaskRepository) GetByID(ctx context.Context, userID, id uuid.UUID) (*model.Task, error) {
	var task model.Task
	result := r.db.WithContext(ctx).First(&task, "id = ? AND user_id = ?", id, userID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, result.Error
	}
	return &task, nil
}

// Update writes the changed columns and returns the stored row. A new
// category_id must name one of the user's categories.
func (r *TaskRepository) Update(ctx context.Context, userID, id uuid.UUID, columns map[string]any) (*model.Task, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if categoryID, ok := columns["category_id"].(uuid.UUID); ok {
			if err := ownsCategory(tx, userID, categoryID); err != nil {
				return err
			}
		}
		result := tx.Model(&model.Task{}).
			Where("id = ? AND user_id = ?", id, userID).
			Updates(columns)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrTaskNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, userID, id)
}

func ownsCategory(tx *gorm.DB, userID, categoryID uuid.UUID) error {
	var count int64
	if err := tx.Model(&model.Category{}).
		Where("id = ? AND user_id = ?", categoryID, userID).
		Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrCategoryNotFound
	}
	return nil
}

// UpdateOrder stores a single task's manual sort position
func (r *TaskRepository) UpdateOrder(ctx context.Context, userID, id uuid.UUID, order int) error {
	result := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("position", order)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// Delete removes a task together with its attachments and reminders.
// Notifications that point at the task keep existing without the reference.
// It returns the object paths of the removed attachments.
func (r *TaskRepository) Delete(ctx context.Context, userID, id uuid.UUID) ([]string, error) {
	var paths []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var task model.Task
		if err := tx.First(&task, "id = ? AND user_id = ?", id, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTaskNotFound
			}
			return err
		}

		if err := tx.Model(&model.Attachment{}).
			Where("task_id = ?", id).
			Pluck("object_path", &paths).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", id).Delete(&model.Attachment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("task_id = ?", id).Delete(&model.Reminder{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.Notification{}).
			Where("task_id = ?", id).
			Update("task_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Task{}, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}
	return paths, nil
}

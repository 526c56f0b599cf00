package repository

import "errors"

// Common repository errors
var (
	// ErrTaskNotFound is returned when a task is missing or owned by someone else
	ErrTaskNotFound = errors.New("task not found")

	// ErrCategoryNotFound is returned when a category is not found
	ErrCategoryNotFound = errors.New("category not found")

	ErrAttachmentNotFound   = errors.New("attachment not found")
	ErrReminderNotFound     = errors.New("reminder not found")
	ErrNotificationNotFound = errors.New("notification not found")
)

package syncer

import (
	"context"
	"io"

	"github.com/google/uuid"

	"planner/internal/model"
	"planner/internal/realtime"
)

// Remote is the persistence boundary of one signed-in user. Every call is
// scoped to UserID.
type Remote interface {
	UserID() uuid.UUID

	TaskRemote
	CategoryRemote
	AttachmentRemote
	ReminderRemote
	NotificationRemote
}

type TaskRemote interface {
	ListTasks(ctx context.Context) ([]model.Task, error)
	// CreateTask stores task, ignoring its ID, and returns the stored row.
	CreateTask(ctx context.Context, task model.Task) (model.Task, error)
	UpdateTask(ctx context.Context, id uuid.UUID, patch model.TaskPatch) (model.Task, error)
	UpdateTaskOrder(ctx context.Context, id uuid.UUID, order int) error
	DeleteTask(ctx context.Context, id uuid.UUID) error
}

type CategoryRemote interface {
	ListCategories(ctx context.Context) ([]model.Category, error)
	CreateCategories(ctx context.Context, categories []model.Category) ([]model.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
}

type AttachmentRemote interface {
	ListAttachments(ctx context.Context) ([]model.Attachment, error)
	UploadObject(ctx context.Context, path string, r io.Reader) (int64, error)
	DeleteObject(ctx context.Context, path string) error
	SignedURL(path string) (string, error)
	CreateAttachment(ctx context.Context, a model.Attachment) (model.Attachment, error)
	// DeleteAttachment removes the row and its stored object.
	DeleteAttachment(ctx context.Context, id uuid.UUID) error
}

type ReminderRemote interface {
	ListReminders(ctx context.Context) ([]model.Reminder, error)
	CreateReminder(ctx context.Context, r model.Reminder) (model.Reminder, error)
	MarkReminderTriggered(ctx context.Context, id uuid.UUID) error
	DeleteReminder(ctx context.Context, id uuid.UUID) error
}

type NotificationRemote interface {
	ListNotifications(ctx context.Context, limit int) ([]model.Notification, error)
	CreateNotification(ctx context.Context, n model.Notification) (model.Notification, error)
	MarkNotificationRead(ctx context.Context, id uuid.UUID) (model.Notification, error)
	MarkAllNotificationsRead(ctx context.Context) error
	DeleteNotification(ctx context.Context, id uuid.UUID) error
	DeleteAllNotifications(ctx context.Context) error
	// SubscribeNotifications streams notification row changes from the
	// moment it returns until the subscription is cancelled.
	SubscribeNotifications() *realtime.Subscription
}

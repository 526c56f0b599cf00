// Package backend puts the repositories, the object bucket and the realtime
// hub behind the per-user remote store interface used by sessions.
package backend

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"planner/internal/model"
	"planner/internal/objectstore"
	"planner/internal/realtime"
	"planner/internal/repository"
)

type Backend struct {
	tasks         *repository.TaskRepository
	categories    *repository.CategoryRepository
	attachments   *repository.AttachmentRepository
	reminders     *repository.ReminderRepository
	notifications *repository.NotificationRepository

	bucket    *objectstore.Bucket
	hub       *realtime.Hub
	signedTTL time.Duration
	logger    *slog.Logger
}

func New(db *gorm.DB, bucket *objectstore.Bucket, hub *realtime.Hub, signedTTL time.Duration, logger *slog.Logger) *Backend {
	if logger == nil {
		logger = slog.Default()
	}
	return &Backend{
		tasks:         repository.NewTaskRepository(db),
		categories:    repository.NewCategoryRepository(db),
		attachments:   repository.NewAttachmentRepository(db),
		reminders:     repository.NewReminderRepository(db),
		notifications: repository.NewNotificationRepository(db),
		bucket:        bucket,
		hub:           hub,
		signedTTL:     signedTTL,
		logger:        logger,
	}
}

// ForUser returns the remote store scoped to userID.
func (b *Backend) ForUser(userID uuid.UUID) *Client {
	return &Client{b: b, userID: userID}
}

// Client is one user's view of the backend. Every read and write is limited
// to rows owned by that user.
type Client struct {
	b      *Backend
	userID uuid.UUID
}

func (c *Client) UserID() uuid.UUID { return c.userID }

func (c *Client) ListTasks(ctx context.Context) ([]model.Task, error) {
	return c.b.tasks.List(ctx, c.userID)
}

func (c *Client) CreateTask(ctx context.Context, task model.Task) (model.Task, error) {
	task.ID = uuid.Nil
	task.UserID = c.userID
	task.CreatedAt, task.UpdatedAt = time.Time{}, time.Time{}
	if err := c.b.tasks.Create(ctx, &task); err != nil {
		return model.Task{}, err
	}
	return task, nil
}

func (c *Client) UpdateTask(ctx context.Context, id uuid.UUID, patch model.TaskPatch) (model.Task, error) {
	task, err := c.b.tasks.Update(ctx, c.userID, id, patch.Columns())
	if err != nil {
		return model.Task{}, err
	}
	return *task, nil
}

func (c *Client) UpdateTaskOrder(ctx context.Context, id uuid.UUID, order int) error {
	return c.b.tasks.UpdateOrder(ctx, c.userID, id, order)
}

// DeleteTask removes the task with its attachment and reminder rows, then
// the attachment objects.
func (c *Client) DeleteTask(ctx context.Context, id uuid.UUID) error {
	paths, err := c.b.tasks.Delete(ctx, c.userID, id)
	if err != nil {
		return err
	}
	for _, p := range paths {
		if err := c.b.bucket.Delete(ctx, p); err != nil {
			c.b.logger.Warn("orphaned attachment object", "path", p, "task_id", id, "error", err)
		}
	}
	return nil
}

func (c *Client) ListCategories(ctx context.Context) ([]model.Category, error) {
	return c.b.categories.List(ctx, c.userID)
}

func (c *Client) CreateCategories(ctx context.Context, categories []model.Category) ([]model.Category, error) {
	rows := make([]model.Category, len(categories))
	for i, cat := range categories {
		rows[i] = model.Category{UserID: c.userID, Name: cat.Name, Color: cat.Color}
	}
	if err := c.b.categories.CreateMany(ctx, rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *Client) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return c.b.categories.Delete(ctx, c.userID, id)
}

func (c *Client) ListAttachments(ctx context.Context) ([]model.Attachment, error) {
	return c.b.attachments.List(ctx, c.userID)
}

func (c *Client) UploadObject(ctx context.Context, path string, r io.Reader) (int64, error) {
	return c.b.bucket.Upload(ctx, path, r)
}

func (c *Client) DeleteObject(ctx context.Context, path string) error {
	return c.b.bucket.Delete(ctx, path)
}

func (c *Client) SignedURL(path string) (string, error) {
	return c.b.bucket.SignedURL(path, c.b.signedTTL)
}

func (c *Client) CreateAttachment(ctx context.Context, a model.Attachment) (model.Attachment, error) {
	a.ID = uuid.Nil
	a.UserID = c.userID
	if err := c.b.attachments.Create(ctx, &a); err != nil {
		return model.Attachment{}, err
	}
	return a, nil
}

func (c *Client) DeleteAttachment(ctx context.Context, id uuid.UUID) error {
	a, err := c.b.attachments.GetByID(ctx, c.userID, id)
	if err != nil {
		return err
	}
	if err := c.b.attachments.Delete(ctx, c.userID, id); err != nil {
		return err
	}
	if err := c.b.bucket.Delete(ctx, a.ObjectPath); err != nil {
		c.b.logger.Warn("orphaned attachment object", "path", a.ObjectPath, "error", err)
	}
	return nil
}

func (c *Client) ListReminders(ctx context.Context) ([]model.Reminder, error) {
	return c.b.reminders.List(ctx, c.userID)
}

func (c *Client) CreateReminder(ctx context.Context, r model.Reminder) (model.Reminder, error) {
	r.ID = uuid.Nil
	r.UserID = c.userID
	r.IsTriggered = false
	if err := c.b.reminders.Create(ctx, &r); err != nil {
		return model.Reminder{}, err
	}
	return r, nil
}

func (c *Client) MarkReminderTriggered(ctx context.Context, id uuid.UUID) error {
	return c.b.reminders.MarkTriggered(ctx, c.userID, id)
}

func (c *Client) DeleteReminder(ctx context.Context, id uuid.UUID) error {
	return c.b.reminders.Delete(ctx, c.userID, id)
}

func (c *Client) ListNotifications(ctx context.Context, limit int) ([]model.Notification, error) {
	return c.b.notifications.List(ctx, c.userID, limit)
}

// CreateNotification stores n and announces it on the realtime hub.
func (c *Client) CreateNotification(ctx context.Context, n model.Notification) (model.Notification, error) {
	n.ID = uuid.Nil
	n.UserID = c.userID
	if n.Type == "" {
		n.Type = "info"
	}
	if err := c.b.notifications.Create(ctx, &n); err != nil {
		return model.Notification{}, err
	}
	c.publish(realtime.EventInsert, n)
	return n, nil
}

func (c *Client) MarkNotificationRead(ctx context.Context, id uuid.UUID) (model.Notification, error) {
	n, err := c.b.notifications.MarkRead(ctx, c.userID, id)
	if err != nil {
		return model.Notification{}, err
	}
	c.publish(realtime.EventUpdate, *n)
	return *n, nil
}

func (c *Client) MarkAllNotificationsRead(ctx context.Context) error {
	return c.b.notifications.MarkAllRead(ctx, c.userID)
}

func (c *Client) DeleteNotification(ctx context.Context, id uuid.UUID) error {
	if err := c.b.notifications.Delete(ctx, c.userID, id); err != nil {
		return err
	}
	c.publish(realtime.EventDelete, model.Notification{ID: id, UserID: c.userID})
	return nil
}

func (c *Client) DeleteAllNotifications(ctx context.Context) error {
	return c.b.notifications.DeleteAll(ctx, c.userID)
}

func (c *Client) SubscribeNotifications() *realtime.Subscription {
	return c.b.hub.Subscribe(realtime.Filter{Table: realtime.TableNotifications, UserID: c.userID})
}

func (c *Client) publish(t realtime.EventType, n model.Notification) {
	c.b.hub.Publish(realtime.Event{
		Table:  realtime.TableNotifications,
		Type:   t,
		UserID: c.userID,
		Row:    n,
	})
}

// IsNotFound reports whether err means the row does not exist for the user.
func IsNotFound(err error) bool {
	for _, target := range []error{
		repository.ErrTaskNotFound,
		repository.ErrCategoryNotFound,
		repository.ErrAttachmentNotFound,
		repository.ErrReminderNotFound,
		repository.ErrNotificationNotFound,
		objectstore.ErrNotFound,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

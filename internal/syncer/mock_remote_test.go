package syncer_test

import (
	"context"
	"io"

	"planner/internal/model"
	"planner/internal/realtime"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockRemote struct {
	mock.Mock
	userID uuid.UUID
	hub    *realtime.Hub
}

func newMockRemote() *MockRemote {
	return &MockRemote{userID: uuid.New(), hub: realtime.NewHub(8)}
}

func (m *MockRemote) UserID() uuid.UUID { return m.userID }

func (m *MockRemote) ListTasks(ctx context.Context) ([]model.Task, error) {
	args := m.Called(ctx)
	tasks, _ := args.Get(0).([]model.Task)
	return tasks, args.Error(1)
}

func (m *MockRemote) CreateTask(ctx context.Context, task model.Task) (model.Task, error) {
	args := m.Called(ctx, task)
	if fn, ok := args.Get(0).(func(context.Context, model.Task) model.Task); ok {
		return fn(ctx, task), args.Error(1)
	}
	return args.Get(0).(model.Task), args.Error(1)
}

func (m *MockRemote) UpdateTask(ctx context.Context, id uuid.UUID, patch model.TaskPatch) (model.Task, error) {
	args := m.Called(ctx, id, patch)
	return args.Get(0).(model.Task), args.Error(1)
}

func (m *MockRemote) UpdateTaskOrder(ctx context.Context, id uuid.UUID, order int) error {
	return m.Called(ctx, id, order).Error(0)
}

func (m *MockRemote) DeleteTask(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRemote) ListCategories(ctx context.Context) ([]model.Category, error) {
	args := m.Called(ctx)
	categories, _ := args.Get(0).([]model.Category)
	return categories, args.Error(1)
}

func (m *MockRemote) CreateCategories(ctx context.Context, categories []model.Category) ([]model.Category, error) {
	args := m.Called(ctx, categories)
	if fn, ok := args.Get(0).(func(context.Context, []model.Category) []model.Category); ok {
		return fn(ctx, categories), args.Error(1)
	}
	created, _ := args.Get(0).([]model.Category)
	return created, args.Error(1)
}

func (m *MockRemote) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRemote) ListAttachments(ctx context.Context) ([]model.Attachment, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).([]model.Attachment)
	return list, args.Error(1)
}

func (m *MockRemote) UploadObject(ctx context.Context, path string, r io.Reader) (int64, error) {
	args := m.Called(ctx, path, r)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRemote) DeleteObject(ctx context.Context, path string) error {
	return m.Called(ctx, path).Error(0)
}

func (m *MockRemote) SignedURL(path string) (string, error) {
	args := m.Called(path)
	return args.String(0), args.Error(1)
}

func (m *MockRemote) CreateAttachment(ctx context.Context, a model.Attachment) (model.Attachment, error) {
	args := m.Called(ctx, a)
	if fn, ok := args.Get(0).(func(context.Context, model.Attachment) model.Attachment); ok {
		return fn(ctx, a), args.Error(1)
	}
	return args.Get(0).(model.Attachment), args.Error(1)
}

func (m *MockRemote) DeleteAttachment(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRemote) ListReminders(ctx context.Context) ([]model.Reminder, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).([]model.Reminder)
	return list, args.Error(1)
}

func (m *MockRemote) CreateReminder(ctx context.Context, r model.Reminder) (model.Reminder, error) {
	args := m.Called(ctx, r)
	if fn, ok := args.Get(0).(func(context.Context, model.Reminder) model.Reminder); ok {
		return fn(ctx, r), args.Error(1)
	}
	return args.Get(0).(model.Reminder), args.Error(1)
}

func (m *MockRemote) MarkReminderTriggered(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRemote) DeleteReminder(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRemote) ListNotifications(ctx context.Context, limit int) ([]model.Notification, error) {
	args := m.Called(ctx, limit)
	list, _ := args.Get(0).([]model.Notification)
	return list, args.Error(1)
}

func (m *MockRemote) CreateNotification(ctx context.Context, n model.Notification) (model.Notification, error) {
	args := m.Called(ctx, n)
	if fn, ok := args.Get(0).(func(context.Context, model.Notification) model.Notification); ok {
		return fn(ctx, n), args.Error(1)
	}
	return args.Get(0).(model.Notification), args.Error(1)
}

func (m *MockRemote) MarkNotificationRead(ctx context.Context, id uuid.UUID) (model.Notification, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Notification), args.Error(1)
}

func (m *MockRemote) MarkAllNotificationsRead(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockRemote) DeleteNotification(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRemote) DeleteAllNotifications(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockRemote) SubscribeNotifications() *realtime.Subscription {
	return m.hub.Subscribe(realtime.Filter{Table: realtime.TableNotifications, UserID: m.userID})
}

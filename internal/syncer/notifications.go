package syncer

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"planner/internal/model"
)

// MarkRead flags a notification read, restoring the previous flag if the
// remote write fails.
func (s *Syncer) MarkRead(ctx context.Context, id uuid.UUID) (model.Notification, error) {
	prev, err := s.store.SetNotificationRead(id, true)
	if err != nil {
		return model.Notification{}, err
	}
	n, err := Attempt(ctx, "mark notification read",
		func() func() {
			return func() { _, _ = s.store.SetNotificationRead(id, prev) }
		},
		func(ctx context.Context) (model.Notification, error) {
			return s.remote.MarkNotificationRead(ctx, id)
		},
		func(stored model.Notification) { _ = s.store.ApplyNotificationUpdated(stored) },
	)
	if err != nil {
		s.notify("mark notification read", "Failed to update notification", err)
		return model.Notification{}, err
	}
	return n, nil
}

func (s *Syncer) MarkAllRead(ctx context.Context) error {
	var flipped []uuid.UUID
	_, err := Attempt(ctx, "mark all notifications read",
		func() func() {
			flipped = s.store.MarkAllNotificationsRead()
			return func() {
				for _, id := range flipped {
					_, _ = s.store.SetNotificationRead(id, false)
				}
			}
		},
		func(ctx context.Context) (struct{}, error) {
			return struct{}{}, s.remote.MarkAllNotificationsRead(ctx)
		},
		nil,
	)
	if err != nil {
		s.notify("mark all notifications read", "Failed to update notifications", err)
		return err
	}
	return nil
}

func (s *Syncer) DeleteNotification(ctx context.Context, id uuid.UUID) error {
	if err := s.remote.DeleteNotification(ctx, id); err != nil {
		s.notify("delete notification", "Failed to delete notification", err)
		return fmt.Errorf("delete notification: %w", err)
	}
	// a realtime delete may have removed it already
	_ = s.store.ApplyNotificationRemoved(id)
	return nil
}

// ClearAll deletes every notification of the user.
func (s *Syncer) ClearAll(ctx context.Context) error {
	if err := s.remote.DeleteAllNotifications(ctx); err != nil {
		s.notify("clear notifications", "Failed to clear notifications", err)
		return fmt.Errorf("clear notifications: %w", err)
	}
	s.store.ReplaceNotifications(nil)
	return nil
}

// ReloadNotifications replaces the local notification list with the remote one.
func (s *Syncer) ReloadNotifications(ctx context.Context) error {
	list, err := s.remote.ListNotifications(ctx, model.NotificationListLimit)
	if err != nil {
		return fmt.Errorf("reload notifications: %w", err)
	}
	s.store.ReplaceNotifications(list)
	return nil
}

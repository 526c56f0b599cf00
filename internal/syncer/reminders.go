package syncer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"planner/internal/model"
	"planner/internal/state"
)

// ErrUnknownPreset is returned for a reminder preset name that is not known.
var ErrUnknownPreset = errors.New("unknown reminder preset")

func (s *Syncer) AddReminder(ctx context.Context, taskID uuid.UUID, at time.Time, message *string) (model.Reminder, error) {
	if err := model.ValidateReminderTime(at, s.now()); err != nil {
		return model.Reminder{}, err
	}
	if _, ok := s.store.Task(taskID); !ok {
		return model.Reminder{}, state.ErrTaskNotFound
	}

	reminder, err := Attempt(ctx, "add reminder", nil,
		func(ctx context.Context) (model.Reminder, error) {
			return s.remote.CreateReminder(ctx, model.Reminder{
				UserID:   s.remote.UserID(),
				TaskID:   taskID,
				RemindAt: at,
				Message:  message,
			})
		},
		s.store.ApplyReminderAdded,
	)
	if err != nil {
		s.notify("add reminder", "Failed to set reminder", err)
		return model.Reminder{}, err
	}
	return reminder, nil
}

// AddReminderPreset schedules a reminder from a quick preset such as "1hour".
func (s *Syncer) AddReminderPreset(ctx context.Context, taskID uuid.UUID, preset string, message *string) (model.Reminder, error) {
	at, ok := model.PresetTime(preset, s.now())
	if !ok {
		return model.Reminder{}, fmt.Errorf("%w: %q", ErrUnknownPreset, preset)
	}
	return s.AddReminder(ctx, taskID, at, message)
}

func (s *Syncer) DeleteReminder(ctx context.Context, id uuid.UUID) error {
	found := false
	for _, r := range s.store.Reminders() {
		if r.ID == id {
			found = true
			break
		}
	}
	if !found {
		return state.ErrReminderNotFound
	}
	if err := s.remote.DeleteReminder(ctx, id); err != nil {
		s.notify("delete reminder", "Failed to delete reminder", err)
		return fmt.Errorf("delete reminder: %w", err)
	}
	return s.store.ApplyReminderRemoved(id)
}

// FireReminder creates the reminder's notification and then marks it
// triggered. When the second write fails the reminder fires again on a
// later pass.
func (s *Syncer) FireReminder(ctx context.Context, r model.Reminder) error {
	n, err := s.remote.CreateNotification(ctx, model.ReminderNotification(r))
	if err != nil {
		return fmt.Errorf("create notification for reminder %s: %w", r.ID, err)
	}
	s.store.ApplyNotificationAdded(n)

	if err := s.remote.MarkReminderTriggered(ctx, r.ID); err != nil {
		return fmt.Errorf("mark reminder %s triggered: %w", r.ID, err)
	}
	r.IsTriggered = true
	s.store.ApplyReminderAdded(r)
	return nil
}

// DueReminders returns the loaded reminders that should fire at now.
func (s *Syncer) DueReminders(now time.Time) []model.Reminder {
	var due []model.Reminder
	for _, r := range s.store.Reminders() {
		if r.Due(now) {
			due = append(due, r)
		}
	}
	return due
}

// ReloadReminders replaces the local reminders with the remote ones.
func (s *Syncer) ReloadReminders(ctx context.Context) error {
	reminders, err := s.remote.ListReminders(ctx)
	if err != nil {
		return fmt.Errorf("reload reminders: %w", err)
	}
	s.store.ReplaceReminders(reminders)
	return nil
}

// Now is the clock the syncer validates times against.
func (s *Syncer) Now() time.Time { return s.now() }

// Package syncer bridges the local state store and the remote store. Writes
// are applied locally first where that is safe and reconciled by row id.
package syncer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"

	"planner/internal/model"
	"planner/internal/realtime"
	"planner/internal/state"
)

type Syncer struct {
	remote    Remote
	store     *state.Store
	notifier  Notifier
	logger    *slog.Logger
	now       func() time.Time
	maxUpload int64

	reorderMu sync.Mutex
}

type Option func(*Syncer)

func WithNotifier(n Notifier) Option {
	return func(s *Syncer) { s.notifier = n }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Syncer) { s.logger = l }
}

func WithClock(now func() time.Time) Option {
	return func(s *Syncer) { s.now = now }
}

// WithMaxUpload sets the attachment size limit in bytes.
func WithMaxUpload(limit int64) Option {
	return func(s *Syncer) { s.maxUpload = limit }
}

func New(remote Remote, store *state.Store, opts ...Option) *Syncer {
	s := &Syncer{
		remote:    remote,
		store:     store,
		logger:    slog.Default(),
		now:       time.Now,
		maxUpload: model.MaxAttachmentSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.notifier == nil {
		s.notifier = LogNotifier(s.logger)
	}
	return s
}

func (s *Syncer) Store() *state.Store { return s.store }

func (s *Syncer) notify(op, message string, err error) {
	s.notifier.Notify(Notice{Op: op, Message: message, Err: err})
}

// Load fetches every collection in parallel. A collection whose fetch fails
// stays empty; the failures are returned together.
func (s *Syncer) Load(ctx context.Context) error {
	var (
		mu   sync.Mutex
		errs *multierror.Error
	)
	record := func(what string, err error) {
		mu.Lock()
		errs = multierror.Append(errs, fmt.Errorf("load %s: %w", what, err))
		mu.Unlock()
	}

	var g errgroup.Group
	g.Go(func() error {
		tasks, err := s.remote.ListTasks(ctx)
		if err != nil {
			record("tasks", err)
			s.store.ReplaceTasks(nil)
			return nil
		}
		s.store.ReplaceTasks(tasks)
		return nil
	})
	g.Go(func() error {
		categories, err := s.loadCategories(ctx)
		if err != nil {
			record("categories", err)
			s.store.ReplaceCategories(nil)
			return nil
		}
		s.store.ReplaceCategories(categories)
		return nil
	})
	g.Go(func() error {
		attachments, err := s.remote.ListAttachments(ctx)
		if err != nil {
			record("attachments", err)
			s.store.ReplaceAllAttachments(nil)
			return nil
		}
		s.store.ReplaceAllAttachments(attachments)
		return nil
	})
	g.Go(func() error {
		reminders, err := s.remote.ListReminders(ctx)
		if err != nil {
			record("reminders", err)
			s.store.ReplaceReminders(nil)
			return nil
		}
		s.store.ReplaceReminders(reminders)
		return nil
	})
	g.Go(func() error {
		notifications, err := s.remote.ListNotifications(ctx, model.NotificationListLimit)
		if err != nil {
			record("notifications", err)
			s.store.ReplaceNotifications(nil)
			return nil
		}
		s.store.ReplaceNotifications(notifications)
		return nil
	})
	_ = g.Wait()

	if err := errs.ErrorOrNil(); err != nil {
		s.notify("load", "Failed to load your data", err)
		return err
	}
	return nil
}

// loadCategories creates the default set for a user who has none.
func (s *Syncer) loadCategories(ctx context.Context) ([]model.Category, error) {
	categories, err := s.remote.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	if len(categories) > 0 {
		return categories, nil
	}

	defaults := make([]model.Category, len(model.DefaultCategories))
	for i, c := range model.DefaultCategories {
		defaults[i] = model.Category{UserID: s.remote.UserID(), Name: c.Name, Color: c.Color}
	}
	return s.remote.CreateCategories(ctx, defaults)
}

// Listen merges notification changes from sub until ctx is done or the
// stream closes. Duplicate deliveries collapse by id. When the hub reports
// dropped events the notification list is reloaded. Listen does not cancel
// sub.
func (s *Syncer) Listen(ctx context.Context, sub *realtime.Subscription) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-sub.Lost():
			if err := s.ReloadNotifications(ctx); err != nil {
				s.logger.Warn("notification reload failed", "error", err)
			}
		case e, ok := <-sub.Events():
			if !ok {
				return
			}
			s.applyNotificationEvent(e)
		}
	}
}

func (s *Syncer) applyNotificationEvent(e realtime.Event) {
	n, ok := e.Row.(model.Notification)
	if !ok {
		s.logger.Warn("unexpected realtime row", "table", e.Table, "type", e.Type)
		return
	}
	switch e.Type {
	case realtime.EventInsert, realtime.EventUpdate:
		s.store.ApplyNotificationAdded(n)
	case realtime.EventDelete:
		// already gone locally when the delete came from this session
		_ = s.store.ApplyNotificationRemoved(n.ID)
	}
}

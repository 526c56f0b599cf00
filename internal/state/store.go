// Package state holds the in-memory mirror of one user's rows. Every apply
// method is synchronous and idempotent: applying the same row twice leaves a
// single copy, the last one written.
package state

import (
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"

	"planner/internal/model"
)

var (
	ErrTaskNotFound         = errors.New("task not in local state")
	ErrReminderNotFound     = errors.New("reminder not in local state")
	ErrNotificationNotFound = errors.New("notification not in local state")
	ErrAttachmentNotFound   = errors.New("attachment not in local state")
	ErrCategoryNotFound     = errors.New("category not in local state")
	ErrInvalidPermutation   = errors.New("reorder ids must list every task exactly once")
)

type Kind string

const (
	KindTasks         Kind = "tasks"
	KindCategories    Kind = "categories"
	KindAttachments   Kind = "attachments"
	KindReminders     Kind = "reminders"
	KindNotifications Kind = "notifications"
)

// Change is sent to subscribers after every mutation. ID is uuid.Nil when a
// whole collection was replaced.
type Change struct {
	Kind Kind
	ID   uuid.UUID
	// Added is true when a notification id was seen for the first time.
	Added bool
}

type Store struct {
	mu sync.RWMutex

	tasks    []model.Task
	versions map[uuid.UUID]uint64
	seq      uint64

	categories    []model.Category
	attachments   map[uuid.UUID][]model.Attachment
	reminders     []model.Reminder
	notifications []model.Notification

	subs    map[int]func(Change)
	nextSub int
}

func New() *Store {
	return &Store{
		versions:    make(map[uuid.UUID]uint64),
		attachments: make(map[uuid.UUID][]model.Attachment),
		subs:        make(map[int]func(Change)),
	}
}

// Subscribe registers fn to be called after each change. fn runs outside the
// store lock and may read from the store.
func (s *Store) Subscribe(fn func(Change)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Store) emit(changes ...Change) {
	s.mu.RLock()
	subs := make([]func(Change), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.RUnlock()

	for _, c := range changes {
		for _, fn := range subs {
			fn(c)
		}
	}
}

// Reset drops everything, used when the session ends.
func (s *Store) Reset() {
	s.mu.Lock()
	s.tasks = nil
	s.versions = make(map[uuid.UUID]uint64)
	s.categories = nil
	s.attachments = make(map[uuid.UUID][]model.Attachment)
	s.reminders = nil
	s.notifications = nil
	s.mu.Unlock()

	s.emit(
		Change{Kind: KindTasks},
		Change{Kind: KindCategories},
		Change{Kind: KindAttachments},
		Change{Kind: KindReminders},
		Change{Kind: KindNotifications},
	)
}

func (s *Store) bump(id uuid.UUID) uint64 {
	s.seq++
	s.versions[id] = s.seq
	return s.seq
}

func (s *Store) taskIndex(id uuid.UUID) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) sortTasks() {
	sort.SliceStable(s.tasks, func(i, j int) bool {
		if s.tasks[i].Order != s.tasks[j].Order {
			return s.tasks[i].Order < s.tasks[j].Order
		}
		return s.tasks[i].CreatedAt.Before(s.tasks[j].CreatedAt)
	})
}

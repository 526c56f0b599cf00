package state

import (
	"sort"

	"github.com/google/uuid"

	"planner/internal/model"
)

func (s *Store) Categories() []model.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Category(nil), s.categories...)
}

func (s *Store) ReplaceCategories(categories []model.Category) {
	s.mu.Lock()
	s.categories = append([]model.Category(nil), categories...)
	s.mu.Unlock()
	s.emit(Change{Kind: KindCategories})
}

func (s *Store) ApplyCategoryAdded(c model.Category) {
	s.mu.Lock()
	replaced := false
	for i := range s.categories {
		if s.categories[i].ID == c.ID {
			s.categories[i] = c
			replaced = true
			break
		}
	}
	if !replaced {
		s.categories = append(s.categories, c)
	}
	s.mu.Unlock()
	s.emit(Change{Kind: KindCategories, ID: c.ID})
}

// ApplyCategoryRemoved drops the category and detaches tasks that used it.
func (s *Store) ApplyCategoryRemoved(id uuid.UUID) error {
	s.mu.Lock()
	idx := -1
	for i := range s.categories {
		if s.categories[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return ErrCategoryNotFound
	}
	s.categories = append(s.categories[:idx], s.categories[idx+1:]...)
	touched := false
	for i := range s.tasks {
		if s.tasks[i].CategoryID != nil && *s.tasks[i].CategoryID == id {
			s.tasks[i].CategoryID = nil
			s.bump(s.tasks[i].ID)
			touched = true
		}
	}
	s.mu.Unlock()

	changes := []Change{{Kind: KindCategories, ID: id}}
	if touched {
		changes = append(changes, Change{Kind: KindTasks})
	}
	s.emit(changes...)
	return nil
}

// Attachments returns the attachments of a task, newest first.
func (s *Store) Attachments(taskID uuid.UUID) []model.Attachment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Attachment(nil), s.attachments[taskID]...)
}

func (s *Store) Attachment(id uuid.UUID) (model.Attachment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, list := range s.attachments {
		for _, a := range list {
			if a.ID == id {
				return a, true
			}
		}
	}
	return model.Attachment{}, false
}

// ReplaceAttachments sets the attachment list of one task.
func (s *Store) ReplaceAttachments(taskID uuid.UUID, list []model.Attachment) {
	s.mu.Lock()
	list = append([]model.Attachment(nil), list...)
	sortNewestFirst(list)
	s.attachments[taskID] = list
	s.mu.Unlock()
	s.emit(Change{Kind: KindAttachments, ID: taskID})
}

// ReplaceAllAttachments regroups a flat attachment list by task.
func (s *Store) ReplaceAllAttachments(list []model.Attachment) {
	s.mu.Lock()
	s.attachments = make(map[uuid.UUID][]model.Attachment)
	for _, a := range list {
		s.attachments[a.TaskID] = append(s.attachments[a.TaskID], a)
	}
	for _, group := range s.attachments {
		sortNewestFirst(group)
	}
	s.mu.Unlock()
	s.emit(Change{Kind: KindAttachments})
}

func (s *Store) ApplyAttachmentAdded(a model.Attachment) {
	s.mu.Lock()
	list := s.attachments[a.TaskID]
	replaced := false
	for i := range list {
		if list[i].ID == a.ID {
			list[i] = a
			replaced = true
			break
		}
	}
	if !replaced {
		list = append(list, a)
	}
	sortNewestFirst(list)
	s.attachments[a.TaskID] = list
	s.mu.Unlock()
	s.emit(Change{Kind: KindAttachments, ID: a.TaskID})
}

func (s *Store) ApplyAttachmentRemoved(id uuid.UUID) error {
	s.mu.Lock()
	for taskID, list := range s.attachments {
		for i := range list {
			if list[i].ID == id {
				s.attachments[taskID] = append(list[:i], list[i+1:]...)
				s.mu.Unlock()
				s.emit(Change{Kind: KindAttachments, ID: taskID})
				return nil
			}
		}
	}
	s.mu.Unlock()
	return ErrAttachmentNotFound
}

func sortNewestFirst(list []model.Attachment) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
}

// Reminders returns all reminders ordered by remind time.
func (s *Store) Reminders() []model.Reminder {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Reminder(nil), s.reminders...)
}

func (s *Store) ReplaceReminders(list []model.Reminder) {
	s.mu.Lock()
	s.reminders = append([]model.Reminder(nil), list...)
	s.sortReminders()
	s.mu.Unlock()
	s.emit(Change{Kind: KindReminders})
}

// ApplyReminderAdded inserts or overwrites a reminder by id.
func (s *Store) ApplyReminderAdded(r model.Reminder) {
	s.mu.Lock()
	replaced := false
	for i := range s.reminders {
		if s.reminders[i].ID == r.ID {
			s.reminders[i] = r
			replaced = true
			break
		}
	}
	if !replaced {
		s.reminders = append(s.reminders, r)
	}
	s.sortReminders()
	s.mu.Unlock()
	s.emit(Change{Kind: KindReminders, ID: r.ID})
}

func (s *Store) ApplyReminderRemoved(id uuid.UUID) error {
	s.mu.Lock()
	for i := range s.reminders {
		if s.reminders[i].ID == id {
			s.reminders = append(s.reminders[:i], s.reminders[i+1:]...)
			s.mu.Unlock()
			s.emit(Change{Kind: KindReminders, ID: id})
			return nil
		}
	}
	s.mu.Unlock()
	return ErrReminderNotFound
}

func (s *Store) sortReminders() {
	sort.SliceStable(s.reminders, func(i, j int) bool {
		return s.reminders[i].RemindAt.Before(s.reminders[j].RemindAt)
	})
}

// Notifications returns the notifications, newest first.
func (s *Store) Notifications() []model.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Notification(nil), s.notifications...)
}

func (s *Store) Notification(id uuid.UUID) (model.Notification, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, n := range s.notifications {
		if n.ID == id {
			return n, true
		}
	}
	return model.Notification{}, false
}

// UnreadCount is the number of unread notifications held locally.
func (s *Store) UnreadCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, x := range s.notifications {
		if !x.IsRead {
			n++
		}
	}
	return n
}

func (s *Store) ReplaceNotifications(list []model.Notification) {
	s.mu.Lock()
	s.notifications = append([]model.Notification(nil), list...)
	s.sortNotifications()
	s.mu.Unlock()
	s.emit(Change{Kind: KindNotifications})
}

// ApplyNotificationAdded inserts n unless its id is already present, in
// which case the row is overwritten. It reports whether n was new.
func (s *Store) ApplyNotificationAdded(n model.Notification) bool {
	s.mu.Lock()
	for i := range s.notifications {
		if s.notifications[i].ID == n.ID {
			s.notifications[i] = n
			s.mu.Unlock()
			s.emit(Change{Kind: KindNotifications, ID: n.ID})
			return false
		}
	}
	s.notifications = append(s.notifications, n)
	s.sortNotifications()
	s.mu.Unlock()
	s.emit(Change{Kind: KindNotifications, ID: n.ID, Added: true})
	return true
}

// ApplyNotificationUpdated overwrites an existing notification.
func (s *Store) ApplyNotificationUpdated(n model.Notification) error {
	s.mu.Lock()
	for i := range s.notifications {
		if s.notifications[i].ID == n.ID {
			s.notifications[i] = n
			s.mu.Unlock()
			s.emit(Change{Kind: KindNotifications, ID: n.ID})
			return nil
		}
	}
	s.mu.Unlock()
	return ErrNotificationNotFound
}

// SetNotificationRead flips the read flag and returns the previous value.
func (s *Store) SetNotificationRead(id uuid.UUID, read bool) (bool, error) {
	s.mu.Lock()
	for i := range s.notifications {
		if s.notifications[i].ID == id {
			prev := s.notifications[i].IsRead
			s.notifications[i].IsRead = read
			s.mu.Unlock()
			s.emit(Change{Kind: KindNotifications, ID: id})
			return prev, nil
		}
	}
	s.mu.Unlock()
	return false, ErrNotificationNotFound
}

// MarkAllNotificationsRead returns the ids that were unread before.
func (s *Store) MarkAllNotificationsRead() []uuid.UUID {
	s.mu.Lock()
	var ids []uuid.UUID
	for i := range s.notifications {
		if !s.notifications[i].IsRead {
			s.notifications[i].IsRead = true
			ids = append(ids, s.notifications[i].ID)
		}
	}
	s.mu.Unlock()
	if len(ids) > 0 {
		s.emit(Change{Kind: KindNotifications})
	}
	return ids
}

func (s *Store) ApplyNotificationRemoved(id uuid.UUID) error {
	s.mu.Lock()
	for i := range s.notifications {
		if s.notifications[i].ID == id {
			s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
			s.mu.Unlock()
			s.emit(Change{Kind: KindNotifications, ID: id})
			return nil
		}
	}
	s.mu.Unlock()
	return ErrNotificationNotFound
}

func (s *Store) sortNotifications() {
	sort.SliceStable(s.notifications, func(i, j int) bool {
		return s.notifications[i].CreatedAt.After(s.notifications[j].CreatedAt)
	})
}

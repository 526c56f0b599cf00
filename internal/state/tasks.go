package state

import (
	"github.com/google/uuid"

	"planner/internal/model"
)

// Tasks returns a copy of the tasks in manual sort order.
func (s *Store) Tasks() []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Task(nil), s.tasks...)
}

func (s *Store) Task(id uuid.UUID) (model.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.taskIndex(id); i >= 0 {
		return s.tasks[i], true
	}
	return model.Task{}, false
}

// TaskVersion returns the local version of a task, 0 when absent. The
// version changes on every local mutation of the row.
func (s *Store) TaskVersion(id uuid.UUID) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.versions[id]
}

// NextTopOrder returns an order value that sorts before every current task.
func (s *Store) NextTopOrder() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.tasks) == 0 {
		return 0
	}
	min := s.tasks[0].Order
	for _, t := range s.tasks[1:] {
		if t.Order < min {
			min = t.Order
		}
	}
	return min - 1
}

// ReplaceTasks swaps in the authoritative task list. Every version moves
// forward so confirmations of earlier mutations are dropped.
func (s *Store) ReplaceTasks(tasks []model.Task) {
	s.mu.Lock()
	s.tasks = append([]model.Task(nil), tasks...)
	s.versions = make(map[uuid.UUID]uint64, len(tasks))
	for _, t := range s.tasks {
		s.bump(t.ID)
	}
	s.sortTasks()
	s.mu.Unlock()

	s.emit(Change{Kind: KindTasks})
}

// ApplyTaskAdded inserts task or overwrites the row with the same id.
func (s *Store) ApplyTaskAdded(task model.Task) uint64 {
	s.mu.Lock()
	if i := s.taskIndex(task.ID); i >= 0 {
		s.tasks[i] = task
	} else {
		s.tasks = append(s.tasks, task)
	}
	s.sortTasks()
	v := s.bump(task.ID)
	s.mu.Unlock()

	s.emit(Change{Kind: KindTasks, ID: task.ID})
	return v
}

// ApplyTaskUpdated merges patch into the task and returns the prior row and
// the new version.
func (s *Store) ApplyTaskUpdated(id uuid.UUID, patch model.TaskPatch) (model.Task, uint64, error) {
	s.mu.Lock()
	i := s.taskIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return model.Task{}, 0, ErrTaskNotFound
	}
	prior := s.tasks[i]
	patch.Apply(&s.tasks[i])
	if patch.Order != nil {
		s.sortTasks()
	}
	v := s.bump(id)
	s.mu.Unlock()

	s.emit(Change{Kind: KindTasks, ID: id})
	return prior, v, nil
}

// ApplyTaskRemoved drops the task with its attachments and reminders.
func (s *Store) ApplyTaskRemoved(id uuid.UUID) error {
	s.mu.Lock()
	i := s.taskIndex(id)
	if i < 0 {
		s.mu.Unlock()
		return ErrTaskNotFound
	}
	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	delete(s.versions, id)
	delete(s.attachments, id)
	kept := s.reminders[:0]
	for _, r := range s.reminders {
		if r.TaskID != id {
			kept = append(kept, r)
		}
	}
	s.reminders = kept
	for i := range s.notifications {
		if s.notifications[i].TaskID != nil && *s.notifications[i].TaskID == id {
			s.notifications[i].TaskID = nil
		}
	}
	s.mu.Unlock()

	s.emit(
		Change{Kind: KindTasks, ID: id},
		Change{Kind: KindAttachments, ID: id},
		Change{Kind: KindReminders, ID: id},
	)
	return nil
}

// ConfirmTask merges the server copy of a task when no local mutation
// happened after basedOn. It reports whether the row was merged.
func (s *Store) ConfirmTask(task model.Task, basedOn uint64) bool {
	s.mu.Lock()
	i := s.taskIndex(task.ID)
	if i < 0 || s.versions[task.ID] != basedOn {
		s.mu.Unlock()
		return false
	}
	s.tasks[i] = task
	s.sortTasks()
	s.mu.Unlock()

	s.emit(Change{Kind: KindTasks, ID: task.ID})
	return true
}

// ConfirmCreated replaces the provisional row with the stored one, which
// carries the server id and timestamps. It returns false when the
// provisional row is gone.
func (s *Store) ConfirmCreated(provisionalID uuid.UUID, task model.Task) bool {
	s.mu.Lock()
	i := s.taskIndex(provisionalID)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	delete(s.versions, provisionalID)
	if j := s.taskIndex(task.ID); j >= 0 {
		// the row already arrived through another path
		s.tasks[j] = task
		s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	} else {
		s.tasks[i] = task
	}
	s.sortTasks()
	s.bump(task.ID)
	s.mu.Unlock()

	s.emit(Change{Kind: KindTasks, ID: task.ID})
	return true
}

// RevertTask restores prior when the row is still at version basedOn.
func (s *Store) RevertTask(prior model.Task, basedOn uint64) bool {
	s.mu.Lock()
	i := s.taskIndex(prior.ID)
	if i < 0 || s.versions[prior.ID] != basedOn {
		s.mu.Unlock()
		return false
	}
	s.tasks[i] = prior
	s.sortTasks()
	s.bump(prior.ID)
	s.mu.Unlock()

	s.emit(Change{Kind: KindTasks, ID: prior.ID})
	return true
}

// ApplyReorder assigns order 0..N-1 following ids, which must be a
// permutation of all task ids.
func (s *Store) ApplyReorder(ids []uuid.UUID) error {
	s.mu.Lock()
	if len(ids) != len(s.tasks) {
		s.mu.Unlock()
		return ErrInvalidPermutation
	}
	pos := make(map[uuid.UUID]int, len(ids))
	for i, id := range ids {
		if _, dup := pos[id]; dup {
			s.mu.Unlock()
			return ErrInvalidPermutation
		}
		pos[id] = i
	}
	for _, t := range s.tasks {
		if _, ok := pos[t.ID]; !ok {
			s.mu.Unlock()
			return ErrInvalidPermutation
		}
	}
	for i := range s.tasks {
		s.tasks[i].Order = pos[s.tasks[i].ID]
		s.bump(s.tasks[i].ID)
	}
	s.sortTasks()
	s.mu.Unlock()

	s.emit(Change{Kind: KindTasks})
	return nil
}

// MovePermutation returns the task ids with activeID moved to the index of
// overID. ok is false when either id is unknown or both are the same.
func (s *Store) MovePermutation(activeID, overID uuid.UUID) (ids []uuid.UUID, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	from, to := s.taskIndex(activeID), s.taskIndex(overID)
	if from < 0 || to < 0 || from == to {
		return nil, false
	}
	ids = make([]uuid.UUID, 0, len(s.tasks))
	for _, t := range s.tasks {
		if t.ID != activeID {
			ids = append(ids, t.ID)
		}
	}
	ids = append(ids[:to], append([]uuid.UUID{activeID}, ids[to:]...)...)
	return ids, true
}

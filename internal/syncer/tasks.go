package syncer

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"planner/internal/model"
	"planner/internal/state"
)

// CreateTask inserts a provisional row on top of the list and swaps it for
// the stored row once the remote store confirms.
func (s *Syncer) CreateTask(ctx context.Context, in model.NewTask) (model.Task, error) {
	if err := in.Validate(); err != nil {
		return model.Task{}, err
	}
	if in.CategoryID != nil && !s.knownCategory(*in.CategoryID) {
		return model.Task{}, model.ErrUnknownCategory
	}

	now := s.now()
	provisional := model.Task{
		ID:          uuid.New(),
		UserID:      s.remote.UserID(),
		Title:       in.Title,
		Priority:    in.Priority,
		Status:      model.StatusTodo,
		DueDate:     in.DueDate,
		CategoryID:  in.CategoryID,
		Description: in.Description,
		Order:       s.store.NextTopOrder(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	task, err := Attempt(ctx, "create task",
		func() func() {
			s.store.ApplyTaskAdded(provisional)
			return func() { _ = s.store.ApplyTaskRemoved(provisional.ID) }
		},
		func(ctx context.Context) (model.Task, error) {
			draft := provisional
			draft.ID = uuid.Nil
			return s.remote.CreateTask(ctx, draft)
		},
		func(stored model.Task) { s.store.ConfirmCreated(provisional.ID, stored) },
	)
	if err != nil {
		s.notify("create task", "Failed to create task", err)
		return model.Task{}, err
	}
	return task, nil
}

// UpdateTask applies patch locally, persists it and reverts the row if the
// remote write fails. A confirmation that arrives after a newer local edit
// of the same task is dropped.
func (s *Syncer) UpdateTask(ctx context.Context, id uuid.UUID, patch model.TaskPatch) (model.Task, error) {
	if err := model.ValidatePatch(&patch); err != nil {
		return model.Task{}, err
	}
	current, ok := s.store.Task(id)
	if !ok {
		return model.Task{}, state.ErrTaskNotFound
	}
	if patch.Empty() {
		return current, nil
	}
	if patch.CategoryID != nil && !patch.ClearCategory && !s.knownCategory(*patch.CategoryID) {
		return model.Task{}, model.ErrUnknownCategory
	}
	patch = patch.Normalize()

	var (
		prior   model.Task
		version uint64
	)
	task, err := Attempt(ctx, "update task",
		func() func() {
			var err error
			prior, version, err = s.store.ApplyTaskUpdated(id, patch)
			if err != nil {
				return nil
			}
			return func() { s.store.RevertTask(prior, version) }
		},
		func(ctx context.Context) (model.Task, error) {
			return s.remote.UpdateTask(ctx, id, patch)
		},
		func(stored model.Task) { s.store.ConfirmTask(stored, version) },
	)
	if err != nil {
		s.notify("update task", "Failed to update task", err)
		return model.Task{}, err
	}
	return task, nil
}

// ToggleTask flips completion; status follows.
func (s *Syncer) ToggleTask(ctx context.Context, id uuid.UUID) (model.Task, error) {
	current, ok := s.store.Task(id)
	if !ok {
		return model.Task{}, state.ErrTaskNotFound
	}
	completed := !current.Completed
	return s.UpdateTask(ctx, id, model.TaskPatch{Completed: &completed})
}

// UpdateStatus moves a task between board columns; completion follows.
func (s *Syncer) UpdateStatus(ctx context.Context, id uuid.UUID, status model.Status) (model.Task, error) {
	if err := model.ValidateStatus(status); err != nil {
		return model.Task{}, err
	}
	return s.UpdateTask(ctx, id, model.TaskPatch{Status: &status})
}

// DeleteTask removes the task remotely first and locally only after the
// remote store confirmed.
func (s *Syncer) DeleteTask(ctx context.Context, id uuid.UUID) error {
	if _, ok := s.store.Task(id); !ok {
		return state.ErrTaskNotFound
	}
	if err := s.remote.DeleteTask(ctx, id); err != nil {
		s.notify("delete task", "Failed to delete task", err)
		return fmt.Errorf("delete task: %w", err)
	}
	return s.store.ApplyTaskRemoved(id)
}

// Reorder applies the permutation locally and persists the order of every
// task whose position changed. If any write fails the task list is reloaded
// from the remote store. Reorders run one at a time.
func (s *Syncer) Reorder(ctx context.Context, ids []uuid.UUID) error {
	s.reorderMu.Lock()
	defer s.reorderMu.Unlock()
	return s.reorder(ctx, ids)
}

func (s *Syncer) reorder(ctx context.Context, ids []uuid.UUID) error {
	before := s.store.Tasks()
	if err := s.store.ApplyReorder(ids); err != nil {
		return err
	}

	previous := make(map[uuid.UUID]int, len(before))
	for _, t := range before {
		previous[t.ID] = t.Order
	}
	for i, id := range ids {
		if previous[id] == i {
			continue
		}
		if err := s.remote.UpdateTaskOrder(ctx, id, i); err != nil {
			s.notify("reorder tasks", "Failed to save task order", err)
			return s.refetchTasks(ctx, "reorder tasks", err, before)
		}
	}
	return nil
}

// MoveTask moves activeID to the position held by overID.
func (s *Syncer) MoveTask(ctx context.Context, activeID, overID uuid.UUID) error {
	s.reorderMu.Lock()
	defer s.reorderMu.Unlock()

	if _, ok := s.store.Task(activeID); !ok {
		return state.ErrTaskNotFound
	}
	if _, ok := s.store.Task(overID); !ok {
		return state.ErrTaskNotFound
	}
	ids, ok := s.store.MovePermutation(activeID, overID)
	if !ok {
		return nil
	}
	return s.reorder(ctx, ids)
}

// ReloadTasks replaces the local task list with the remote one.
func (s *Syncer) ReloadTasks(ctx context.Context) error {
	tasks, err := s.remote.ListTasks(ctx)
	if err != nil {
		return fmt.Errorf("reload tasks: %w", err)
	}
	s.store.ReplaceTasks(tasks)
	return nil
}

func (s *Syncer) refetchTasks(ctx context.Context, op string, cause error, fallback []model.Task) error {
	rerr := s.ReloadTasks(ctx)
	if rerr != nil {
		s.store.ReplaceTasks(fallback)
	}
	return &RefetchedError{Op: op, Err: cause, RefetchErr: rerr}
}

func (s *Syncer) knownCategory(id uuid.UUID) bool {
	for _, c := range s.store.Categories() {
		if c.ID == id {
			return true
		}
	}
	return false
}

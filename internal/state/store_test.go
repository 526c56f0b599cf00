package state_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planner/internal/model"
	"planner/internal/state"
)

func newTask(title string, order int) model.Task {
	return model.Task{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		Title:     title,
		Priority:  model.PriorityMedium,
		Status:    model.StatusTodo,
		Order:     order,
		CreatedAt: time.Now(),
	}
}

func ids(tasks []model.Task) []uuid.UUID {
	out := make([]uuid.UUID, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func TestApplyTaskAdded_Idempotent(t *testing.T) {
	s := state.New()
	task := newTask("Buy milk", 0)

	s.ApplyTaskAdded(task)
	task.Title = "Buy oat milk"
	s.ApplyTaskAdded(task)

	tasks := s.Tasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, "Buy oat milk", tasks[0].Title)
}

func TestTasks_SortedByOrder(t *testing.T) {
	s := state.New()
	a, b, c := newTask("A", 2), newTask("B", 0), newTask("C", 1)
	s.ReplaceTasks([]model.Task{a, b, c})

	assert.Equal(t, []uuid.UUID{b.ID, c.ID, a.ID}, ids(s.Tasks()))
	assert.Equal(t, -1, s.NextTopOrder())
}

func TestApplyTaskUpdated_KeepsStatusConsistent(t *testing.T) {
	s := state.New()
	task := newTask("Write report", 0)
	s.ApplyTaskAdded(task)

	done := model.StatusDone
	prior, _, err := s.ApplyTaskUpdated(task.ID, model.TaskPatch{Status: &done})
	require.NoError(t, err)
	assert.False(t, prior.Completed)

	got, ok := s.Task(task.ID)
	require.True(t, ok)
	assert.True(t, got.Completed)
	assert.Equal(t, model.StatusDone, got.Status)

	_, _, err = s.ApplyTaskUpdated(uuid.New(), model.TaskPatch{Status: &done})
	assert.ErrorIs(t, err, state.ErrTaskNotFound)
}

func TestConfirmTask_DropsStaleConfirmation(t *testing.T) {
	s := state.New()
	task := newTask("Draft", 0)
	s.ApplyTaskAdded(task)

	first := "First edit"
	_, v1, err := s.ApplyTaskUpdated(task.ID, model.TaskPatch{Title: &first})
	require.NoError(t, err)
	second := "Second edit"
	_, v2, err := s.ApplyTaskUpdated(task.ID, model.TaskPatch{Title: &second})
	require.NoError(t, err)

	server := task
	server.Title = first
	assert.False(t, s.ConfirmTask(server, v1))

	got, _ := s.Task(task.ID)
	assert.Equal(t, second, got.Title)

	server.Title = second
	assert.True(t, s.ConfirmTask(server, v2))
}

func TestRevertTask(t *testing.T) {
	s := state.New()
	task := newTask("Original", 0)
	s.ApplyTaskAdded(task)

	title := "Changed"
	prior, v, err := s.ApplyTaskUpdated(task.ID, model.TaskPatch{Title: &title})
	require.NoError(t, err)

	assert.True(t, s.RevertTask(prior, v))
	got, _ := s.Task(task.ID)
	assert.Equal(t, "Original", got.Title)
}

func TestConfirmCreated_SwapsProvisionalID(t *testing.T) {
	s := state.New()
	provisional := newTask("New", -1)
	s.ApplyTaskAdded(provisional)

	stored := provisional
	stored.ID = uuid.New()
	assert.True(t, s.ConfirmCreated(provisional.ID, stored))

	_, ok := s.Task(provisional.ID)
	assert.False(t, ok)
	_, ok = s.Task(stored.ID)
	assert.True(t, ok)
	assert.Len(t, s.Tasks(), 1)
}

func TestConfirmCreated_RowAlreadyDelivered(t *testing.T) {
	s := state.New()
	provisional := newTask("New", -1)
	s.ApplyTaskAdded(provisional)

	stored := provisional
	stored.ID = uuid.New()
	s.ApplyTaskAdded(stored)

	assert.True(t, s.ConfirmCreated(provisional.ID, stored))
	assert.Equal(t, []uuid.UUID{stored.ID}, ids(s.Tasks()))
}

func TestApplyTaskRemoved_Cascades(t *testing.T) {
	s := state.New()
	task := newTask("With children", 0)
	other := newTask("Other", 1)
	s.ReplaceTasks([]model.Task{task, other})

	s.ApplyAttachmentAdded(model.Attachment{ID: uuid.New(), TaskID: task.ID, FileName: "a.pdf"})
	s.ApplyReminderAdded(model.Reminder{ID: uuid.New(), TaskID: task.ID, RemindAt: time.Now()})
	keep := model.Reminder{ID: uuid.New(), TaskID: other.ID, RemindAt: time.Now()}
	s.ApplyReminderAdded(keep)

	require.NoError(t, s.ApplyTaskRemoved(task.ID))

	assert.Empty(t, s.Attachments(task.ID))
	assert.Equal(t, []model.Reminder{keep}, s.Reminders())
	assert.ErrorIs(t, s.ApplyTaskRemoved(task.ID), state.ErrTaskNotFound)
}

func TestApplyReorder(t *testing.T) {
	s := state.New()
	a, b, c := newTask("A", 0), newTask("B", 1), newTask("C", 2)
	s.ReplaceTasks([]model.Task{a, b, c})

	require.NoError(t, s.ApplyReorder([]uuid.UUID{c.ID, a.ID, b.ID}))

	tasks := s.Tasks()
	assert.Equal(t, []uuid.UUID{c.ID, a.ID, b.ID}, ids(tasks))
	for i, task := range tasks {
		assert.Equal(t, i, task.Order)
	}
}

func TestApplyReorder_RejectsBadPermutation(t *testing.T) {
	s := state.New()
	a, b := newTask("A", 0), newTask("B", 1)
	s.ReplaceTasks([]model.Task{a, b})

	tests := []struct {
		name string
		ids  []uuid.UUID
	}{
		{"missing", []uuid.UUID{a.ID}},
		{"duplicate", []uuid.UUID{a.ID, a.ID}},
		{"unknown", []uuid.UUID{a.ID, uuid.New()}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, s.ApplyReorder(tt.ids), state.ErrInvalidPermutation)
		})
	}
	assert.Equal(t, []uuid.UUID{a.ID, b.ID}, ids(s.Tasks()))
}

func TestMovePermutation(t *testing.T) {
	s := state.New()
	a, b, c := newTask("A", 0), newTask("B", 1), newTask("C", 2)
	s.ReplaceTasks([]model.Task{a, b, c})

	got, ok := s.MovePermutation(c.ID, a.ID)
	require.True(t, ok)
	assert.Equal(t, []uuid.UUID{c.ID, a.ID, b.ID}, got)

	got, ok = s.MovePermutation(a.ID, c.ID)
	require.True(t, ok)
	assert.Equal(t, []uuid.UUID{b.ID, c.ID, a.ID}, got)

	_, ok = s.MovePermutation(a.ID, a.ID)
	assert.False(t, ok)
}

func TestApplyCategoryRemoved_DetachesTasks(t *testing.T) {
	s := state.New()
	cat := model.Category{ID: uuid.New(), Name: "Work"}
	s.ApplyCategoryAdded(cat)
	task := newTask("Filed", 0)
	task.CategoryID = &cat.ID
	s.ApplyTaskAdded(task)

	require.NoError(t, s.ApplyCategoryRemoved(cat.ID))

	got, _ := s.Task(task.ID)
	assert.Nil(t, got.CategoryID)
	assert.Empty(t, s.Categories())
}

func TestNotifications_UnreadAndDedup(t *testing.T) {
	s := state.New()
	older := model.Notification{ID: uuid.New(), Title: "Old", CreatedAt: time.Now().Add(-time.Hour)}
	newer := model.Notification{ID: uuid.New(), Title: "New", CreatedAt: time.Now()}

	assert.True(t, s.ApplyNotificationAdded(older))
	assert.True(t, s.ApplyNotificationAdded(newer))
	assert.False(t, s.ApplyNotificationAdded(newer))

	list := s.Notifications()
	require.Len(t, list, 2)
	assert.Equal(t, newer.ID, list[0].ID)
	assert.Equal(t, 2, s.UnreadCount())

	prev, err := s.SetNotificationRead(newer.ID, true)
	require.NoError(t, err)
	assert.False(t, prev)
	assert.Equal(t, 1, s.UnreadCount())

	assert.Equal(t, []uuid.UUID{older.ID}, s.MarkAllNotificationsRead())
	assert.Equal(t, 0, s.UnreadCount())

	require.NoError(t, s.ApplyNotificationRemoved(older.ID))
	assert.Len(t, s.Notifications(), 1)
}

func TestSubscribe(t *testing.T) {
	s := state.New()
	var got []state.Change
	unsubscribe := s.Subscribe(func(c state.Change) { got = append(got, c) })

	n := model.Notification{ID: uuid.New(), Title: "Reminder"}
	s.ApplyNotificationAdded(n)
	unsubscribe()
	s.ApplyNotificationAdded(model.Notification{ID: uuid.New()})

	require.Len(t, got, 1)
	assert.Equal(t, state.KindNotifications, got[0].Kind)
	assert.Equal(t, n.ID, got[0].ID)
	assert.True(t, got[0].Added)
}

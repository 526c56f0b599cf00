package session_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"planner/internal/backend"
	"planner/internal/model"
	"planner/internal/objectstore"
	"planner/internal/realtime"
	"planner/internal/repository"
	"planner/internal/session"
	"planner/internal/syncer"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setup(t *testing.T) (*gorm.DB, *backend.Backend, uuid.UUID) {
	db, err := repository.OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	bucket, err := objectstore.NewBucket(t.TempDir(), "test-secret", "http://localhost:8080")
	require.NoError(t, err)

	user := &model.User{Email: "ada@example.com", HashedPassword: "x"}
	require.NoError(t, repository.NewUserRepository(db).Create(context.Background(), user))

	return db, backend.New(db, bucket, realtime.NewHub(16), time.Minute, nil), user.ID
}

func newManager(b *backend.Backend) *session.Manager {
	return session.NewManager(
		func(id uuid.UUID) syncer.Remote { return b.ForUser(id) },
		session.Options{ReminderInterval: time.Hour},
		nil,
	)
}

// gatedRemote holds ListNotifications open after the query ran until
// release is closed.
type gatedRemote struct {
	syncer.Remote
	calls   atomic.Int32
	entered chan struct{}
	release chan struct{}
}

func newGatedRemote(r syncer.Remote) *gatedRemote {
	return &gatedRemote{Remote: r, entered: make(chan struct{}, 8), release: make(chan struct{})}
}

func (g *gatedRemote) ListNotifications(ctx context.Context, limit int) ([]model.Notification, error) {
	list, err := g.Remote.ListNotifications(ctx, limit)
	g.calls.Add(1)
	g.entered <- struct{}{}
	<-g.release
	return list, err
}

func waitEntered(t *testing.T, g *gatedRemote) {
	t.Helper()
	select {
	case <-g.entered:
	case <-time.After(time.Second):
		t.Fatal("load never reached notifications")
	}
}

func TestManager_GetReusesSession(t *testing.T) {
	_, b, userID := setup(t)
	m := newManager(b)
	defer m.Shutdown()

	first, err := m.Get(context.Background(), userID)
	require.NoError(t, err)
	second, err := m.Get(context.Background(), userID)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, m.Active())
	assert.Len(t, first.Store.Categories(), len(model.DefaultCategories))
}

func TestManager_StartFiresDueReminders(t *testing.T) {
	// Arrange
	db, b, userID := setup(t)
	ctx := context.Background()
	task := &model.Task{UserID: userID, Title: "Call the bank"}
	require.NoError(t, repository.NewTaskRepository(db).Create(ctx, task))
	reminder := &model.Reminder{UserID: userID, TaskID: task.ID, RemindAt: time.Now().Add(-time.Minute)}
	require.NoError(t, repository.NewReminderRepository(db).Create(ctx, reminder))
	m := newManager(b)
	defer m.Shutdown()

	// Act
	s, err := m.Get(ctx, userID)
	require.NoError(t, err)

	// Assert
	notifications := s.Store.Notifications()
	require.Len(t, notifications, 1)
	assert.Equal(t, model.ReminderNotificationTitle, notifications[0].Title)
	assert.Equal(t, task.ID, *notifications[0].TaskID)

	reminders := s.Store.Reminders()
	require.Len(t, reminders, 1)
	assert.True(t, reminders[0].IsTriggered)

	assert.Empty(t, s.Syncer.DueReminders(time.Now()))
}

func TestManager_RealtimeNotificationsReachSession(t *testing.T) {
	_, b, userID := setup(t)
	m := newManager(b)
	defer m.Shutdown()

	s, err := m.Get(context.Background(), userID)
	require.NoError(t, err)

	_, err = b.ForUser(userID).CreateNotification(context.Background(), model.Notification{Title: "Shared with you"})
	require.NoError(t, err)

	assert.Eventually(t, func() bool { return s.Store.UnreadCount() == 1 }, time.Second, 10*time.Millisecond)
}

func TestManager_StopTearsDown(t *testing.T) {
	_, b, userID := setup(t)
	m := newManager(b)

	s, err := m.Get(context.Background(), userID)
	require.NoError(t, err)

	m.Stop(userID)
	m.Stop(userID)

	assert.Equal(t, 0, m.Active())
	assert.Empty(t, s.Store.Categories())
}

func TestManager_NotificationDuringLoadReachesSession(t *testing.T) {
	// Arrange
	_, b, userID := setup(t)
	gated := newGatedRemote(b.ForUser(userID))
	m := session.NewManager(
		func(uuid.UUID) syncer.Remote { return gated },
		session.Options{ReminderInterval: time.Hour},
		nil,
	)
	defer m.Shutdown()

	type result struct {
		s   *session.Session
		err error
	}
	started := make(chan result, 1)
	go func() {
		s, err := m.Get(context.Background(), userID)
		started <- result{s, err}
	}()
	waitEntered(t, gated)

	// Act: the row lands after the list query but before the load finishes
	_, err := b.ForUser(userID).CreateNotification(context.Background(), model.Notification{Title: "Shared with you"})
	require.NoError(t, err)
	close(gated.release)
	res := <-started

	// Assert
	require.NoError(t, res.err)
	assert.Eventually(t, func() bool { return res.s.Store.UnreadCount() == 1 }, time.Second, 10*time.Millisecond)
	assert.Len(t, res.s.Store.Notifications(), 1)
}

func TestManager_SlowStartDoesNotBlockOtherUsers(t *testing.T) {
	// Arrange
	db, b, slowUser := setup(t)
	other := &model.User{Email: "grace@example.com", HashedPassword: "x"}
	require.NoError(t, repository.NewUserRepository(db).Create(context.Background(), other))

	gated := newGatedRemote(b.ForUser(slowUser))
	m := session.NewManager(
		func(id uuid.UUID) syncer.Remote {
			if id == slowUser {
				return gated
			}
			return b.ForUser(id)
		},
		session.Options{ReminderInterval: time.Hour},
		nil,
	)
	defer m.Shutdown()

	slowDone := make(chan error, 1)
	go func() {
		_, err := m.Get(context.Background(), slowUser)
		slowDone <- err
	}()
	waitEntered(t, gated)

	// Act
	fast := make(chan error, 1)
	go func() {
		_, err := m.Get(context.Background(), other.ID)
		fast <- err
	}()

	// Assert
	select {
	case err := <-fast:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("second user waited on the first user's load")
	}
	close(gated.release)
	require.NoError(t, <-slowDone)
	assert.Equal(t, 2, m.Active())
}

func TestManager_ConcurrentGetsShareOneStart(t *testing.T) {
	// Arrange
	_, b, userID := setup(t)
	gated := newGatedRemote(b.ForUser(userID))
	m := session.NewManager(
		func(uuid.UUID) syncer.Remote { return gated },
		session.Options{ReminderInterval: time.Hour},
		nil,
	)
	defer m.Shutdown()

	// Act
	var wg sync.WaitGroup
	got := make([]*session.Session, 3)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, err := m.Get(context.Background(), userID)
			assert.NoError(t, err)
			got[i] = s
		}(i)
	}
	waitEntered(t, gated)
	time.Sleep(50 * time.Millisecond)
	close(gated.release)
	wg.Wait()

	// Assert
	assert.Equal(t, int32(1), gated.calls.Load())
	assert.Same(t, got[0], got[1])
	assert.Same(t, got[0], got[2])
	assert.Equal(t, 1, m.Active())
}

func TestManager_StopClosesDone(t *testing.T) {
	_, b, userID := setup(t)
	m := newManager(b)

	s, err := m.Get(context.Background(), userID)
	require.NoError(t, err)
	select {
	case <-s.Done():
		t.Fatal("done closed while running")
	default:
	}

	m.Stop(userID)

	select {
	case <-s.Done():
	case <-time.After(time.Second):
		t.Fatal("done not closed after stop")
	}
}

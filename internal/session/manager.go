// Package session owns the per-user client core: store, syncer, reminder
// scheduler and realtime subscription. A session starts on the first
// authenticated request and stops on sign-out.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"planner/internal/scheduler"
	"planner/internal/state"
	"planner/internal/syncer"
)

// RemoteFunc returns the remote store scoped to one user.
type RemoteFunc func(userID uuid.UUID) syncer.Remote

type Options struct {
	ReminderInterval time.Duration
	MaxUploadBytes   int64
}

type Session struct {
	UserID uuid.UUID
	Store  *state.Store
	Syncer *syncer.Syncer

	scheduler *scheduler.Scheduler
	cancel    context.CancelFunc
	listening chan struct{}
	done      chan struct{}
}

// Done is closed when the session stops.
func (s *Session) Done() <-chan struct{} { return s.done }

func (s *Session) stop() {
	close(s.done)
	s.cancel()
	s.scheduler.Stop()
	<-s.listening
	s.Store.Reset()
}

type Manager struct {
	remote RemoteFunc
	opts   Options
	logger *slog.Logger

	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
	starting singleflight.Group
}

func NewManager(remote RemoteFunc, opts Options, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		remote:   remote,
		opts:     opts,
		logger:   logger,
		sessions: make(map[uuid.UUID]*Session),
	}
}

// Get returns the running session of userID, starting one if needed.
// Concurrent first requests of one user share a single start; other users
// are not held up by it. A session whose initial load fails is not kept.
func (m *Manager) Get(ctx context.Context, userID uuid.UUID) (*Session, error) {
	if s, ok := m.lookup(userID); ok {
		return s, nil
	}

	v, err, _ := m.starting.Do(userID.String(), func() (any, error) {
		if s, ok := m.lookup(userID); ok {
			return s, nil
		}
		s, err := m.start(ctx, userID)
		if err != nil {
			return nil, err
		}
		m.mu.Lock()
		m.sessions[userID] = s
		m.mu.Unlock()
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Session), nil
}

func (m *Manager) lookup(userID uuid.UUID) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[userID]
	return s, ok
}

func (m *Manager) start(ctx context.Context, userID uuid.UUID) (*Session, error) {
	logger := m.logger.With("user_id", userID)
	remote := m.remote(userID)
	store := state.New()
	sy := syncer.New(remote, store,
		syncer.WithLogger(logger),
		syncer.WithMaxUpload(m.opts.MaxUploadBytes),
	)

	// subscribe before loading so rows inserted during the load are queued
	sub := remote.SubscribeNotifications()
	if err := sy.Load(ctx); err != nil {
		sub.Cancel()
		return nil, fmt.Errorf("start session: %w", err)
	}

	// the session outlives the request that started it
	runCtx, cancel := context.WithCancel(context.Background())
	s := &Session{
		UserID:    userID,
		Store:     store,
		Syncer:    sy,
		scheduler: scheduler.New(sy, m.opts.ReminderInterval, logger),
		cancel:    cancel,
		listening: make(chan struct{}),
		done:      make(chan struct{}),
	}

	go func() {
		defer close(s.listening)
		defer sub.Cancel()
		sy.Listen(runCtx, sub)
	}()
	if err := s.scheduler.Start(runCtx); err != nil {
		s.stop()
		return nil, fmt.Errorf("start session: %w", err)
	}

	logger.Info("session started")
	return s, nil
}

// Stop ends the session of userID if one is running.
func (m *Manager) Stop(userID uuid.UUID) {
	m.mu.Lock()
	s, ok := m.sessions[userID]
	delete(m.sessions, userID)
	m.mu.Unlock()

	if !ok {
		return
	}
	s.stop()
	m.logger.Info("session stopped", "user_id", userID)
}

// Shutdown stops every session.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[uuid.UUID]*Session)
	m.mu.Unlock()

	var wg sync.WaitGroup
	for _, s := range sessions {
		wg.Add(1)
		go func(s *Session) {
			defer wg.Done()
			s.stop()
		}(s)
	}
	wg.Wait()
}

// Active returns the number of running sessions.
func (m *Manager) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"planner/internal/backend"
	"planner/internal/middleware"
	"planner/internal/model"
	"planner/internal/session"
	"planner/internal/state"
	"planner/internal/syncer"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Sessions hands out the running session of a user.
type Sessions interface {
	Get(ctx context.Context, userID uuid.UUID) (*session.Session, error)
	Stop(userID uuid.UUID)
}

type base struct {
	sessions Sessions
	logger   *slog.Logger
}

func newBase(sessions Sessions, logger *slog.Logger) base {
	if logger == nil {
		logger = slog.Default()
	}
	return base{sessions: sessions, logger: logger}
}

// current resolves the caller's session. It writes the error response and
// returns false when there is none.
func (b base) current(c *gin.Context) (*session.Session, bool) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return nil, false
	}
	s, err := b.sessions.Get(c.Request.Context(), userID)
	if err != nil {
		b.logger.Error("session unavailable", "user_id", userID, "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Failed to load your data"})
		return nil, false
	}
	return s, true
}

func paramID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name + " format"})
		return uuid.Nil, false
	}
	return id, true
}

var (
	badRequest = []error{
		model.ErrEmptyTitle,
		model.ErrInvalidPriority,
		model.ErrInvalidStatus,
		model.ErrReminderInPast,
		model.ErrEmptyCategoryName,
		model.ErrUnknownCategory,
		model.ErrEmptyFile,
		state.ErrInvalidPermutation,
		syncer.ErrUnknownPreset,
	}
	notFound = []error{
		state.ErrTaskNotFound,
		state.ErrCategoryNotFound,
		state.ErrAttachmentNotFound,
		state.ErrReminderNotFound,
		state.ErrNotificationNotFound,
	}
)

// respondError maps an operation error to a status code. Remote write
// failures have already been rolled back or refetched by the syncer.
func (b base) respondError(c *gin.Context, fallback string, err error) {
	for _, target := range badRequest {
		if errors.Is(err, target) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	for _, target := range notFound {
		if errors.Is(err, target) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
	}
	switch {
	case errors.Is(err, model.ErrFileTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
		return
	case errors.Is(err, model.ErrUnsupportedFileType):
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": err.Error()})
		return
	case backend.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": fallback})
		return
	}

	var rolledBack *syncer.RolledBackError
	var refetched *syncer.RefetchedError
	if errors.As(err, &rolledBack) || errors.As(err, &refetched) {
		c.JSON(http.StatusBadGateway, gin.H{"error": fallback})
		return
	}
	b.logger.Error(fallback, "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
}

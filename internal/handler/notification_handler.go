package handler

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"planner/internal/model"
	"planner/internal/state"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	base
	heartbeat time.Duration
}

func NewNotificationHandler(sessions Sessions, logger *slog.Logger) *NotificationHandler {
	return &NotificationHandler{base: newBase(sessions, logger), heartbeat: 30 * time.Second}
}

type NotificationsResponse struct {
	Notifications []model.Notification `json:"notifications"`
	Unread        int                  `json:"unread"`
}

// List godoc
// @Summary   Latest notifications, newest first
// @Tags      Notifications
// @Security  BearerAuth
// @Produce   json
// @Success   200 {object} NotificationsResponse
// @Router    /notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	s, ok := h.current(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, NotificationsResponse{
		Notifications: s.Store.Notifications(),
		Unread:        s.Store.UnreadCount(),
	})
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	s, ok := h.current(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	n, err := s.Syncer.MarkRead(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, "Failed to update notification", err)
		return
	}
	c.JSON(http.StatusOK, n)
}

func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	s, ok := h.current(c)
	if !ok {
		return
	}
	if err := s.Syncer.MarkAllRead(c.Request.Context()); err != nil {
		h.respondError(c, "Failed to update notifications", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *NotificationHandler) Delete(c *gin.Context) {
	s, ok := h.current(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := s.Syncer.DeleteNotification(c.Request.Context(), id); err != nil {
		h.respondError(c, "Failed to delete notification", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *NotificationHandler) Clear(c *gin.Context) {
	s, ok := h.current(c)
	if !ok {
		return
	}
	if err := s.Syncer.ClearAll(c.Request.Context()); err != nil {
		h.respondError(c, "Failed to clear notifications", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Stream godoc
// @Summary   Server-sent events for new notifications
// @Description Emits "unread" with the unread count on every change and
// @Description "notification" with the row when a new one arrives. The
// @Description stream ends when the session stops.
// @Tags      Notifications
// @Security  BearerAuth
// @Produce   text/event-stream
// @Router    /notifications/stream [get]
func (h *NotificationHandler) Stream(c *gin.Context) {
	s, ok := h.current(c)
	if !ok {
		return
	}

	changes := make(chan state.Change, 16)
	unsubscribe := s.Store.Subscribe(func(change state.Change) {
		if change.Kind != state.KindNotifications {
			return
		}
		select {
		case changes <- change:
		default:
		}
	})
	defer unsubscribe()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.SSEvent("unread", gin.H{"unread": s.Store.UnreadCount()})
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case <-s.Done():
			// signed out
			return false
		case <-ticker.C:
			c.SSEvent("ping", time.Now().Unix())
			return true
		case change := <-changes:
			if change.Added {
				if n, ok := s.Store.Notification(change.ID); ok {
					c.SSEvent("notification", n)
				}
			}
			c.SSEvent("unread", gin.H{"unread": s.Store.UnreadCount()})
			return true
		}
	})
}

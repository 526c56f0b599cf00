package handler

import (
	"log/slog"
	"net/http"
	"time"

	"planner/internal/model"

	"github.com/gin-gonic/gin"
)

type ReminderHandler struct {
	base
}

func NewReminderHandler(sessions Sessions, logger *slog.Logger) *ReminderHandler {
	return &ReminderHandler{base: newBase(sessions, logger)}
}

// ReminderRequest sets either RemindAt or one of the presets 15min, 30min,
// 1hour, 3hours, tomorrow.
type ReminderRequest struct {
	RemindAt *time.Time `json:"remind_at"`
	Preset   string     `json:"preset"`
	Message  *string    `json:"message"`
}

func (h *ReminderHandler) List(c *gin.Context) {
	s, ok := h.current(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.Store.Reminders())
}

// Create godoc
// @Summary   Schedule a reminder for a task
// @Tags      Reminders
// @Security  BearerAuth
// @Accept    json
// @Produce   json
// @Param     id   path string          true "Task ID"
// @Param     body body ReminderRequest true "When"
// @Success   201 {object} model.Reminder
// @Router    /tasks/{id}/reminders [post]
func (h *ReminderHandler) Create(c *gin.Context) {
	s, ok := h.current(c)
	if !ok {
		return
	}
	taskID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req ReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil || (req.RemindAt == nil && req.Preset == "") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "remind_at or preset is required"})
		return
	}

	var (
		reminder model.Reminder
		err      error
	)
	if req.RemindAt != nil {
		reminder, err = s.Syncer.AddReminder(c.Request.Context(), taskID, *req.RemindAt, req.Message)
	} else {
		reminder, err = s.Syncer.AddReminderPreset(c.Request.Context(), taskID, req.Preset, req.Message)
	}
	if err != nil {
		h.respondError(c, "Failed to set reminder", err)
		return
	}
	c.JSON(http.StatusCreated, reminder)
}

func (h *ReminderHandler) Delete(c *gin.Context) {
	s, ok := h.current(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := s.Syncer.DeleteReminder(c.Request.Context(), id); err != nil {
		h.respondError(c, "Failed to delete reminder", err)
		return
	}
	c.Status(http.StatusNoContent)
}

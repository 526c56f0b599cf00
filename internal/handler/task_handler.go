package handler

import (
	"log/slog"
	"net/http"

	"planner/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type TaskHandler struct {
	base
}

func NewTaskHandler(sessions Sessions, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{base: newBase(sessions, logger)}
}

type StatusRequest struct {
	Status model.Status `json:"status" binding:"required"`
}

type ReorderRequest struct {
	IDs []uuid.UUID `json:"ids" binding:"required"`
}

type MoveRequest struct {
	OverID uuid.UUID `json:"over_id" binding:"required"`
}

// List godoc
// @Summary   Tasks in manual order
// @Tags      Tasks
// @Security  BearerAuth
// @Produce   json
// @Success   200 {array} model.Task
// @Router    /tasks [get]
func (h *TaskHandler) List(c *gin.Context) {
	s, ok := h.current(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.Store.Tasks())
}

// Create godoc
// @Summary   Create a task on top of the list
// @Tags      Tasks
// @Security  BearerAuth
// @Accept    json
// @Produce   json
// @Param     body body model.NewTask true "Task"
// @Success   201 {object} model.Task
// @Router    /tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	s, ok := h.current(c)
	if !ok {
		return
	}
	var req model.NewTask
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	task, err := s.Syncer.CreateTask(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, "Failed to create task", err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

// Update godoc
// @Summary   Edit task fields
// @Tags      Tasks
// @Security  BearerAuth
// @Accept    json
// @Produce   json
// @Param     id   path string          true "Task ID"
// @Param     body body model.TaskPatch true "Changed fields"
// @Success   200 {object} model.Task
// @Router    /tasks/{id} [patch]
func (h *TaskHandler) Update(c *gin.Context) {
	s, ok := h.current(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var patch model.TaskPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	task, err := s.Syncer.UpdateTask(c.Request.Context(), id, patch)
	if err != nil {
		h.respondError(c, "Failed to update task", err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// Toggle godoc
// @Summary   Flip completion
// @Tags      Tasks
// @Security  BearerAuth
// @Produce   json
// @Param     id path string true "Task ID"
// @Success   200 {object} model.Task
// @Router    /tasks/{id}/toggle [post]
func (h *TaskHandler) Toggle(c *gin.Context) {
	s, ok := h.current(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	task, err := s.Syncer.ToggleTask(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, "Failed to update task", err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// SetStatus godoc
// @Summary   Move a task between board columns
// @Tags      Tasks
// @Security  BearerAuth
// @Accept    json
// @Produce   json
// @Param     id   path string        true "Task ID"
// @Param     body body StatusRequest true "Status"
// @Success   200 {object} model.Task
// @Router    /tasks/{id}/status [put]
func (h *TaskHandler) SetStatus(c *gin.Context) {
	s, ok := h.current(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	task, err := s.Syncer.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		h.respondError(c, "Failed to update task", err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// Delete godoc
// @Summary   Delete a task with its attachments and reminders
// @Tags      Tasks
// @Security  BearerAuth
// @Param     id path string true "Task ID"
// @Success   204
// @Router    /tasks/{id} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	s, ok := h.current(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := s.Syncer.DeleteTask(c.Request.Context(), id); err != nil {
		h.respondError(c, "Failed to delete task", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Reorder godoc
// @Summary   Apply a full manual order
// @Tags      Tasks
// @Security  BearerAuth
// @Accept    json
// @Produce   json
// @Param     body body ReorderRequest true "Every task id in the new order"
// @Success   200 {array} model.Task
// @Router    /tasks/reorder [post]
func (h *TaskHandler) Reorder(c *gin.Context) {
	s, ok := h.current(c)
	if !ok {
		return
	}
	var req ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if err := s.Syncer.Reorder(c.Request.Context(), req.IDs); err != nil {
		h.respondError(c, "Failed to save task order", err)
		return
	}
	c.JSON(http.StatusOK, s.Store.Tasks())
}

// Move godoc
// @Summary   Drag a task onto another task's position
// @Tags      Tasks
// @Security  BearerAuth
// @Accept    json
// @Produce   json
// @Param     id   path string      true "Task being moved"
// @Param     body body MoveRequest true "Task it is dropped on"
// @Success   200 {array} model.Task
// @Router    /tasks/{id}/move [post]
func (h *TaskHandler) Move(c *gin.Context) {
	s, ok := h.current(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if err := s.Syncer.MoveTask(c.Request.Context(), id, req.OverID); err != nil {
		h.respondError(c, "Failed to save task order", err)
		return
	}
	c.JSON(http.StatusOK, s.Store.Tasks())
}

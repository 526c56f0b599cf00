package handler

import (
	"log/slog"
	"net/http"

	"planner/internal/model"

	"github.com/gin-gonic/gin"
)

type CategoryHandler struct {
	base
}

func NewCategoryHandler(sessions Sessions, logger *slog.Logger) *CategoryHandler {
	return &CategoryHandler{base: newBase(sessions, logger)}
}

type CategoryRequest struct {
	Name  string `json:"name" binding:"required"`
	Color string `json:"color"`
}

func (h *CategoryHandler) List(c *gin.Context) {
	s, ok := h.current(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.Store.Categories())
}

func (h *CategoryHandler) Create(c *gin.Context) {
	s, ok := h.current(c)
	if !ok {
		return
	}
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if req.Color == "" {
		req.Color = model.DefaultCategories[0].Color
	}

	category, err := s.Syncer.CreateCategory(c.Request.Context(), req.Name, req.Color)
	if err != nil {
		h.respondError(c, "Failed to create category", err)
		return
	}
	c.JSON(http.StatusCreated, category)
}

// Delete removes a category. Its tasks stay, without a category.
func (h *CategoryHandler) Delete(c *gin.Context) {
	s, ok := h.current(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := s.Syncer.DeleteCategory(c.Request.Context(), id); err != nil {
		h.respondError(c, "Failed to delete category", err)
		return
	}
	c.Status(http.StatusNoContent)
}

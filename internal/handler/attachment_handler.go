package handler

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"planner/internal/model"

	"github.com/gin-gonic/gin"
)

type AttachmentHandler struct {
	base
	maxUpload int64
}

func NewAttachmentHandler(sessions Sessions, maxUpload int64, logger *slog.Logger) *AttachmentHandler {
	if maxUpload <= 0 {
		maxUpload = model.MaxAttachmentSize
	}
	return &AttachmentHandler{base: newBase(sessions, logger), maxUpload: maxUpload}
}

// List returns the task's attachments, newest first, each with a freshly
// signed download URL.
func (h *AttachmentHandler) List(c *gin.Context) {
	s, ok := h.current(c)
	if !ok {
		return
	}
	taskID, ok := paramID(c, "id")
	if !ok {
		return
	}

	links, err := s.Syncer.AttachmentLinks(taskID)
	if err != nil {
		h.respondError(c, "Failed to load attachments", err)
		return
	}
	c.JSON(http.StatusOK, links)
}

// Upload godoc
// @Summary   Attach a file to a task
// @Tags      Attachments
// @Security  BearerAuth
// @Accept    multipart/form-data
// @Produce   json
// @Param     id   path     string true "Task ID"
// @Param     file formData file   true "File"
// @Success   201 {object} model.Attachment
// @Failure   413,415 {object} map[string]string
// @Router    /tasks/{id}/attachments [post]
func (h *AttachmentHandler) Upload(c *gin.Context) {
	s, ok := h.current(c)
	if !ok {
		return
	}
	taskID, ok := paramID(c, "id")
	if !ok {
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File is required"})
		return
	}
	if fh.Size > h.maxUpload {
		h.respondError(c, "Failed to upload file", fmt.Errorf("%w: %d bytes, limit %d", model.ErrFileTooLarge, fh.Size, h.maxUpload))
		return
	}

	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file"})
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, h.maxUpload+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file"})
		return
	}

	attachment, err := s.Syncer.UploadAttachment(c.Request.Context(), taskID, model.Upload{
		FileName:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	})
	if err != nil {
		h.respondError(c, "Failed to upload file", err)
		return
	}
	c.JSON(http.StatusCreated, attachment)
}

func (h *AttachmentHandler) Delete(c *gin.Context) {
	s, ok := h.current(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := s.Syncer.DeleteAttachment(c.Request.Context(), id); err != nil {
		h.respondError(c, "Failed to delete attachment", err)
		return
	}
	c.Status(http.StatusNoContent)
}

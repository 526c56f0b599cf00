package handler

import (
	"errors"
	"net/http"

	"planner/internal/objectstore"

	"github.com/gin-gonic/gin"
)

// ObjectOpener resolves a signed object token to a local file.
type ObjectOpener interface {
	Open(token string) (string, error)
}

type StorageHandler struct {
	objects ObjectOpener
}

func NewStorageHandler(objects ObjectOpener) *StorageHandler {
	return &StorageHandler{objects: objects}
}

// Download godoc
// @Summary  Fetch an attachment through a signed link
// @Tags     Attachments
// @Param    token query string true "Signed token"
// @Success  200 {file} binary
// @Failure  403,404 {object} map[string]string
// @Router   /storage/object [get]
func (h *StorageHandler) Download(c *gin.Context) {
	path, err := h.objects.Open(c.Query("token"))
	switch {
	case errors.Is(err, objectstore.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Object not found"})
		return
	case err != nil:
		c.JSON(http.StatusForbidden, gin.H{"error": "Invalid or expired link"})
		return
	}
	c.File(path)
}

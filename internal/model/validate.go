package model

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var (
	ErrEmptyTitle          = errors.New("title must not be empty")
	ErrInvalidPriority     = errors.New("priority must be one of low, medium, high")
	ErrInvalidStatus       = errors.New("status must be one of todo, in-progress, done")
	ErrReminderInPast      = errors.New("reminder time must be in the future")
	ErrUnsupportedFileType = errors.New("file type not supported")
	ErrFileTooLarge        = errors.New("file exceeds the size limit")
	ErrEmptyFile           = errors.New("file is empty")
	ErrEmptyCategoryName   = errors.New("category name must not be empty")
	ErrUnknownCategory     = errors.New("category does not exist")
)

// MaxAttachmentSize is the default upload limit.
const MaxAttachmentSize int64 = 20 * 1024 * 1024

var AllowedAttachmentTypes = []string{
	"image/jpeg", "image/png", "image/gif", "image/webp",
	"video/mp4", "video/webm", "video/quicktime",
	"application/pdf", "text/plain", "text/markdown",
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// NewTask is the user input for task creation.
type NewTask struct {
	Title       string     `json:"title" validate:"required"`
	Priority    Priority   `json:"priority" validate:"omitempty,oneof=low medium high"`
	DueDate     *time.Time `json:"due_date"`
	CategoryID  *uuid.UUID `json:"category_id"`
	Description *string    `json:"description"`
}

// Validate trims the title and checks the fields, defaulting an empty
// priority to medium.
func (n *NewTask) Validate() error {
	n.Title = strings.TrimSpace(n.Title)
	if n.Priority == "" {
		n.Priority = PriorityMedium
	}
	return translate(validate.Struct(n))
}

// ValidatePatch checks the fields a patch sets.
func ValidatePatch(p *TaskPatch) error {
	if p.Title != nil {
		title := strings.TrimSpace(*p.Title)
		if title == "" {
			return ErrEmptyTitle
		}
		p.Title = &title
	}
	if p.Priority != nil {
		if err := translate(validate.Var(string(*p.Priority), "oneof=low medium high")); err != nil {
			return ErrInvalidPriority
		}
	}
	if p.Status != nil {
		if err := translate(validate.Var(string(*p.Status), "oneof=todo in-progress done")); err != nil {
			return ErrInvalidStatus
		}
	}
	return nil
}

// ValidateStatus reports whether s is one of the board statuses.
func ValidateStatus(s Status) error {
	if err := validate.Var(string(s), "required,oneof=todo in-progress done"); err != nil {
		return ErrInvalidStatus
	}
	return nil
}

// ValidateReminderTime rejects reminders that are not strictly after now.
func ValidateReminderTime(at, now time.Time) error {
	if !at.After(now) {
		return ErrReminderInPast
	}
	return nil
}

// ValidateCategoryName trims the name and rejects empty ones.
func ValidateCategoryName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyCategoryName
	}
	return name, nil
}

// Upload describes a file picked for attachment before it is sent anywhere.
type Upload struct {
	FileName    string
	ContentType string
	Data        []byte
}

// ValidateUpload checks size and type of an upload against limit and returns
// the content type to store. An empty or generic declared type is replaced by
// the sniffed one.
func ValidateUpload(u Upload, limit int64) (string, error) {
	if limit <= 0 {
		limit = MaxAttachmentSize
	}
	if len(u.Data) == 0 {
		return "", ErrEmptyFile
	}
	if int64(len(u.Data)) > limit {
		return "", fmt.Errorf("%w: %d bytes, limit %d", ErrFileTooLarge, len(u.Data), limit)
	}

	contentType := strings.TrimSpace(strings.Split(u.ContentType, ";")[0])
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = sniff(u)
	}
	for _, allowed := range AllowedAttachmentTypes {
		if strings.EqualFold(contentType, allowed) {
			return allowed, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFileType, contentType)
}

func sniff(u Upload) string {
	if strings.EqualFold(filepath.Ext(u.FileName), ".md") {
		return "text/markdown"
	}
	detected := mimetype.Detect(u.Data)
	for _, allowed := range AllowedAttachmentTypes {
		if detected.Is(allowed) {
			return allowed
		}
	}
	return detected.String()
}

func translate(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	for _, fe := range verrs {
		switch fe.Field() {
		case "Title":
			return ErrEmptyTitle
		case "Priority":
			return ErrInvalidPriority
		case "Status":
			return ErrInvalidStatus
		}
	}
	return err
}

package syncer

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"

	"planner/internal/model"
	"planner/internal/state"
)

// AttachmentLink is an attachment with a freshly signed download URL.
type AttachmentLink struct {
	model.Attachment
	URL string `json:"url"`
}

// UploadAttachment validates the file, stores the object and records the
// attachment row. The object is removed again when the row cannot be
// written.
func (s *Syncer) UploadAttachment(ctx context.Context, taskID uuid.UUID, upload model.Upload) (model.Attachment, error) {
	contentType, err := model.ValidateUpload(upload, s.maxUpload)
	if err != nil {
		return model.Attachment{}, err
	}
	if _, ok := s.store.Task(taskID); !ok {
		return model.Attachment{}, state.ErrTaskNotFound
	}

	path := s.objectPath(taskID, upload.FileName, contentType)
	size, err := s.remote.UploadObject(ctx, path, bytes.NewReader(upload.Data))
	if err != nil {
		s.notify("upload attachment", "Failed to upload file", err)
		return model.Attachment{}, fmt.Errorf("upload object: %w", err)
	}

	attachment, err := Attempt(ctx, "upload attachment", nil,
		func(ctx context.Context) (model.Attachment, error) {
			return s.remote.CreateAttachment(ctx, model.Attachment{
				UserID:     s.remote.UserID(),
				TaskID:     taskID,
				FileName:   upload.FileName,
				FileType:   contentType,
				ObjectPath: path,
				FileSize:   &size,
			})
		},
		s.store.ApplyAttachmentAdded,
	)
	if err != nil {
		if derr := s.remote.DeleteObject(ctx, path); derr != nil {
			err = multierror.Append(err, fmt.Errorf("remove orphaned object: %w", derr))
		}
		s.notify("upload attachment", "Failed to upload file", err)
		return model.Attachment{}, err
	}
	return attachment, nil
}

// objectPath builds {owner}/{task}/{unix-millis}.{ext}.
func (s *Syncer) objectPath(taskID uuid.UUID, fileName, contentType string) string {
	ext := strings.TrimPrefix(filepath.Ext(fileName), ".")
	if ext == "" {
		if m := mimetype.Lookup(contentType); m != nil {
			ext = strings.TrimPrefix(m.Extension(), ".")
		}
	}
	if ext == "" {
		ext = "bin"
	}
	return fmt.Sprintf("%s/%s/%d.%s", s.remote.UserID(), taskID, s.now().UnixMilli(), strings.ToLower(ext))
}

func (s *Syncer) DeleteAttachment(ctx context.Context, id uuid.UUID) error {
	if _, ok := s.store.Attachment(id); !ok {
		return state.ErrAttachmentNotFound
	}
	if err := s.remote.DeleteAttachment(ctx, id); err != nil {
		s.notify("delete attachment", "Failed to delete attachment", err)
		return fmt.Errorf("delete attachment: %w", err)
	}
	return s.store.ApplyAttachmentRemoved(id)
}

// AttachmentLinks signs a URL for every attachment of a task, newest first.
func (s *Syncer) AttachmentLinks(taskID uuid.UUID) ([]AttachmentLink, error) {
	if _, ok := s.store.Task(taskID); !ok {
		return nil, state.ErrTaskNotFound
	}
	attachments := s.store.Attachments(taskID)
	links := make([]AttachmentLink, 0, len(attachments))
	for _, a := range attachments {
		url, err := s.remote.SignedURL(a.ObjectPath)
		if err != nil {
			return nil, fmt.Errorf("sign %s: %w", a.ID, err)
		}
		links = append(links, AttachmentLink{Attachment: a, URL: url})
	}
	return links, nil
}

package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"time"

	"github.com/dmitrijs2005/gopherblog/internal/common"
	"github.com/dmitrijs2005/gopherblog/internal/logging"
	"github.com/dmitrijs2005/gopherblog/internal/server/auth"
	"github.com/dmitrijs2005/gopherblog/internal/server/images"
	"github.com/dmitrijs2005/gopherblog/internal/server/repositories/repomanager"
	"github.com/gabriel-vasile/mimetype"
)

// AllowedImageTypes lists the accepted upload content types.
var AllowedImageTypes = []string{"image/jpeg", "image/png", "image/jpg"}

// sniffLen is how much of an upload is inspected to detect its type.
const sniffLen = 3072

// UploadFile is one uploaded file as received by the transport.
type UploadFile struct {
	Name    string
	Size    int64
	Content io.Reader
}

type ImageService struct {
	repomanager repomanager.RepositoryManager
	store       images.Store
	logger      logging.Logger
	maxSize     int64
	now         func() time.Time
}

func NewImageService(m repomanager.RepositoryManager, store images.Store, logger logging.Logger, maxSize int64) *ImageService {
	return &ImageService{repomanager: m, store: store, logger: logger, maxSize: maxSize, now: time.Now}
}

// Upload stores file and returns its relative path. A file whose content
// is not an allowed image counts as no file at all. When oldPath is set the
// previous image is removed after the new one is stored; failing to remove
// it is only logged, and an image another user's post still references is
// kept.
func (s *ImageService) Upload(ctx context.Context, id auth.Identity, file *UploadFile, oldPath string) (string, error) {
	if err := requireAuth(id); err != nil {
		return "", err
	}
	if file == nil || file.Content == nil {
		return "", common.Validation(common.MsgNoFile, nil)
	}
	if s.maxSize > 0 && file.Size > s.maxSize {
		return "", common.Validation(common.MsgFileTooLarge, nil)
	}
	if oldPath != "" {
		name, err := images.CleanPath(oldPath)
		if err != nil {
			return "", common.Forbidden(common.MsgInvalidFilePath)
		}
		oldPath = images.Prefix + name
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(file.Content, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", common.AsAppError(err)
	}
	head = head[:n]

	mime := mimetype.Detect(head)
	if !mimetype.EqualsAny(mime.String(), AllowedImageTypes...) {
		return "", common.Validation(common.MsgNoFile, nil)
	}

	name := images.FileName(file.Name, mime.Extension(), s.now())
	body := io.MultiReader(bytes.NewReader(head), file.Content)

	path, err := s.store.Save(ctx, name, mime.String(), body, file.Size)
	if err != nil {
		return "", storageFailure(ctx, s.logger, "save image", err)
	}

	if oldPath != "" {
		removeImage(ctx, s.repomanager, s.store, s.logger, oldPath, id.UserID)
	}

	return path, nil
}

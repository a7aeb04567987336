package file

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	common_models "eduvibe/internal/common/models"
	"eduvibe/internal/config"
	"eduvibe/internal/features/access"
	"eduvibe/internal/features/audit"
	"eduvibe/pkg/apperrors"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type FileService interface {
	Upload(ctx context.Context, caller access.AccessContext, meta Upload, body io.Reader) (*File, error)
	ListMine(ctx context.Context, caller access.AccessContext, page, limit int64) ([]File, int64, error)
	// Open returns the metadata and the on-disk path of a file the caller may read.
	Open(ctx context.Context, caller access.AccessContext, id string) (*File, string, error)
	Delete(ctx context.Context, caller access.AccessContext, id string) error
}

type FileServiceImpl struct {
	FileRepo     FileRepository
	Storage      Storage
	AuditService audit.AuditService
	MaxSize      int64
	AllowedMIMEs []string
	Logger       *zap.Logger
}

func NewFileService(fileRepo FileRepository, storage Storage, auditService audit.AuditService, cfg *config.Config, logger *zap.Logger) FileService {
	return &FileServiceImpl{
		FileRepo:     fileRepo,
		Storage:      storage,
		AuditService: auditService,
		MaxSize:      cfg.Uploads.MaxSizeBytes,
		AllowedMIMEs: cfg.Uploads.AllowedMIMEs,
		Logger:       logger,
	}
}

func (s *FileServiceImpl) Upload(ctx context.Context, caller access.AccessContext, meta Upload, body io.Reader) (*File, error) {
	if !access.CanPerform(caller, access.ActionCreate, access.ResourceFile) {
		return nil, apperrors.ErrForbidden
	}
	if meta.Size > s.MaxSize {
		return nil, s.tooLarge()
	}

	data, err := io.ReadAll(io.LimitReader(body, s.MaxSize+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > s.MaxSize {
		return nil, s.tooLarge()
	}
	if len(data) == 0 {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "file is empty")
	}

	// The declared content type is ignored; the body decides.
	detected := mimetype.Detect(data)
	if !s.allowed(detected) {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, fmt.Sprintf("file type not allowed: %s", detected.String()))
	}

	f := &File{
		ID:               primitive.NewObjectID(),
		OwnerID:          caller.UserID,
		OriginalFilename: cleanName(meta.Filename),
		StoredName:       uuid.NewString() + detected.Extension(),
		Size:             int64(len(data)),
		MimeType:         detected.String(),
		SessionID:        meta.SessionID,
		Description:      strings.TrimSpace(meta.Description),
		CreatedAt:        time.Now().UTC(),
	}
	f.URL = "/api/files/" + f.ID.Hex() + "/download"

	if err := s.Storage.Save(f.StoredName, data); err != nil {
		return nil, err
	}
	if err := s.FileRepo.Save(ctx, f); err != nil {
		if rmErr := s.Storage.Remove(f.StoredName); rmErr != nil {
			s.Logger.Warn("orphaned upload", zap.String("name", f.StoredName), zap.Error(rmErr))
		}
		return nil, err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionCreate, "files", f.ID.Hex(), map[string]common_models.Change{
		"name": {New: f.OriginalFilename},
		"size": {New: f.Size},
	})
	return f, nil
}

func (s *FileServiceImpl) ListMine(ctx context.Context, caller access.AccessContext, page, limit int64) ([]File, int64, error) {
	if !access.CanPerform(caller, access.ActionList, access.ResourceFile) {
		return nil, 0, apperrors.ErrForbidden
	}
	return s.FileRepo.ListByOwner(ctx, caller.UserID, limit, (page-1)*limit)
}

func (s *FileServiceImpl) Open(ctx context.Context, caller access.AccessContext, id string) (*File, string, error) {
	f, err := s.FileRepo.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if !access.CanPerform(caller.ForResource(id, f.OwnerID), access.ActionReadOwn, access.ResourceFile) {
		return nil, "", apperrors.ErrForbidden
	}
	return f, s.Storage.Path(f.StoredName), nil
}

func (s *FileServiceImpl) Delete(ctx context.Context, caller access.AccessContext, id string) error {
	f, err := s.FileRepo.Get(ctx, id)
	if err != nil {
		return err
	}
	if !access.CanPerform(caller.ForResource(id, f.OwnerID), access.ActionDeleteOwn, access.ResourceFile) &&
		!access.CanPerform(caller, access.ActionDelete, access.ResourceFile) {
		return apperrors.WithMessage(apperrors.ErrForbidden, "you can only delete your own files")
	}

	if err := s.Storage.Remove(f.StoredName); err != nil {
		return err
	}
	if err := s.FileRepo.Delete(ctx, f.ID); err != nil {
		return err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionDelete, "files", id, map[string]common_models.Change{
		"name": {Old: f.OriginalFilename},
	})
	return nil
}

func (s *FileServiceImpl) allowed(detected *mimetype.MIME) bool {
	if len(s.AllowedMIMEs) == 0 {
		return true
	}
	for _, m := range s.AllowedMIMEs {
		if detected.Is(m) {
			return true
		}
	}
	return false
}

func (s *FileServiceImpl) tooLarge() error {
	return apperrors.WithMessage(apperrors.ErrValidation, fmt.Sprintf("file too large (max %dMB)", s.MaxSize>>20))
}

func cleanName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "upload"
	}
	return name
}

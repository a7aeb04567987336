package user

import (
	"context"
	"time"

	common_models "eduvibe/internal/common/models"
	"eduvibe/internal/features/access"
	"eduvibe/internal/features/audit"
	"eduvibe/pkg/apperrors"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var (
	ErrEmailTaken   = apperrors.WithMessage(apperrors.ErrConflict, "email is already registered")
	ErrSelfRoleEdit = apperrors.WithMessage(apperrors.ErrForbidden, "you cannot change your own role")
)

type UserService interface {
	CreateUser(ctx context.Context, user *User) error
	GetUser(ctx context.Context, caller access.AccessContext, id string) (*User, error)
	ListUsers(ctx context.Context, filter ListFilter, page, limit int64) ([]User, int64, error)
	SetActive(ctx context.Context, id string, active bool) error
	ChangeRole(ctx context.Context, caller access.AccessContext, id string, role access.Role) error
	UpdateOwnProfile(ctx context.Context, caller access.AccessContext, req UpdateProfileRequest) (*User, error)
	NamesByIDs(ctx context.Context, ids []string) (map[string]string, error)
}

type UserServiceImpl struct {
	UserRepo     UserRepository
	AuditService audit.AuditService
	Logger       *zap.Logger
}

func NewUserService(userRepo UserRepository, auditService audit.AuditService, logger *zap.Logger) UserService {
	return &UserServiceImpl{
		UserRepo:     userRepo,
		AuditService: auditService,
		Logger:       logger,
	}
}

func (s *UserServiceImpl) CreateUser(ctx context.Context, user *User) error {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	if err := s.UserRepo.Create(ctx, user); err != nil {
		return err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionCreate, "users", user.ID.Hex(), map[string]common_models.Change{
		"email": {New: user.Email},
		"role":  {New: user.Role},
	})
	return nil
}

// GetUser lets admins read anyone and everyone else read only themselves.
func (s *UserServiceImpl) GetUser(ctx context.Context, caller access.AccessContext, id string) (*User, error) {
	if !access.CanPerform(caller, access.ActionRead, access.ResourceUser) &&
		!access.CanPerform(caller.ForResource(id, id), access.ActionReadOwn, access.ResourceUser) {
		return nil, apperrors.ErrForbidden
	}
	return s.UserRepo.FindByID(ctx, id)
}

func (s *UserServiceImpl) ListUsers(ctx context.Context, filter ListFilter, page, limit int64) ([]User, int64, error) {
	if page < 1 {
		page = 1
	}
	return s.UserRepo.List(ctx, filter, limit, (page-1)*limit)
}

func (s *UserServiceImpl) SetActive(ctx context.Context, id string, active bool) error {
	existing, err := s.UserRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.UserRepo.SetActive(ctx, id, active); err != nil {
		return err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionStatus, "users", id, map[string]common_models.Change{
		"is_active": {Old: existing.IsActive, New: active},
	})
	s.Logger.Info("user status changed", zap.String("user_id", id), zap.Bool("active", active))
	return nil
}

func (s *UserServiceImpl) ChangeRole(ctx context.Context, caller access.AccessContext, id string, role access.Role) error {
	if caller.UserID == id {
		return ErrSelfRoleEdit
	}
	if _, ok := access.ParseRole(string(role)); !ok {
		return apperrors.WithMessage(apperrors.ErrValidation, "unknown role")
	}

	existing, err := s.UserRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.Role == role {
		return nil
	}
	if err := s.UserRepo.UpdateRole(ctx, id, role); err != nil {
		return err
	}

	_ = s.AuditService.LogChange(ctx, common_models.AuditActionUpdate, "users", id, map[string]common_models.Change{
		"role": {Old: existing.Role, New: role},
	})
	return nil
}

func (s *UserServiceImpl) UpdateOwnProfile(ctx context.Context, caller access.AccessContext, req UpdateProfileRequest) (*User, error) {
	if !access.HasPermission(caller, access.PermManageOwnProfile) {
		return nil, apperrors.ErrForbidden
	}
	if err := s.UserRepo.UpdateProfile(ctx, caller.UserID, req); err != nil {
		return nil, err
	}
	return s.UserRepo.FindByID(ctx, caller.UserID)
}

// NamesByIDs resolves display names for audit listings.
func (s *UserServiceImpl) NamesByIDs(ctx context.Context, ids []string) (map[string]string, error) {
	return NewNameDirectory(s.UserRepo).NamesByIDs(ctx, ids)
}

package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	common_models "eduvibe/internal/common/models"
	"eduvibe/internal/features/access"
	"eduvibe/internal/features/audit"
	"eduvibe/internal/features/user"
	"eduvibe/pkg/apperrors"
	"eduvibe/pkg/utils"

	"go.uber.org/zap"
)

// WelcomeMailer sends the post-registration email.
type WelcomeMailer interface {
	SendWelcome(ctx context.Context, to, name string, role access.Role) error
}

type Session struct {
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expires_at"`
	User      *user.User `json:"user"`
}

type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*user.User, error)
	Login(ctx context.Context, email, password string) (*Session, error)
	Me(ctx context.Context, userID string) (*user.User, error)
}

type AuthServiceImpl struct {
	UserRepo     user.UserRepository
	UserService  user.UserService
	AuditService audit.AuditService
	Mailer       WelcomeMailer
	Logger       *zap.Logger
}

func NewAuthService(userRepo user.UserRepository, userService user.UserService, auditService audit.AuditService, mailer WelcomeMailer, logger *zap.Logger) AuthService {
	return &AuthServiceImpl{
		UserRepo:     userRepo,
		UserService:  userService,
		AuditService: auditService,
		Mailer:       mailer,
		Logger:       logger,
	}
}

// Register creates a student or mentor account. Staff roles are granted only through role changes.
func (s *AuthServiceImpl) Register(ctx context.Context, req RegisterRequest) (*user.User, error) {
	role, ok := access.ParseRole(req.Role)
	if !ok || !access.HasRole(role, access.RoleStudent, access.RoleMentor) {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "role must be student or mentor")
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternal, "")
	}

	newUser := &user.User{
		Name:      strings.TrimSpace(req.Name),
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Password:  hashed,
		Role:      role,
		IsActive:  true,
		Interests: req.Interests,
		Languages: req.Languages,
	}

	if err := s.UserService.CreateUser(ctx, newUser); err != nil {
		return nil, err
	}

	s.Logger.Info("user registered", zap.String(logFieldUserID, newUser.ID.Hex()), zap.String("role", string(role)))

	if s.Mailer != nil {
		go func(to, name string, role access.Role) {
			mailCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := s.Mailer.SendWelcome(mailCtx, to, name, role); err != nil {
				s.Logger.Warn("welcome email failed", zap.String("to", to), zap.Error(err))
			}
		}(newUser.Email, newUser.Name, role)
	}

	return newUser, nil
}

func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (*Session, error) {
	usr, err := s.UserRepo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if !utils.CheckPassword(usr.Password, password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	if !usr.IsActive {
		return nil, apperrors.ErrInactiveAccount
	}

	token, expiresAt, err := utils.GenerateToken(usr.ID.Hex(), usr.Email, string(usr.Role))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternal, "")
	}

	now := time.Now().UTC()
	if err := s.UserRepo.TouchLogin(ctx, usr.ID.Hex(), now); err != nil {
		s.Logger.Warn("failed to record last login", zap.String(logFieldUserID, usr.ID.Hex()), zap.Error(err))
	}
	usr.LastLogin = &now

	_ = s.AuditService.LogChange(utils.WithClaims(ctx, &utils.UserClaims{UserID: usr.ID.Hex(), Role: string(usr.Role)}),
		common_models.AuditActionLogin, "users", usr.ID.Hex(), nil)

	return &Session{Token: token, ExpiresAt: expiresAt, User: usr}, nil
}

func (s *AuthServiceImpl) Me(ctx context.Context, userID string) (*user.User, error) {
	return s.UserRepo.FindByID(ctx, userID)
}

const logFieldUserID = "user_id"

package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/support-desk/internal/auth"
	"github.com/spec-kit/support-desk/internal/config"
	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/repository"
	apperrors "github.com/spec-kit/support-desk/pkg/util"
)

// AuthService registers accounts and issues tokens.
type AuthService struct {
	profiles repository.ProfileRepository
	tokens   *auth.TokenManager
	cfg      config.AuthConfig
}

// NewAuthService constructs the service.
func NewAuthService(profiles repository.ProfileRepository, tokens *auth.TokenManager, cfg config.AuthConfig) *AuthService {
	return &AuthService{profiles: profiles, tokens: tokens, cfg: cfg}
}

// RegisterInput describes a signup payload.
type RegisterInput struct {
	Email    string
	FullName string
	Password string
}

// AuthResult is a profile plus its session token.
type AuthResult struct {
	Profile   *domain.Profile
	Token     string
	ExpiresAt time.Time
}

// Register creates a customer account. Roles are only elevated later by
// an admin.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperrors.NewValidationError("a valid email is required", nil)
	}
	if len(input.Password) < 8 {
		return nil, apperrors.NewValidationError("password must be at least 8 characters", nil)
	}

	if _, err := s.profiles.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("email already registered", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password, s.cfg.BcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	profile := &domain.Profile{
		Email:        email,
		FullName:     strings.TrimSpace(input.FullName),
		PasswordHash: hash,
		Role:         domain.RoleCustomer,
	}
	if err := s.profiles.Create(ctx, profile); err != nil {
		return nil, err
	}
	return s.issue(profile)
}

// Login verifies credentials and issues a token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	profile, err := s.profiles.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, err
	}
	if err := auth.ComparePassword(profile.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	return s.issue(profile)
}

// ChangeRole elevates or demotes an account. Admins cannot demote
// themselves, which keeps at least the acting admin in place.
func (s *AuthService) ChangeRole(ctx context.Context, actor *domain.Profile, profileID string, role domain.Role) (*domain.Profile, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.NewForbidden("admin access required")
	}
	if !domain.ValidRole(role) {
		return nil, apperrors.NewValidationError("unknown role", map[string]any{"role": string(role)})
	}
	if profileID == actor.ID && role != domain.RoleAdmin {
		return nil, apperrors.NewConflict("cannot demote own account", nil)
	}
	if err := s.profiles.UpdateRole(ctx, profileID, role); err != nil {
		return nil, err
	}
	return s.profiles.GetByID(ctx, profileID)
}

// ListUsers pages through accounts for the admin surface.
func (s *AuthService) ListUsers(ctx context.Context, actor *domain.Profile, limit, offset int) ([]domain.Profile, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.NewForbidden("admin access required")
	}
	return s.profiles.List(ctx, limit, offset)
}

func (s *AuthService) issue(profile *domain.Profile) (*AuthResult, error) {
	token, expiresAt, err := s.tokens.GenerateToken(profile.ID, profile.Role)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &AuthResult{Profile: profile, Token: token, ExpiresAt: expiresAt}, nil
}

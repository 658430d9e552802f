package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/support-desk/internal/auth"
	"github.com/spec-kit/support-desk/internal/config"
	"github.com/spec-kit/support-desk/internal/domain"
	apperrors "github.com/spec-kit/support-desk/pkg/util"
)

func newAuthFixture(seed ...*domain.Profile) (*AuthService, *fakeProfileRepo) {
	profiles := newFakeProfileRepo(seed...)
	tokens := auth.NewTokenManager("test-secret", 60)
	s := NewAuthService(profiles, tokens, config.AuthConfig{BcryptCost: bcrypt.MinCost})
	return s, profiles
}

func TestRegisterIssuesCustomerToken(t *testing.T) {
	s, profiles := newAuthFixture()

	result, err := s.Register(context.Background(), RegisterInput{
		Email:    "  New.User@Example.COM ",
		FullName: "New User",
		Password: "correct horse",
	})
	require.NoError(t, err)

	assert.Equal(t, "new.user@example.com", result.Profile.Email)
	assert.Equal(t, domain.RoleCustomer, result.Profile.Role)
	assert.NotEmpty(t, result.Token)
	assert.True(t, result.ExpiresAt.After(result.Profile.CreatedAt))

	stored, err := profiles.GetByEmail(context.Background(), "new.user@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", stored.PasswordHash)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	s, _ := newAuthFixture()

	input := RegisterInput{Email: "dup@example.com", FullName: "First", Password: "long enough"}
	_, err := s.Register(context.Background(), input)
	require.NoError(t, err)

	_, err = s.Register(context.Background(), input)
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperrors.ToDomainError(err).Code)
}

func TestRegisterValidatesInput(t *testing.T) {
	s, _ := newAuthFixture()

	_, err := s.Register(context.Background(), RegisterInput{Email: "not-an-email", Password: "long enough"})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)

	_, err = s.Register(context.Background(), RegisterInput{Email: "ok@example.com", Password: "short"})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	s, _ := newAuthFixture()

	_, err := s.Register(context.Background(), RegisterInput{Email: "user@example.com", FullName: "User", Password: "long enough"})
	require.NoError(t, err)

	result, err := s.Login(context.Background(), "USER@example.com", "long enough")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)

	_, err = s.Login(context.Background(), "user@example.com", "wrong password")
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", apperrors.ToDomainError(err).Code)

	_, err = s.Login(context.Background(), "nobody@example.com", "long enough")
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", apperrors.ToDomainError(err).Code)
}

func TestChangeRoleRequiresAdmin(t *testing.T) {
	s, _ := newAuthFixture(workerProfile("worker-1"), customerProfile("customer-1"))

	_, err := s.ChangeRole(context.Background(), workerProfile("worker-1"), "customer-1", domain.RoleWorker)
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperrors.ToDomainError(err).Code)
}

func TestChangeRolePromotesAccount(t *testing.T) {
	s, _ := newAuthFixture(adminProfile("admin-1"), customerProfile("customer-1"))

	updated, err := s.ChangeRole(context.Background(), adminProfile("admin-1"), "customer-1", domain.RoleWorker)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleWorker, updated.Role)

	_, err = s.ChangeRole(context.Background(), adminProfile("admin-1"), "customer-1", domain.Role("superuser"))
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
}

func TestChangeRoleCannotDemoteSelf(t *testing.T) {
	s, _ := newAuthFixture(adminProfile("admin-1"))

	_, err := s.ChangeRole(context.Background(), adminProfile("admin-1"), "admin-1", domain.RoleWorker)
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperrors.ToDomainError(err).Code)
}

func TestListUsersRequiresAdmin(t *testing.T) {
	s, _ := newAuthFixture(adminProfile("admin-1"), customerProfile("customer-1"))

	_, err := s.ListUsers(context.Background(), customerProfile("customer-1"), 50, 0)
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperrors.ToDomainError(err).Code)

	users, err := s.ListUsers(context.Background(), adminProfile("admin-1"), 50, 0)
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/support-desk/internal/domain"
	apperrors "github.com/spec-kit/support-desk/pkg/util"
)

type fakeTemplateRepo struct {
	templates map[string]*domain.ResponseTemplate
	seq       int
}

func newFakeTemplateRepo() *fakeTemplateRepo {
	return &fakeTemplateRepo{templates: map[string]*domain.ResponseTemplate{}}
}

func (f *fakeTemplateRepo) Create(ctx context.Context, tmpl *domain.ResponseTemplate) error {
	f.seq++
	tmpl.ID = fmt.Sprintf("template-%d", f.seq)
	tmpl.CreatedAt = testClock
	tmpl.UpdatedAt = testClock
	clone := *tmpl
	f.templates[tmpl.ID] = &clone
	return nil
}

func (f *fakeTemplateRepo) Update(ctx context.Context, tmpl *domain.ResponseTemplate) error {
	if _, ok := f.templates[tmpl.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *tmpl
	f.templates[tmpl.ID] = &clone
	return nil
}

func (f *fakeTemplateRepo) GetByID(ctx context.Context, id string) (*domain.ResponseTemplate, error) {
	stored, ok := f.templates[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *stored
	return &clone, nil
}

func (f *fakeTemplateRepo) ListByUser(ctx context.Context, userID string) ([]domain.ResponseTemplate, error) {
	var out []domain.ResponseTemplate
	for _, stored := range f.templates {
		if stored.UserID == userID {
			out = append(out, *stored)
		}
	}
	return out, nil
}

func (f *fakeTemplateRepo) Delete(ctx context.Context, id string) error {
	delete(f.templates, id)
	return nil
}

func TestTemplatesArePrivateToOwner(t *testing.T) {
	s := NewTemplateService(newFakeTemplateRepo())

	owner := workerProfile("worker-1")
	other := workerProfile("worker-2")

	tmpl, err := s.Create(context.Background(), owner, TemplateInput{Title: "Greeting", Content: "Hello, thanks for reaching out."})
	require.NoError(t, err)

	_, err = s.Update(context.Background(), other, tmpl.ID, TemplateInput{Title: "Hijacked", Content: "nope"})
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperrors.ToDomainError(err).Code)

	err = s.Delete(context.Background(), other, tmpl.ID)
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperrors.ToDomainError(err).Code)

	mine, err := s.List(context.Background(), owner)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	theirs, err := s.List(context.Background(), other)
	require.NoError(t, err)
	assert.Empty(t, theirs)
}

func TestUpdateTemplateEditsInPlace(t *testing.T) {
	s := NewTemplateService(newFakeTemplateRepo())
	owner := workerProfile("worker-1")

	tmpl, err := s.Create(context.Background(), owner, TemplateInput{Title: "Greeting", Content: "Hello."})
	require.NoError(t, err)

	updated, err := s.Update(context.Background(), owner, tmpl.ID, TemplateInput{Title: "Sign-off", Content: "Best regards."})
	require.NoError(t, err)
	assert.Equal(t, tmpl.ID, updated.ID)
	assert.Equal(t, "Sign-off", updated.Title)
	assert.Equal(t, "Best regards.", updated.Content)
}

func TestTemplateValidation(t *testing.T) {
	s := NewTemplateService(newFakeTemplateRepo())
	owner := workerProfile("worker-1")

	_, err := s.Create(context.Background(), owner, TemplateInput{Title: "   ", Content: "body"})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)

	_, err = s.Create(context.Background(), owner, TemplateInput{Title: "Greeting", Content: "   "})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
}

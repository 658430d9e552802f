package service

import (
	"context"
	"strings"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/repository"
	apperrors "github.com/spec-kit/support-desk/pkg/util"
)

// TemplateService manages per-user saved replies. Templates are private
// to their owner.
type TemplateService struct {
	templates repository.TemplateRepository
}

// NewTemplateService constructs the service.
func NewTemplateService(templates repository.TemplateRepository) *TemplateService {
	return &TemplateService{templates: templates}
}

// TemplateInput describes a template create/update payload.
type TemplateInput struct {
	Title   string
	Content string
}

func validateTemplateInput(input *TemplateInput) error {
	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return apperrors.NewValidationError("title is required", nil)
	}
	if strings.TrimSpace(input.Content) == "" {
		return apperrors.NewValidationError("content is required", nil)
	}
	return nil
}

// Create saves a new template for the actor.
func (s *TemplateService) Create(ctx context.Context, actor *domain.Profile, input TemplateInput) (*domain.ResponseTemplate, error) {
	if err := validateTemplateInput(&input); err != nil {
		return nil, err
	}
	tmpl := &domain.ResponseTemplate{
		UserID:  actor.ID,
		Title:   input.Title,
		Content: input.Content,
	}
	if err := s.templates.Create(ctx, tmpl); err != nil {
		return nil, err
	}
	return tmpl, nil
}

// Update edits one of the actor's templates.
func (s *TemplateService) Update(ctx context.Context, actor *domain.Profile, id string, input TemplateInput) (*domain.ResponseTemplate, error) {
	if err := validateTemplateInput(&input); err != nil {
		return nil, err
	}
	tmpl, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	tmpl.Title = input.Title
	tmpl.Content = input.Content
	if err := s.templates.Update(ctx, tmpl); err != nil {
		return nil, err
	}
	return tmpl, nil
}

// Delete removes one of the actor's templates.
func (s *TemplateService) Delete(ctx context.Context, actor *domain.Profile, id string) error {
	if _, err := s.owned(ctx, actor, id); err != nil {
		return err
	}
	return s.templates.Delete(ctx, id)
}

// List returns the actor's templates.
func (s *TemplateService) List(ctx context.Context, actor *domain.Profile) ([]domain.ResponseTemplate, error) {
	return s.templates.ListByUser(ctx, actor.ID)
}

func (s *TemplateService) owned(ctx context.Context, actor *domain.Profile, id string) (*domain.ResponseTemplate, error) {
	tmpl, err := s.templates.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if tmpl.UserID != actor.ID {
		return nil, apperrors.NewForbidden("access denied")
	}
	return tmpl, nil
}

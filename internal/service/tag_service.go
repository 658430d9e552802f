package service

import (
	"context"
	"regexp"
	"strings"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/repository"
	apperrors "github.com/spec-kit/support-desk/pkg/util"
)

var hexColorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

const defaultTagColor = "#6b7280"

// TagService manages the tag catalog. Tickets hold tag ids as weak
// references, so deleting a tag here never touches ticket rows.
type TagService struct {
	tags repository.TagRepository
}

// NewTagService constructs the service.
func NewTagService(tags repository.TagRepository) *TagService {
	return &TagService{tags: tags}
}

// TagInput describes a tag create/update payload.
type TagInput struct {
	Name        string
	Color       string
	Description *string
}

func validateTagInput(input *TagInput) error {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return apperrors.NewValidationError("tag name is required", nil)
	}
	if input.Color == "" {
		input.Color = defaultTagColor
	}
	if !hexColorPattern.MatchString(input.Color) {
		return apperrors.NewValidationError("color must be a hex value like #aabbcc", map[string]any{"color": input.Color})
	}
	return nil
}

// Create adds a tag.
func (s *TagService) Create(ctx context.Context, input TagInput) (*domain.Tag, error) {
	if err := validateTagInput(&input); err != nil {
		return nil, err
	}
	tag := &domain.Tag{
		Name:        input.Name,
		Color:       input.Color,
		Description: input.Description,
	}
	if err := s.tags.Create(ctx, tag); err != nil {
		return nil, err
	}
	return tag, nil
}

// Update edits a tag in place.
func (s *TagService) Update(ctx context.Context, id string, input TagInput) (*domain.Tag, error) {
	if err := validateTagInput(&input); err != nil {
		return nil, err
	}
	tag := &domain.Tag{
		ID:          id,
		Name:        input.Name,
		Color:       input.Color,
		Description: input.Description,
	}
	if err := s.tags.Update(ctx, tag); err != nil {
		return nil, err
	}
	return tag, nil
}

// Delete removes a tag from the catalog. Ids already referenced by
// tickets become dangling and resolve to nothing when rendered.
func (s *TagService) Delete(ctx context.Context, id string) error {
	return s.tags.Delete(ctx, id)
}

// List returns the whole catalog.
func (s *TagService) List(ctx context.Context) ([]domain.Tag, error) {
	return s.tags.List(ctx)
}

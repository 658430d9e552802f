package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/repository"
	apperrors "github.com/spec-kit/support-desk/pkg/util"
)

// FieldsService manages custom field definitions and validates ticket
// values against them.
type FieldsService struct {
	defs repository.FieldDefinitionRepository
}

// NewFieldsService constructs the service.
func NewFieldsService(defs repository.FieldDefinitionRepository) *FieldsService {
	return &FieldsService{defs: defs}
}

// FieldDefinitionInput describes a definition create/update payload.
type FieldDefinitionInput struct {
	Name        string
	FieldType   domain.FieldType
	Options     []string
	Required    bool
	Description string
}

func validateDefinitionInput(input FieldDefinitionInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return apperrors.NewValidationError("field name is required", nil)
	}
	if !domain.ValidFieldType(input.FieldType) {
		return apperrors.NewValidationError("unknown field type", map[string]any{"field_type": string(input.FieldType)})
	}
	if input.FieldType == domain.FieldTypeSelect && len(input.Options) == 0 {
		return apperrors.NewValidationError("select fields need at least one option", nil)
	}
	return nil
}

// CreateDefinition adds a new custom field.
func (s *FieldsService) CreateDefinition(ctx context.Context, input FieldDefinitionInput) (*domain.FieldDefinition, error) {
	if err := validateDefinitionInput(input); err != nil {
		return nil, err
	}
	def := &domain.FieldDefinition{
		Name:        strings.TrimSpace(input.Name),
		FieldType:   input.FieldType,
		Options:     input.Options,
		Required:    input.Required,
		Description: input.Description,
	}
	if def.FieldType != domain.FieldTypeSelect {
		def.Options = nil
	}
	if err := s.defs.Create(ctx, def); err != nil {
		return nil, err
	}
	return def, nil
}

// UpdateDefinition replaces a definition. Existing ticket values are not
// re-validated against the new shape.
func (s *FieldsService) UpdateDefinition(ctx context.Context, id string, input FieldDefinitionInput) (*domain.FieldDefinition, error) {
	if err := validateDefinitionInput(input); err != nil {
		return nil, err
	}
	def, err := s.defs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	def.Name = strings.TrimSpace(input.Name)
	def.FieldType = input.FieldType
	def.Options = input.Options
	def.Required = input.Required
	def.Description = input.Description
	if def.FieldType != domain.FieldTypeSelect {
		def.Options = nil
	}
	if err := s.defs.Update(ctx, def); err != nil {
		return nil, err
	}
	return def, nil
}

// DeleteDefinition removes a definition. Values already stored on tickets
// stay in place.
func (s *FieldsService) DeleteDefinition(ctx context.Context, id string) error {
	return s.defs.Delete(ctx, id)
}

// ListDefinitions returns all definitions.
func (s *FieldsService) ListDefinitions(ctx context.Context) ([]domain.FieldDefinition, error) {
	return s.defs.List(ctx)
}

// ValidateValues checks a custom field value map against the current
// definitions and returns the normalized map. Keys without a definition
// are dropped and scalars are coerced to the field's type where they
// reasonably convert; only an absent required field, an unparseable
// number or date, or an unknown select option fails, with a message
// naming the field. An empty string is a value, not an omission.
func (s *FieldsService) ValidateValues(ctx context.Context, values map[string]any) (map[string]any, error) {
	defs, err := s.defs.List(ctx)
	if err != nil {
		return nil, err
	}

	normalized := make(map[string]any, len(values))
	for _, def := range defs {
		raw, present := values[def.Name]
		if !present || raw == nil {
			if def.Required {
				return nil, apperrors.NewValidationError(
					fmt.Sprintf("%s is required", def.Name),
					map[string]any{"field": def.Name})
			}
			continue
		}
		value, err := coerceFieldValue(def, raw)
		if err != nil {
			return nil, err
		}
		normalized[def.Name] = value
	}
	return normalized, nil
}

func coerceFieldValue(def domain.FieldDefinition, raw any) (any, error) {
	invalid := func(want string) error {
		return apperrors.NewValidationError(
			fmt.Sprintf("%s must be %s", def.Name, want),
			map[string]any{"field": def.Name, "field_type": string(def.FieldType)})
	}

	switch def.FieldType {
	case domain.FieldTypeText:
		// Any scalar is acceptable text; render it the way it arrived.
		switch v := raw.(type) {
		case string:
			return v, nil
		case bool:
			return strconv.FormatBool(v), nil
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64), nil
		case int:
			return strconv.Itoa(v), nil
		case int64:
			return strconv.FormatInt(v, 10), nil
		}
		return fmt.Sprint(raw), nil

	case domain.FieldTypeNumber:
		switch v := raw.(type) {
		case float64:
			return v, nil
		case int:
			return float64(v), nil
		case int64:
			return float64(v), nil
		case string:
			n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return nil, invalid("a number")
			}
			return n, nil
		}
		return nil, invalid("a number")

	case domain.FieldTypeDate:
		text, ok := raw.(string)
		if !ok {
			return nil, invalid("a valid date")
		}
		for _, layout := range []string{time.RFC3339, "2006-01-02"} {
			if _, err := time.Parse(layout, text); err == nil {
				return text, nil
			}
		}
		return nil, invalid("a valid date")

	case domain.FieldTypeBoolean:
		// Truthiness, not strict typing: non-empty strings and non-zero
		// numbers count as true. Never rejects.
		switch v := raw.(type) {
		case bool:
			return v, nil
		case string:
			return v != "", nil
		case float64:
			return v != 0, nil
		case int:
			return v != 0, nil
		case int64:
			return v != 0, nil
		}
		return true, nil

	case domain.FieldTypeSelect:
		text, ok := raw.(string)
		if !ok {
			return nil, invalid("one of the configured options")
		}
		for _, option := range def.Options {
			if option == text {
				return text, nil
			}
		}
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("%s must be one of: %s", def.Name, strings.Join(def.Options, ", ")),
			map[string]any{"field": def.Name})
	}
	return nil, invalid("a supported type")
}

package dto

import (
	"time"

	"github.com/spec-kit/support-desk/internal/domain"
)

// FieldDefinitionRequest payload.
type FieldDefinitionRequest struct {
	Name        string           `json:"name"`
	FieldType   domain.FieldType `json:"field_type"`
	Options     []string         `json:"options"`
	Required    bool             `json:"required"`
	Description string           `json:"description"`
}

// FieldDefinitionResponse represents a custom field definition.
type FieldDefinitionResponse struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	FieldType   domain.FieldType `json:"field_type"`
	Options     []string         `json:"options"`
	Required    bool             `json:"required"`
	Description string           `json:"description"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// TagRequest payload.
type TagRequest struct {
	Name        string  `json:"name"`
	Color       string  `json:"color"`
	Description *string `json:"description"`
}

// TagResponse represents a tag catalog entry.
type TagResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Color       string    `json:"color"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TemplateRequest payload.
type TemplateRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// TemplateResponse represents a saved reply.
type TemplateResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SettingRequest payload.
type SettingRequest struct {
	Value map[string]any `json:"value"`
}

// SettingResponse represents one configuration row.
type SettingResponse struct {
	Category  string         `json:"category"`
	Key       string         `json:"key"`
	Value     map[string]any `json:"value"`
	UpdatedAt time.Time      `json:"updated_at"`
	UpdatedBy *string        `json:"updated_by"`
}

// ArchiveRunRequest payload.
type ArchiveRunRequest struct {
	DaysOld int `json:"days_old"`
}

// ArchiveRunResponse reports how many tickets moved.
type ArchiveRunResponse struct {
	Archived int `json:"archived"`
}

// ArchivedTicketResponse represents an archived row.
type ArchivedTicketResponse struct {
	TicketSummary
	ArchivedAt time.Time `json:"archived_at"`
	ArchivedBy *string   `json:"archived_by"`
}

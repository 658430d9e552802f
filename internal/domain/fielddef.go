package domain

import "time"

// FieldType enumerates custom field value types.
type FieldType string

const (
	FieldTypeText    FieldType = "text"
	FieldTypeNumber  FieldType = "number"
	FieldTypeDate    FieldType = "date"
	FieldTypeBoolean FieldType = "boolean"
	FieldTypeSelect  FieldType = "select"
)

// ValidFieldType reports whether t is a known field type.
func ValidFieldType(t FieldType) bool {
	switch t {
	case FieldTypeText, FieldTypeNumber, FieldTypeDate, FieldTypeBoolean, FieldTypeSelect:
		return true
	}
	return false
}

// FieldDefinition shapes the custom_fields map stored per ticket. Options
// is only meaningful for select fields and is persisted as the full
// ordered array on each save. There is no referential enforcement between
// definitions and the values ticket rows already contain.
type FieldDefinition struct {
	ID          string
	Name        string
	FieldType   FieldType
	Options     []string
	Required    bool
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

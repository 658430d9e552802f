package domain

import "time"

// SystemSetting is one configuration row, keyed by (category, key) with a
// free-form JSON value.
type SystemSetting struct {
	ID        string
	Category  string
	Key       string
	Value     map[string]any
	UpdatedAt time.Time
	UpdatedBy *string
}

// Setting categories and keys used by the application.
const (
	SettingCategoryBusinessHours = "business_hours"
	SettingCategorySLA           = "sla"
	SettingCategoryTickets       = "tickets"
	SettingCategoryNotifications = "notifications"

	SettingKeySchedule   = "schedule"
	SettingKeyDeadlines  = "deadlines"
	SettingKeyDefaults   = "defaults"
	SettingKeyEmailPrefs = "email_preferences"
)

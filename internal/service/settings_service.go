package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/repository"
	apperrors "github.com/spec-kit/support-desk/pkg/util"
)

// SettingsService reads and writes system configuration rows. Every read
// merges stored rows over the built-in defaults, so a fresh database
// behaves the same as one where an admin saved the stock values.
type SettingsService struct {
	settings repository.SettingsRepository
}

// NewSettingsService constructs the service.
func NewSettingsService(settings repository.SettingsRepository) *SettingsService {
	return &SettingsService{settings: settings}
}

func defaultSettings() []domain.SystemSetting {
	return []domain.SystemSetting{
		{
			Category: domain.SettingCategoryBusinessHours,
			Key:      domain.SettingKeySchedule,
			Value: map[string]any{
				"timezone": "UTC",
				"weekdays": map[string]any{"start": "09:00", "end": "17:00"},
				"weekends": false,
			},
		},
		{
			Category: domain.SettingCategorySLA,
			Key:      domain.SettingKeyDeadlines,
			Value: map[string]any{
				"urgent": "4 hours",
				"high":   "8 hours",
				"medium": "24 hours",
				"low":    "48 hours",
			},
		},
		{
			Category: domain.SettingCategoryTickets,
			Key:      domain.SettingKeyDefaults,
			Value: map[string]any{
				"priority":    string(domain.TicketPriorityMedium),
				"auto_close":  false,
				"allow_reply": true,
			},
		},
		{
			Category: domain.SettingCategoryNotifications,
			Key:      domain.SettingKeyEmailPrefs,
			Value: map[string]any{
				"ticket_created":  true,
				"ticket_assigned": true,
				"comment_added":   true,
			},
		},
	}
}

// List returns every setting, stored rows overriding defaults.
func (s *SettingsService) List(ctx context.Context) ([]domain.SystemSetting, error) {
	stored, err := s.settings.List(ctx)
	if err != nil {
		return nil, err
	}
	byKey := make(map[string]domain.SystemSetting, len(stored))
	for _, row := range stored {
		byKey[row.Category+"/"+row.Key] = row
	}
	merged := defaultSettings()
	for i := range merged {
		if row, ok := byKey[merged[i].Category+"/"+merged[i].Key]; ok {
			merged[i] = row
		}
	}
	return merged, nil
}

// Get returns a single setting, falling back to its default.
func (s *SettingsService) Get(ctx context.Context, category, key string) (*domain.SystemSetting, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].Category == category && all[i].Key == key {
			return &all[i], nil
		}
	}
	return nil, apperrors.NewNotFound("setting", map[string]any{"category": category, "key": key})
}

// Save upserts a setting row.
func (s *SettingsService) Save(ctx context.Context, actorID string, category, key string, value map[string]any) (*domain.SystemSetting, error) {
	if category == "" || key == "" {
		return nil, apperrors.NewValidationError("category and key are required", nil)
	}
	if len(value) == 0 {
		return nil, apperrors.NewValidationError("value must not be empty", nil)
	}
	setting := &domain.SystemSetting{
		Category:  category,
		Key:       key,
		Value:     value,
		UpdatedBy: &actorID,
	}
	if err := s.settings.Upsert(ctx, setting); err != nil {
		return nil, err
	}
	return setting, nil
}

// SLADurations resolves the per-priority response windows, applying
// stored overrides on top of the stock table. Values are stored as human
// strings ("4 hours", "30 minutes"); a value that does not parse keeps
// the default for that priority.
func (s *SettingsService) SLADurations(ctx context.Context) (domain.SLADurations, error) {
	durations := domain.DefaultSLADurations()

	setting, err := s.Get(ctx, domain.SettingCategorySLA, domain.SettingKeyDeadlines)
	if err != nil {
		return durations, err
	}
	for raw, value := range setting.Value {
		priority := domain.TicketPriority(raw)
		if !domain.ValidPriority(priority) {
			continue
		}
		text, ok := value.(string)
		if !ok {
			continue
		}
		if d, ok := parseWindow(text); ok {
			durations[priority] = d
		}
	}
	return durations, nil
}

// DefaultPriority resolves the priority applied when a ticket is created
// without one.
func (s *SettingsService) DefaultPriority(ctx context.Context) domain.TicketPriority {
	setting, err := s.Get(ctx, domain.SettingCategoryTickets, domain.SettingKeyDefaults)
	if err != nil {
		return domain.TicketPriorityMedium
	}
	if raw, ok := setting.Value["priority"].(string); ok {
		if p := domain.TicketPriority(raw); domain.ValidPriority(p) {
			return p
		}
	}
	return domain.TicketPriorityMedium
}

// EmailEnabled reports whether email notifications for the given event
// name are switched on.
func (s *SettingsService) EmailEnabled(ctx context.Context, event string) bool {
	setting, err := s.Get(ctx, domain.SettingCategoryNotifications, domain.SettingKeyEmailPrefs)
	if err != nil {
		return false
	}
	enabled, ok := setting.Value[event].(bool)
	return ok && enabled
}

// parseWindow parses durations written as "<n> <unit>", e.g. "4 hours",
// "30 minutes", "2 days".
func parseWindow(text string) (time.Duration, bool) {
	parts := strings.Fields(strings.ToLower(strings.TrimSpace(text)))
	if len(parts) != 2 {
		return 0, false
	}
	amount, err := strconv.Atoi(parts[0])
	if err != nil || amount <= 0 {
		return 0, false
	}
	switch strings.TrimSuffix(parts[1], "s") {
	case "minute", "min":
		return time.Duration(amount) * time.Minute, true
	case "hour", "hr":
		return time.Duration(amount) * time.Hour, true
	case "day":
		return time.Duration(amount) * 24 * time.Hour, true
	}
	return 0, false
}

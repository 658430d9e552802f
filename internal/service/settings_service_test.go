package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/support-desk/internal/domain"
)

func TestParseWindow(t *testing.T) {
	cases := []struct {
		in   string
		want time.Duration
		ok   bool
	}{
		{"4 hours", 4 * time.Hour, true},
		{"1 hour", time.Hour, true},
		{"30 minutes", 30 * time.Minute, true},
		{"2 days", 48 * time.Hour, true},
		{"  8 Hours ", 8 * time.Hour, true},
		{"soon", 0, false},
		{"0 hours", 0, false},
		{"-1 hours", 0, false},
		{"4 fortnights", 0, false},
	}
	for _, tc := range cases {
		got, ok := parseWindow(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestSLADurationsAppliesOverrides(t *testing.T) {
	repo := &fakeSettingsRepo{rows: []domain.SystemSetting{{
		Category: domain.SettingCategorySLA,
		Key:      domain.SettingKeyDeadlines,
		Value: map[string]any{
			"urgent":  "1 hour",
			"low":     "not parseable",
			"unknown": "2 hours",
		},
	}}}
	s := NewSettingsService(repo)

	durations, err := s.SLADurations(context.Background())
	require.NoError(t, err)

	assert.Equal(t, time.Hour, durations[domain.TicketPriorityUrgent])
	// Unparseable and unknown entries fall back to defaults.
	assert.Equal(t, 48*time.Hour, durations[domain.TicketPriorityLow])
	assert.Equal(t, 24*time.Hour, durations[domain.TicketPriorityMedium])
}

func TestListMergesStoredOverDefaults(t *testing.T) {
	repo := &fakeSettingsRepo{rows: []domain.SystemSetting{{
		ID:       "setting-1",
		Category: domain.SettingCategoryTickets,
		Key:      domain.SettingKeyDefaults,
		Value:    map[string]any{"priority": "urgent"},
	}}}
	s := NewSettingsService(repo)

	settings, err := s.List(context.Background())
	require.NoError(t, err)
	require.Len(t, settings, len(defaultSettings()))

	ticketDefaults, err := s.Get(context.Background(), domain.SettingCategoryTickets, domain.SettingKeyDefaults)
	require.NoError(t, err)
	assert.Equal(t, "urgent", ticketDefaults.Value["priority"])

	sla, err := s.Get(context.Background(), domain.SettingCategorySLA, domain.SettingKeyDeadlines)
	require.NoError(t, err)
	assert.Equal(t, "4 hours", sla.Value["urgent"])
}

func TestDefaultPriority(t *testing.T) {
	s := NewSettingsService(&fakeSettingsRepo{})
	assert.Equal(t, domain.TicketPriorityMedium, s.DefaultPriority(context.Background()))

	s = NewSettingsService(&fakeSettingsRepo{rows: []domain.SystemSetting{{
		Category: domain.SettingCategoryTickets,
		Key:      domain.SettingKeyDefaults,
		Value:    map[string]any{"priority": "bogus"},
	}}})
	assert.Equal(t, domain.TicketPriorityMedium, s.DefaultPriority(context.Background()))
}

func TestSaveValidatesAndUpserts(t *testing.T) {
	repo := &fakeSettingsRepo{}
	s := NewSettingsService(repo)

	_, err := s.Save(context.Background(), "admin-1", "", "deadlines", map[string]any{"a": 1})
	require.Error(t, err)

	_, err = s.Save(context.Background(), "admin-1", "sla", "deadlines", nil)
	require.Error(t, err)

	saved, err := s.Save(context.Background(), "admin-1", "sla", "deadlines", map[string]any{"urgent": "1 hour"})
	require.NoError(t, err)
	require.NotNil(t, saved.UpdatedBy)
	assert.Equal(t, "admin-1", *saved.UpdatedBy)
	require.Len(t, repo.rows, 1)

	_, err = s.Save(context.Background(), "admin-2", "sla", "deadlines", map[string]any{"urgent": "2 hours"})
	require.NoError(t, err)
	assert.Len(t, repo.rows, 1)
}

package service

import (
	"context"

	"github.com/spec-kit/support-desk/internal/repository"
)

// AnalyticsService aggregates queue health numbers for the dashboard.
type AnalyticsService struct {
	analytics repository.AnalyticsRepository
}

// NewAnalyticsService constructs the service.
func NewAnalyticsService(analytics repository.AnalyticsRepository) *AnalyticsService {
	return &AnalyticsService{analytics: analytics}
}

// AnalyticsOverview is the dashboard payload.
type AnalyticsOverview struct {
	TotalTickets       int                     `json:"total_tickets"`
	ByStatus           map[string]int          `json:"by_status"`
	ByPriority         map[string]int          `json:"by_priority"`
	AvgResolutionHours float64                 `json:"avg_resolution_hours"`
	CreatedPerDay      []repository.DailyCount `json:"created_per_day"`
}

// Overview computes the dashboard numbers over the given trailing window.
func (s *AnalyticsService) Overview(ctx context.Context, days int) (*AnalyticsOverview, error) {
	if days <= 0 {
		days = 30
	}

	total, err := s.analytics.TotalTickets(ctx)
	if err != nil {
		return nil, err
	}
	byStatus, err := s.analytics.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	byPriority, err := s.analytics.CountByPriority(ctx)
	if err != nil {
		return nil, err
	}
	avgResolution, err := s.analytics.AvgResolutionHours(ctx)
	if err != nil {
		return nil, err
	}
	perDay, err := s.analytics.CreatedPerDay(ctx, days)
	if err != nil {
		return nil, err
	}

	return &AnalyticsOverview{
		TotalTickets:       total,
		ByStatus:           byStatus,
		ByPriority:         byPriority,
		AvgResolutionHours: avgResolution,
		CreatedPerDay:      perDay,
	}, nil
}

package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DailyCount is one point in the created-per-day series.
type DailyCount struct {
	Day   time.Time
	Count int
}

// AnalyticsRepository aggregates ticket metrics with SQL.
type AnalyticsRepository interface {
	TotalTickets(ctx context.Context) (int, error)
	CountByStatus(ctx context.Context) (map[string]int, error)
	CountByPriority(ctx context.Context) (map[string]int, error)
	AvgResolutionHours(ctx context.Context) (float64, error)
	CreatedPerDay(ctx context.Context, days int) ([]DailyCount, error)
}

type analyticsRepository struct {
	pool *pgxpool.Pool
}

// NewAnalyticsRepository instantiates repository.
func NewAnalyticsRepository(pool *pgxpool.Pool) AnalyticsRepository {
	return &analyticsRepository{pool: pool}
}

func (r *analyticsRepository) TotalTickets(ctx context.Context) (int, error) {
	var total int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM tickets`).Scan(&total)
	return total, err
}

func (r *analyticsRepository) CountByStatus(ctx context.Context) (map[string]int, error) {
	return r.countBy(ctx, `SELECT status, COUNT(*) FROM tickets GROUP BY status`)
}

func (r *analyticsRepository) CountByPriority(ctx context.Context) (map[string]int, error) {
	return r.countBy(ctx, `SELECT priority, COUNT(*) FROM tickets GROUP BY priority`)
}

func (r *analyticsRepository) countBy(ctx context.Context, query string) (map[string]int, error) {
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]int)
	for rows.Next() {
		var key string
		var count int
		if err := rows.Scan(&key, &count); err != nil {
			return nil, err
		}
		result[key] = count
	}
	return result, rows.Err()
}

func (r *analyticsRepository) AvgResolutionHours(ctx context.Context) (float64, error) {
	var avg *float64
	err := r.pool.QueryRow(ctx, `
        SELECT AVG(EXTRACT(EPOCH FROM (closed_at - created_at)) / 3600.0)
        FROM tickets WHERE closed_at IS NOT NULL`).Scan(&avg)
	if err != nil {
		return 0, err
	}
	if avg == nil {
		return 0, nil
	}
	return *avg, nil
}

func (r *analyticsRepository) CreatedPerDay(ctx context.Context, days int) ([]DailyCount, error) {
	if days <= 0 {
		days = 7
	}
	rows, err := r.pool.Query(ctx, `
        SELECT date_trunc('day', created_at) AS day, COUNT(*)
        FROM tickets
        WHERE created_at >= NOW() - ($1 || ' days')::interval
        GROUP BY day ORDER BY day`, days)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []DailyCount
	for rows.Next() {
		var point DailyCount
		if err := rows.Scan(&point.Day, &point.Count); err != nil {
			return nil, err
		}
		result = append(result, point)
	}
	return result, rows.Err()
}

package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/support-desk/internal/domain"
)

// SettingsRepository encapsulates system settings persistence.
type SettingsRepository interface {
	List(ctx context.Context) ([]domain.SystemSetting, error)
	Upsert(ctx context.Context, setting *domain.SystemSetting) error
}

type settingsRepository struct {
	pool *pgxpool.Pool
}

// NewSettingsRepository instantiates repository.
func NewSettingsRepository(pool *pgxpool.Pool) SettingsRepository {
	return &settingsRepository{pool: pool}
}

func (r *settingsRepository) List(ctx context.Context) ([]domain.SystemSetting, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, category, key, value, updated_at, updated_by FROM system_settings`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.SystemSetting
	for rows.Next() {
		var setting domain.SystemSetting
		if err := rows.Scan(
			&setting.ID,
			&setting.Category,
			&setting.Key,
			&setting.Value,
			&setting.UpdatedAt,
			&setting.UpdatedBy,
		); err != nil {
			return nil, err
		}
		result = append(result, setting)
	}
	return result, rows.Err()
}

func (r *settingsRepository) Upsert(ctx context.Context, setting *domain.SystemSetting) error {
	const query = `
        INSERT INTO system_settings (category, key, value, updated_by)
        VALUES ($1,$2,$3,$4)
        ON CONFLICT (category, key)
        DO UPDATE SET value=EXCLUDED.value, updated_at=NOW(), updated_by=EXCLUDED.updated_by
        RETURNING id, updated_at`
	return r.pool.QueryRow(ctx, query,
		setting.Category,
		setting.Key,
		setting.Value,
		setting.UpdatedBy,
	).Scan(&setting.ID, &setting.UpdatedAt)
}

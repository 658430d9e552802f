package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/support-desk/internal/domain"
)

// TemplateRepository encapsulates per-user response template persistence.
type TemplateRepository interface {
	Create(ctx context.Context, tmpl *domain.ResponseTemplate) error
	Update(ctx context.Context, tmpl *domain.ResponseTemplate) error
	GetByID(ctx context.Context, id string) (*domain.ResponseTemplate, error)
	ListByUser(ctx context.Context, userID string) ([]domain.ResponseTemplate, error)
	Delete(ctx context.Context, id string) error
}

type templateRepository struct {
	pool *pgxpool.Pool
}

// NewTemplateRepository instantiates repository.
func NewTemplateRepository(pool *pgxpool.Pool) TemplateRepository {
	return &templateRepository{pool: pool}
}

func (r *templateRepository) Create(ctx context.Context, tmpl *domain.ResponseTemplate) error {
	const query = `
        INSERT INTO response_templates (user_id, title, content)
        VALUES ($1,$2,$3)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		tmpl.UserID,
		tmpl.Title,
		tmpl.Content,
	).Scan(&tmpl.ID, &tmpl.CreatedAt, &tmpl.UpdatedAt)
}

func (r *templateRepository) Update(ctx context.Context, tmpl *domain.ResponseTemplate) error {
	const query = `
        UPDATE response_templates SET title=$1, content=$2, updated_at=NOW()
        WHERE id=$3
        RETURNING updated_at`
	return r.pool.QueryRow(ctx, query, tmpl.Title, tmpl.Content, tmpl.ID).Scan(&tmpl.UpdatedAt)
}

func (r *templateRepository) GetByID(ctx context.Context, id string) (*domain.ResponseTemplate, error) {
	var tmpl domain.ResponseTemplate
	if err := r.pool.QueryRow(ctx,
		`SELECT id, user_id, title, content, created_at, updated_at FROM response_templates WHERE id=$1`,
		id).Scan(
		&tmpl.ID,
		&tmpl.UserID,
		&tmpl.Title,
		&tmpl.Content,
		&tmpl.CreatedAt,
		&tmpl.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &tmpl, nil
}

func (r *templateRepository) ListByUser(ctx context.Context, userID string) ([]domain.ResponseTemplate, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, title, content, created_at, updated_at
         FROM response_templates WHERE user_id=$1 ORDER BY title`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ResponseTemplate
	for rows.Next() {
		var tmpl domain.ResponseTemplate
		if err := rows.Scan(
			&tmpl.ID,
			&tmpl.UserID,
			&tmpl.Title,
			&tmpl.Content,
			&tmpl.CreatedAt,
			&tmpl.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, tmpl)
	}
	return result, rows.Err()
}

func (r *templateRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM response_templates WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/support-desk/internal/domain"
)

// FieldDefinitionRepository encapsulates custom field definition persistence.
type FieldDefinitionRepository interface {
	Create(ctx context.Context, def *domain.FieldDefinition) error
	Update(ctx context.Context, def *domain.FieldDefinition) error
	GetByID(ctx context.Context, id string) (*domain.FieldDefinition, error)
	List(ctx context.Context) ([]domain.FieldDefinition, error)
	Delete(ctx context.Context, id string) error
}

type fieldDefinitionRepository struct {
	pool *pgxpool.Pool
}

// NewFieldDefinitionRepository instantiates repository.
func NewFieldDefinitionRepository(pool *pgxpool.Pool) FieldDefinitionRepository {
	return &fieldDefinitionRepository{pool: pool}
}

const fieldDefColumns = `id, name, field_type, options, required, description, created_at, updated_at`

func (r *fieldDefinitionRepository) Create(ctx context.Context, def *domain.FieldDefinition) error {
	const query = `
        INSERT INTO custom_field_definitions (name, field_type, options, required, description)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		def.Name,
		def.FieldType,
		def.Options,
		def.Required,
		def.Description,
	).Scan(&def.ID, &def.CreatedAt, &def.UpdatedAt)
}

// Update writes the full definition including the whole options array,
// not incremental deltas.
func (r *fieldDefinitionRepository) Update(ctx context.Context, def *domain.FieldDefinition) error {
	const query = `
        UPDATE custom_field_definitions
        SET name=$1, field_type=$2, options=$3, required=$4, description=$5, updated_at=NOW()
        WHERE id=$6
        RETURNING updated_at`
	return r.pool.QueryRow(ctx, query,
		def.Name,
		def.FieldType,
		def.Options,
		def.Required,
		def.Description,
		def.ID,
	).Scan(&def.UpdatedAt)
}

func (r *fieldDefinitionRepository) GetByID(ctx context.Context, id string) (*domain.FieldDefinition, error) {
	var def domain.FieldDefinition
	if err := r.pool.QueryRow(ctx,
		`SELECT `+fieldDefColumns+` FROM custom_field_definitions WHERE id=$1`, id).Scan(
		&def.ID,
		&def.Name,
		&def.FieldType,
		&def.Options,
		&def.Required,
		&def.Description,
		&def.CreatedAt,
		&def.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &def, nil
}

func (r *fieldDefinitionRepository) List(ctx context.Context) ([]domain.FieldDefinition, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+fieldDefColumns+` FROM custom_field_definitions ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.FieldDefinition
	for rows.Next() {
		var def domain.FieldDefinition
		if err := rows.Scan(
			&def.ID,
			&def.Name,
			&def.FieldType,
			&def.Options,
			&def.Required,
			&def.Description,
			&def.CreatedAt,
			&def.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, def)
	}
	return result, rows.Err()
}

func (r *fieldDefinitionRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM custom_field_definitions WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

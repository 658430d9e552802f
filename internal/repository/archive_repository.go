package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/support-desk/internal/domain"
)

// ArchiveRepository reads the archived_tickets table and invokes the
// archival stored procedures. The move and restore logic lives in the
// database, not here.
type ArchiveRepository interface {
	List(ctx context.Context, limit, offset int) ([]domain.ArchivedTicket, error)
	ArchiveOldTickets(ctx context.Context, daysOld int) (int, error)
	RestoreTicket(ctx context.Context, ticketID string) (string, error)
}

type archiveRepository struct {
	pool *pgxpool.Pool
}

// NewArchiveRepository instantiates repository.
func NewArchiveRepository(pool *pgxpool.Pool) ArchiveRepository {
	return &archiveRepository{pool: pool}
}

func (r *archiveRepository) List(ctx context.Context, limit, offset int) ([]domain.ArchivedTicket, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := r.pool.Query(ctx, `
        SELECT id, title, description, status, priority, customer_id, assigned_to,
               category, custom_fields, tags, sla_deadline, created_at, updated_at, closed_at,
               archived_at, archived_by
        FROM archived_tickets ORDER BY archived_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ArchivedTicket
	for rows.Next() {
		var archived domain.ArchivedTicket
		if err := rows.Scan(
			&archived.ID,
			&archived.Title,
			&archived.Description,
			&archived.Status,
			&archived.Priority,
			&archived.CustomerID,
			&archived.AssignedTo,
			&archived.Category,
			&archived.CustomFields,
			&archived.Tags,
			&archived.SLADeadline,
			&archived.CreatedAt,
			&archived.UpdatedAt,
			&archived.ClosedAt,
			&archived.ArchivedAt,
			&archived.ArchivedBy,
		); err != nil {
			return nil, err
		}
		result = append(result, archived)
	}
	return result, rows.Err()
}

func (r *archiveRepository) ArchiveOldTickets(ctx context.Context, daysOld int) (int, error) {
	var count int
	if err := r.pool.QueryRow(ctx, `SELECT archive_old_tickets($1)`, daysOld).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *archiveRepository) RestoreTicket(ctx context.Context, ticketID string) (string, error) {
	var newID string
	if err := r.pool.QueryRow(ctx, `SELECT restore_archived_ticket($1)`, ticketID).Scan(&newID); err != nil {
		return "", err
	}
	return newID, nil
}

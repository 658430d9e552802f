package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/repository"
	apperrors "github.com/spec-kit/support-desk/pkg/util"
)

// ArchiveService drives the database archive functions. Archival moves
// closed tickets wholesale into the archive table; restore moves one
// back.
type ArchiveService struct {
	archive repository.ArchiveRepository
	logger  *zap.Logger
}

// NewArchiveService constructs the service.
func NewArchiveService(archive repository.ArchiveRepository, logger *zap.Logger) *ArchiveService {
	return &ArchiveService{archive: archive, logger: logger}
}

// Run archives closed tickets older than daysOld and returns how many
// rows moved.
func (s *ArchiveService) Run(ctx context.Context, actor *domain.Profile, daysOld int) (int, error) {
	if !actor.IsAdmin() {
		return 0, apperrors.NewForbidden("admin access required")
	}
	if daysOld < 1 {
		return 0, apperrors.NewValidationError("days_old must be at least 1", nil)
	}
	count, err := s.archive.ArchiveOldTickets(ctx, daysOld)
	if err != nil {
		return 0, err
	}
	s.logger.Info("archive run finished",
		zap.Int("days_old", daysOld),
		zap.Int("archived", count),
		zap.String("actor_id", actor.ID))
	return count, nil
}

// Restore moves one archived ticket back to the live table and returns
// its id.
func (s *ArchiveService) Restore(ctx context.Context, actor *domain.Profile, ticketID string) (string, error) {
	if !actor.IsAdmin() {
		return "", apperrors.NewForbidden("admin access required")
	}
	restoredID, err := s.archive.RestoreTicket(ctx, ticketID)
	if err != nil {
		return "", err
	}
	s.logger.Info("ticket restored from archive",
		zap.String("ticket_id", restoredID),
		zap.String("actor_id", actor.ID))
	return restoredID, nil
}

// List pages through the archive.
func (s *ArchiveService) List(ctx context.Context, actor *domain.Profile, limit, offset int) ([]domain.ArchivedTicket, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.NewForbidden("admin access required")
	}
	return s.archive.List(ctx, limit, offset)
}

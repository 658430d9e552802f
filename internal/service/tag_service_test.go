package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/support-desk/internal/domain"
	apperrors "github.com/spec-kit/support-desk/pkg/util"
)

type fakeTagRepo struct {
	tags map[string]*domain.Tag
	seq  int
}

func newFakeTagRepo() *fakeTagRepo {
	return &fakeTagRepo{tags: map[string]*domain.Tag{}}
}

func (f *fakeTagRepo) Create(ctx context.Context, tag *domain.Tag) error {
	f.seq++
	tag.ID = fmt.Sprintf("tag-%d", f.seq)
	tag.CreatedAt = testClock
	clone := *tag
	f.tags[tag.ID] = &clone
	return nil
}

func (f *fakeTagRepo) Update(ctx context.Context, tag *domain.Tag) error {
	if _, ok := f.tags[tag.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *tag
	f.tags[tag.ID] = &clone
	return nil
}

func (f *fakeTagRepo) List(ctx context.Context) ([]domain.Tag, error) {
	var out []domain.Tag
	for _, tag := range f.tags {
		out = append(out, *tag)
	}
	return out, nil
}

func (f *fakeTagRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.tags[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.tags, id)
	return nil
}

func TestCreateTagDefaultsColor(t *testing.T) {
	s := NewTagService(newFakeTagRepo())

	tag, err := s.Create(context.Background(), TagInput{Name: "  billing  "})
	require.NoError(t, err)
	assert.Equal(t, "billing", tag.Name)
	assert.Equal(t, defaultTagColor, tag.Color)
}

func TestCreateTagValidatesColor(t *testing.T) {
	s := NewTagService(newFakeTagRepo())

	_, err := s.Create(context.Background(), TagInput{Name: "billing", Color: "red"})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)

	tag, err := s.Create(context.Background(), TagInput{Name: "billing", Color: "#AABB01"})
	require.NoError(t, err)
	assert.Equal(t, "#AABB01", tag.Color)
}

func TestDeleteTagLeavesTicketsAlone(t *testing.T) {
	repo := newFakeTagRepo()
	s := NewTagService(repo)

	tag, err := s.Create(context.Background(), TagInput{Name: "billing"})
	require.NoError(t, err)

	tickets := newFakeTicketRepo()
	ticket := &domain.Ticket{Title: "tagged", CustomerID: "customer-1", Status: domain.TicketStatusOpen, Priority: domain.TicketPriorityLow, Tags: []string{tag.ID}}
	require.NoError(t, tickets.Create(context.Background(), ticket))

	require.NoError(t, s.Delete(context.Background(), tag.ID))

	stored, err := tickets.GetByID(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{tag.ID}, stored.Tags)
}

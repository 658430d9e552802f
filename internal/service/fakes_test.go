package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/events"
	"github.com/spec-kit/support-desk/internal/repository"
)

var testClock = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type fakeTicketRepo struct {
	tickets   map[string]*domain.Ticket
	seq       int
	createErr error
	updateErr error
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: map[string]*domain.Ticket{}}
}

func (f *fakeTicketRepo) Create(ctx context.Context, ticket *domain.Ticket) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.seq++
	ticket.ID = fmt.Sprintf("ticket-%d", f.seq)
	ticket.CreatedAt = testClock
	ticket.UpdatedAt = testClock
	clone := *ticket
	f.tickets[ticket.ID] = &clone
	return nil
}

// Update mirrors the SQL row update: closed_at is stamped once when the
// status lands on closed and cleared when it leaves.
func (f *fakeTicketRepo) Update(ctx context.Context, ticket *domain.Ticket) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	stored, ok := f.tickets[ticket.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	if ticket.Status == domain.TicketStatusClosed {
		if stored.ClosedAt != nil {
			ticket.ClosedAt = stored.ClosedAt
		} else {
			now := testClock.Add(time.Hour)
			ticket.ClosedAt = &now
		}
	} else {
		ticket.ClosedAt = nil
	}
	ticket.UpdatedAt = testClock.Add(time.Hour)
	clone := *ticket
	f.tickets[ticket.ID] = &clone
	return nil
}

func (f *fakeTicketRepo) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	stored, ok := f.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *stored
	return &clone, nil
}

func (f *fakeTicketRepo) ListWithFilter(ctx context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	var out []domain.Ticket
	for _, ticket := range f.tickets {
		if filter.CustomerID != nil && ticket.CustomerID != *filter.CustomerID {
			continue
		}
		out = append(out, *ticket)
	}
	return out, nil
}

type fakeAuditRepo struct {
	entries []domain.TicketEvent
}

func (f *fakeAuditRepo) Create(ctx context.Context, event *domain.TicketEvent) error {
	f.entries = append(f.entries, *event)
	return nil
}

func (f *fakeAuditRepo) ListByTicket(ctx context.Context, ticketID string, limit, offset int) ([]domain.TicketEvent, error) {
	var out []domain.TicketEvent
	for _, entry := range f.entries {
		if entry.TicketID == ticketID {
			out = append(out, entry)
		}
	}
	return out, nil
}

type fakeDispatcher struct {
	published []events.Event
}

func (f *fakeDispatcher) Publish(ctx context.Context, event events.Event) error {
	f.published = append(f.published, event)
	return nil
}

func (f *fakeDispatcher) Subscribe(eventType events.EventType, handler events.EventHandler) {}

func (f *fakeDispatcher) byType(eventType events.EventType) []events.Event {
	var out []events.Event
	for _, event := range f.published {
		if event.Type == eventType {
			out = append(out, event)
		}
	}
	return out
}

type fakeSettingsRepo struct {
	rows []domain.SystemSetting
}

func (f *fakeSettingsRepo) List(ctx context.Context) ([]domain.SystemSetting, error) {
	return append([]domain.SystemSetting{}, f.rows...), nil
}

func (f *fakeSettingsRepo) Upsert(ctx context.Context, setting *domain.SystemSetting) error {
	for i := range f.rows {
		if f.rows[i].Category == setting.Category && f.rows[i].Key == setting.Key {
			f.rows[i] = *setting
			return nil
		}
	}
	setting.ID = fmt.Sprintf("setting-%d", len(f.rows)+1)
	f.rows = append(f.rows, *setting)
	return nil
}

type fakeFieldDefRepo struct {
	defs []domain.FieldDefinition
	seq  int
}

func (f *fakeFieldDefRepo) Create(ctx context.Context, def *domain.FieldDefinition) error {
	f.seq++
	def.ID = fmt.Sprintf("field-%d", f.seq)
	f.defs = append(f.defs, *def)
	return nil
}

func (f *fakeFieldDefRepo) Update(ctx context.Context, def *domain.FieldDefinition) error {
	for i := range f.defs {
		if f.defs[i].ID == def.ID {
			f.defs[i] = *def
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (f *fakeFieldDefRepo) GetByID(ctx context.Context, id string) (*domain.FieldDefinition, error) {
	for i := range f.defs {
		if f.defs[i].ID == id {
			clone := f.defs[i]
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeFieldDefRepo) List(ctx context.Context) ([]domain.FieldDefinition, error) {
	return append([]domain.FieldDefinition{}, f.defs...), nil
}

func (f *fakeFieldDefRepo) Delete(ctx context.Context, id string) error {
	for i := range f.defs {
		if f.defs[i].ID == id {
			f.defs = append(f.defs[:i], f.defs[i+1:]...)
			return nil
		}
	}
	return pgx.ErrNoRows
}

type fakeCommentRepo struct {
	comments []domain.Comment
	seq      int
}

func (f *fakeCommentRepo) Create(ctx context.Context, comment *domain.Comment) error {
	f.seq++
	comment.ID = fmt.Sprintf("comment-%d", f.seq)
	comment.CreatedAt = testClock
	f.comments = append(f.comments, *comment)
	return nil
}

func (f *fakeCommentRepo) ListByTicket(ctx context.Context, ticketID string) ([]domain.Comment, error) {
	var out []domain.Comment
	for _, comment := range f.comments {
		if comment.TicketID == ticketID {
			out = append(out, comment)
		}
	}
	return out, nil
}

type fakeAttachmentRepo struct {
	attachments []domain.Attachment
	seq         int
	createErr   error
}

func (f *fakeAttachmentRepo) Create(ctx context.Context, attachment *domain.Attachment) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.seq++
	attachment.ID = fmt.Sprintf("attachment-%d", f.seq)
	attachment.CreatedAt = testClock
	f.attachments = append(f.attachments, *attachment)
	return nil
}

func (f *fakeAttachmentRepo) GetByID(ctx context.Context, id string) (*domain.Attachment, error) {
	for i := range f.attachments {
		if f.attachments[i].ID == id {
			clone := f.attachments[i]
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeAttachmentRepo) ListByTicket(ctx context.Context, ticketID string) ([]domain.Attachment, error) {
	var out []domain.Attachment
	for _, attachment := range f.attachments {
		if attachment.TicketID == ticketID {
			out = append(out, attachment)
		}
	}
	return out, nil
}

func (f *fakeAttachmentRepo) Delete(ctx context.Context, id string) error {
	for i := range f.attachments {
		if f.attachments[i].ID == id {
			f.attachments = append(f.attachments[:i], f.attachments[i+1:]...)
			return nil
		}
	}
	return pgx.ErrNoRows
}

type fakeObjectStore struct {
	blobs     map[string][]byte
	removed   []string
	uploadErr error
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{blobs: map[string][]byte{}}
}

func (f *fakeObjectStore) Upload(ctx context.Context, key string, body io.Reader, contentType string, size int64) error {
	if f.uploadErr != nil {
		return f.uploadErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	f.blobs[key] = data
	return nil
}

func (f *fakeObjectStore) Download(ctx context.Context, key string) (io.ReadCloser, string, error) {
	data, ok := f.blobs[key]
	if !ok {
		return nil, "", fmt.Errorf("no blob at %s", key)
	}
	return io.NopCloser(bytes.NewReader(data)), "application/octet-stream", nil
}

func (f *fakeObjectStore) Remove(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.blobs, key)
		f.removed = append(f.removed, key)
	}
	return nil
}

type fakeProfileRepo struct {
	profiles map[string]*domain.Profile
	seq      int
}

func newFakeProfileRepo(seed ...*domain.Profile) *fakeProfileRepo {
	f := &fakeProfileRepo{profiles: map[string]*domain.Profile{}}
	for _, profile := range seed {
		clone := *profile
		f.profiles[profile.ID] = &clone
	}
	return f
}

func (f *fakeProfileRepo) Create(ctx context.Context, profile *domain.Profile) error {
	f.seq++
	profile.ID = fmt.Sprintf("profile-%d", f.seq)
	profile.CreatedAt = testClock
	profile.UpdatedAt = testClock
	clone := *profile
	f.profiles[profile.ID] = &clone
	return nil
}

func (f *fakeProfileRepo) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	stored, ok := f.profiles[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *stored
	return &clone, nil
}

func (f *fakeProfileRepo) GetByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	for _, stored := range f.profiles {
		if stored.Email == email {
			clone := *stored
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeProfileRepo) List(ctx context.Context, limit, offset int) ([]domain.Profile, error) {
	var out []domain.Profile
	for _, stored := range f.profiles {
		out = append(out, *stored)
	}
	return out, nil
}

func (f *fakeProfileRepo) UpdateRole(ctx context.Context, id string, role domain.Role) error {
	stored, ok := f.profiles[id]
	if !ok {
		return pgx.ErrNoRows
	}
	stored.Role = role
	return nil
}

func customerProfile(id string) *domain.Profile {
	return &domain.Profile{ID: id, Email: id + "@example.com", FullName: "Customer " + id, Role: domain.RoleCustomer}
}

func workerProfile(id string) *domain.Profile {
	return &domain.Profile{ID: id, Email: id + "@example.com", FullName: "Worker " + id, Role: domain.RoleWorker}
}

func adminProfile(id string) *domain.Profile {
	return &domain.Profile{ID: id, Email: id + "@example.com", FullName: "Admin " + id, Role: domain.RoleAdmin}
}

package domain

import "time"

// Attachment is metadata for a blob stored out of band. StorageKey points
// into the object store; the blob is written before this row is inserted
// so a metadata row never exists without its blob.
type Attachment struct {
	ID          string
	TicketID    string
	UserID      string
	Filename    string
	ContentType string
	SizeBytes   int64
	IsInternal  bool
	StorageKey  string
	CreatedAt   time.Time
}

package store

import (
	"io"

	"github.com/vaarrunii/VidVault/internal/types"
)

// Store persists video metadata and payload records across sessions.
//
// Every mutating operation is a single atomic unit spanning both the
// metadata and the payload tables. Payload rows are always written before
// the metadata row that references them, so a committed metadata row never
// points at a payload that was never attempted.
type Store interface {
	// AddRecord inserts a new metadata record together with its payload.
	// The payload is required on first insertion. Returns the stored
	// metadata with PayloadRef and PayloadType filled in.
	AddRecord(metadata types.VideoMetadata, payload io.Reader, contentType types.ContentType) (types.VideoMetadata, error)

	// UpdateRecord rewrites an existing record. A non-nil payload replaces
	// the stored one under a fresh ref; the superseded payload is removed
	// best-effort. With a nil payload the stored ref is carried over, and
	// contentType acts as an optional hint overriding the stored type.
	// UploadDate is never altered.
	UpdateRecord(metadata types.VideoMetadata, payload io.Reader, contentType types.ContentType) (types.VideoMetadata, error)

	// ListAllMetadata returns every metadata record, in no implied order.
	ListAllMetadata() ([]types.VideoMetadata, error)

	// GetPayload resolves a payload ref. A missing payload is an expected
	// degraded state and yields (nil, nil), never an error.
	GetPayload(ref types.PayloadRef) (*types.Payload, error)

	// DeleteRecord removes the metadata record and, when ref is non-empty,
	// its payload (best-effort). Deleting a non-existent id succeeds.
	DeleteRecord(id types.ID, ref types.PayloadRef) error

	Close() error
}

// Package handle keeps transient playback handles in sync with the stored
// video library. A handle is a short-lived, revocable reference a player
// can dereference without copying the underlying bytes; it must be
// explicitly released.
package handle

import (
	"github.com/vaarrunii/VidVault/internal/types"
)

// Handle is an opaque dereferenceable playback reference. Minting the same
// bytes twice yields independent handles that must each be revoked
// separately.
type Handle string

// Minter is the object-handle primitive: it produces playable references
// over in-memory bytes and releases them again.
type Minter interface {
	Mint(data []byte, contentType types.ContentType) Handle
	Revoke(h Handle)
}

// PayloadSource is the slice of the durable store the lifecycle manager
// needs for hydration.
type PayloadSource interface {
	GetPayload(ref types.PayloadRef) (*types.Payload, error)
}

package handle

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/vaarrunii/VidVault/internal/types"
)

// Manager owns the video-id to handle mapping. No other component mints or
// revokes handles; at any point in time at most one handle is live per
// video id, and minting a replacement first revokes the predecessor.
type Manager struct {
	mutex   sync.Mutex
	minter  Minter
	store   PayloadSource
	handles map[types.ID]Handle
	log     zerolog.Logger
}

func NewManager(minter Minter, store PayloadSource, logger zerolog.Logger) *Manager {
	return &Manager{
		minter:  minter,
		store:   store,
		handles: make(map[types.ID]Handle),
		log:     logger,
	}
}

// Hydrate resynchronizes the handle map against a freshly loaded metadata
// list and returns the enriched records. Handles for ids no longer present
// are revoked first. A record whose payload is missing, empty, or typeless
// comes back without a handle: unplayable, never an error.
func (m *Manager) Hydrate(metadata []types.VideoMetadata) []types.Video {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	present := make(map[types.ID]bool, len(metadata))
	for _, meta := range metadata {
		present[meta.ID] = true
	}
	for id, h := range m.handles {
		if !present[id] {
			m.minter.Revoke(h)
			delete(m.handles, id)
		}
	}

	videos := make([]types.Video, 0, len(metadata))
	for _, meta := range metadata {
		videos = append(videos, m.hydrateOne(meta))
	}
	return videos
}

func (m *Manager) hydrateOne(meta types.VideoMetadata) types.Video {
	video := types.Video{VideoMetadata: meta}

	if meta.PayloadRef == "" {
		m.dropLocked(meta.ID)
		return video
	}

	payload, err := m.store.GetPayload(meta.PayloadRef)
	if err != nil {
		m.log.Warn().Err(err).Str("id", string(meta.ID)).Msg("payload fetch failed, video is unplayable")
		m.dropLocked(meta.ID)
		return video
	}
	if payload == nil || payload.Size == 0 || len(payload.Bytes) == 0 || payload.ContentType == "" {
		m.log.Warn().Str("id", string(meta.ID)).Str("ref", string(meta.PayloadRef)).Msg("payload missing or invalid, video is unplayable")
		m.dropLocked(meta.ID)
		return video
	}

	m.replaceLocked(meta.ID, payload.Bytes, payload.ContentType)
	video.PlaybackURL = string(m.handles[meta.ID])
	return video
}

// RegisterNew mints a handle straight from bytes already in memory, right
// after an add or a payload-replacing update, avoiding a read-back from
// the store. Any existing handle for the id is revoked first.
func (m *Manager) RegisterNew(id types.ID, data []byte, contentType types.ContentType) (Handle, error) {
	if len(data) == 0 {
		return "", types.ErrPayloadInvalid{Reason: "payload is empty"}
	}
	if contentType == "" {
		return "", types.ErrPayloadInvalid{Reason: "payload has no content type"}
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.replaceLocked(id, data, contentType)
	return m.handles[id], nil
}

// Revoke releases the handle for id if one is live; no-op otherwise.
func (m *Manager) Revoke(id types.ID) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.dropLocked(id)
}

// RevokeAll releases every tracked handle. Runs at session teardown so no
// native resources backing handles outlive the process.
func (m *Manager) RevokeAll() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for id, h := range m.handles {
		m.minter.Revoke(h)
		delete(m.handles, id)
	}
}

// Lookup returns the live handle for id, if any.
func (m *Manager) Lookup(id types.ID) (Handle, bool) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	h, ok := m.handles[id]
	return h, ok
}

func (m *Manager) replaceLocked(id types.ID, data []byte, contentType types.ContentType) {
	m.dropLocked(id)
	m.handles[id] = m.minter.Mint(data, contentType)
}

func (m *Manager) dropLocked(id types.ID) {
	if h, ok := m.handles[id]; ok {
		m.minter.Revoke(h)
		delete(m.handles, id)
	}
}

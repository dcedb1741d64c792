package types

import (
	"time"
)

type (
	ID          string
	PayloadRef  string
	ContentType string

	// VideoMetadata is the queryable record describing one video in the
	// library. The binary content lives in a separate payload record,
	// referenced by PayloadRef; an empty PayloadRef means no content is
	// attached.
	VideoMetadata struct {
		ID           ID
		Title        string
		Category     string
		Description  string
		SerialNumber string
		UploadDate   time.Time
		PayloadRef   PayloadRef
		PayloadType  ContentType
	}

	// Payload is the stored binary content for one video. Size is kept
	// alongside the bytes so truncated or empty payloads can be detected
	// without reading them.
	Payload struct {
		Ref         PayloadRef
		ContentType ContentType
		Size        int64
		Bytes       []byte
	}

	// Video is a metadata record enriched with a playback handle. An empty
	// PlaybackURL marks the video as unplayable (payload missing or
	// invalid).
	Video struct {
		VideoMetadata
		PlaybackURL string
	}

	VideoRequest struct {
		Title        string `json:"title"`
		Category     string `json:"category"`
		Description  string `json:"description"`
		SerialNumber string `json:"serialNumber"`
		PayloadType  string `json:"payloadType"`
	}

	VideoResponse struct {
		ID           string `json:"id"`
		Title        string `json:"title"`
		Category     string `json:"category"`
		Description  string `json:"description,omitempty"`
		SerialNumber string `json:"serialNumber,omitempty"`
		UploadDate   string `json:"uploadDate"`
		PayloadType  string `json:"payloadType,omitempty"`
		PlaybackURL  string `json:"playbackUrl,omitempty"`
		Playable     bool   `json:"playable"`
	}
)

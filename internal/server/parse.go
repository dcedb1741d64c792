package server

import (
	"errors"
	"net/http"

	"github.com/vaarrunii/VidVault/internal/types"
)

const (
	multiPartMaxMemory = 32 << 20

	maxTitleLen       = 256
	maxCategoryLen    = 128
	maxDescriptionLen = 2048
)

func parseVideoID(s string) (types.ID, error) {
	if s == "" {
		return "", errors.New("video ID is empty")
	}
	if len(s) > 64 {
		return "", errors.New("video ID is too long")
	}
	return types.ID(s), nil
}

// parseVideoFields reads the metadata fields of an upload or edit form.
// Emptiness of required fields is enforced by the store; length limits are
// a request-level concern.
func parseVideoFields(r *http.Request) (types.VideoMetadata, error) {
	none := types.VideoMetadata{}

	title := r.FormValue("title")
	if len(title) > maxTitleLen {
		return none, types.ErrInvalidMetadata{Field: "title", Reason: "too long"}
	}

	category := r.FormValue("category")
	if len(category) > maxCategoryLen {
		return none, types.ErrInvalidMetadata{Field: "category", Reason: "too long"}
	}

	description := r.FormValue("description")
	if len(description) > maxDescriptionLen {
		return none, types.ErrInvalidMetadata{Field: "description", Reason: "too long"}
	}

	return types.VideoMetadata{
		Title:        title,
		Category:     category,
		Description:  description,
		SerialNumber: r.FormValue("serialNumber"),
	}, nil
}

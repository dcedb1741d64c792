package server

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/vaarrunii/VidVault/internal/types"
)

func (h handlers) videosGet() gin.HandlerFunc {
	return func(c *gin.Context) {
		metadata, err := h.db.ListAllMetadata()
		if err != nil {
			h.log.Error().Err(err).Msg("failed to list video metadata")
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		videos := h.videos.Hydrate(metadata)

		response := make([]types.VideoResponse, 0, len(videos))
		for _, v := range videos {
			response = append(response, toResponse(v))
		}
		c.JSON(http.StatusOK, response)
	}
}

func (h handlers) videoPost(maxUploadBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		video, err := h.insertVideoFromRequest(c.Request, maxUploadBytes)
		if err != nil {
			h.abortWithError(c, err, "invalid upload")
			return
		}

		c.JSON(http.StatusOK, video)
	}
}

func (h handlers) videoPut(maxUploadBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := parseVideoID(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": fmt.Sprintf("bad video ID: %v", err),
			})
			return
		}

		video, err := h.updateVideoFromRequest(c.Request, id, maxUploadBytes)
		if err != nil {
			h.abortWithError(c, err, "invalid update")
			return
		}

		c.JSON(http.StatusOK, video)
	}
}

func (h handlers) videoDelete() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := parseVideoID(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": fmt.Sprintf("bad video ID: %v", err),
			})
			return
		}

		// The stored ref drives the payload cascade; a record that is
		// already gone still deletes cleanly.
		var ref types.PayloadRef
		if metadata, err := h.db.ListAllMetadata(); err == nil {
			for _, m := range metadata {
				if m.ID == id {
					ref = m.PayloadRef
					break
				}
			}
		}

		if err := h.db.DeleteRecord(id, ref); err != nil {
			h.log.Error().Err(err).Str("id", string(id)).Msg("failed to delete video record")
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "operation failed, try again",
			})
			return
		}

		h.videos.Revoke(id)

		c.Status(http.StatusNoContent)
	}
}

func (h handlers) categoriesGet() gin.HandlerFunc {
	return func(c *gin.Context) {
		metadata, err := h.db.ListAllMetadata()
		if err != nil {
			h.log.Error().Err(err).Msg("failed to list video metadata")
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		// Categories are not a separate entity: they are the distinct set
		// of category values across all records.
		seen := make(map[string]bool)
		categories := []string{}
		for _, m := range metadata {
			if !seen[m.Category] {
				seen[m.Category] = true
				categories = append(categories, m.Category)
			}
		}
		sort.Strings(categories)

		c.JSON(http.StatusOK, categories)
	}
}

func (h handlers) insertVideoFromRequest(r *http.Request, maxUploadBytes int64) (types.VideoResponse, error) {
	none := types.VideoResponse{}

	if err := r.ParseMultipartForm(multiPartMaxMemory); err != nil {
		return none, types.ErrPayloadInvalid{Reason: err.Error()}
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			h.log.Warn().Err(err).Msg("failed to free multipart form resources")
		}
	}()

	data, contentType, err := readPayloadFromRequest(r, maxUploadBytes)
	if err != nil {
		return none, err
	}

	metadata, err := parseVideoFields(r)
	if err != nil {
		return none, err
	}
	metadata.ID = types.ID(uuid.New().String())
	metadata.UploadDate = time.Now().UTC()

	stored, err := h.db.AddRecord(metadata, bytes.NewReader(data), contentType)
	if err != nil {
		return none, err
	}

	// The bytes are already in memory: mint the playback handle directly
	// instead of reading the payload back from the store.
	handle, err := h.videos.RegisterNew(stored.ID, data, contentType)
	if err != nil {
		return none, err
	}

	return toResponse(types.Video{VideoMetadata: stored, PlaybackURL: string(handle)}), nil
}

func (h handlers) updateVideoFromRequest(r *http.Request, id types.ID, maxUploadBytes int64) (types.VideoResponse, error) {
	none := types.VideoResponse{}

	if err := r.ParseMultipartForm(multiPartMaxMemory); err != nil {
		return none, types.ErrPayloadInvalid{Reason: err.Error()}
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			h.log.Warn().Err(err).Msg("failed to free multipart form resources")
		}
	}()

	metadata, err := parseVideoFields(r)
	if err != nil {
		return none, err
	}
	metadata.ID = id

	// The replacement file is optional; without one this is a
	// metadata-only edit and the stored payload is carried over.
	data, contentType, err := readPayloadFromRequest(r, maxUploadBytes)
	if err != nil && !errors.Is(err, http.ErrMissingFile) {
		return none, err
	}

	var payload io.Reader
	if data != nil {
		payload = bytes.NewReader(data)
	} else {
		contentType = types.ContentType(r.FormValue("payloadType"))
	}

	stored, err := h.db.UpdateRecord(metadata, payload, contentType)
	if err != nil {
		return none, err
	}

	video := types.Video{VideoMetadata: stored}
	if data != nil {
		handle, err := h.videos.RegisterNew(stored.ID, data, contentType)
		if err != nil {
			return none, err
		}
		video.PlaybackURL = string(handle)
	} else if handle, ok := h.videos.Lookup(stored.ID); ok {
		// Payload unchanged, the live handle stays valid.
		video.PlaybackURL = string(handle)
	}

	return toResponse(video), nil
}

// readPayloadFromRequest pulls the uploaded file out of the multipart form.
// Returns http.ErrMissingFile wrapped as-is when no file part was sent.
func readPayloadFromRequest(r *http.Request, maxUploadBytes int64) ([]byte, types.ContentType, error) {
	reader, header, err := r.FormFile("file")
	if err != nil {
		return nil, "", err
	}
	defer reader.Close()

	if header.Size == 0 {
		return nil, "", types.ErrPayloadInvalid{Reason: "file is empty"}
	}
	if header.Size > maxUploadBytes {
		return nil, "", types.ErrPayloadInvalid{Reason: "file is too large"}
	}

	contentType := types.ContentType(header.Header.Get("Content-Type"))
	if contentType == "" {
		return nil, "", types.ErrPayloadInvalid{Reason: "file has no content type"}
	}

	data, err := io.ReadAll(io.LimitReader(reader, maxUploadBytes+1))
	if err != nil {
		return nil, "", types.ErrPayloadInvalid{Reason: err.Error()}
	}
	if int64(len(data)) > maxUploadBytes {
		return nil, "", types.ErrPayloadInvalid{Reason: "file is too large"}
	}

	return data, contentType, nil
}

func (h handlers) abortWithError(c *gin.Context, err error, context string) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		h.log.Error().Err(err).Msg(context)
		c.JSON(status, gin.H{
			"error": "operation failed, try again",
		})
		return
	}

	h.log.Debug().Err(err).Msg(context)
	c.JSON(status, gin.H{
		"error": err.Error(),
	})
}

func statusForError(err error) int {
	var notExists types.ErrRecordNotExists
	var invalidMetadata types.ErrInvalidMetadata
	var payloadMissing types.ErrPayloadMissing
	var payloadInvalid types.ErrPayloadInvalid

	switch {
	case errors.As(err, &notExists):
		return http.StatusNotFound
	case errors.As(err, &invalidMetadata),
		errors.As(err, &payloadMissing),
		errors.As(err, &payloadInvalid),
		errors.Is(err, http.ErrMissingFile):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func toResponse(v types.Video) types.VideoResponse {
	return types.VideoResponse{
		ID:           string(v.ID),
		Title:        v.Title,
		Category:     v.Category,
		Description:  v.Description,
		SerialNumber: v.SerialNumber,
		UploadDate:   v.UploadDate.UTC().Format(time.RFC3339),
		PayloadType:  string(v.PayloadType),
		PlaybackURL:  v.PlaybackURL,
		Playable:     v.PlaybackURL != "",
	}
}

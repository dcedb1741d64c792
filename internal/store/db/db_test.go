package db_test

import (
	"bytes"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vaarrunii/VidVault/internal/store/db/testdb"
	"github.com/vaarrunii/VidVault/internal/types"
)

func randomBytes(t *testing.T, n int) []byte {
	t.Helper()
	data := make([]byte, n)
	_, err := rand.Read(data)
	require.NoError(t, err)
	return data
}

func TestAddAndGetPayloadRoundTrip(t *testing.T) {
	database, err := testdb.NewWithChunkSize(100)
	require.NoError(t, err)
	defer database.Close()

	payload := randomBytes(t, 1024)

	stored, err := database.AddRecord(types.VideoMetadata{
		ID:       "vid-1",
		Title:    "Trip",
		Category: "Travel",
	}, bytes.NewReader(payload), "video/mp4")
	require.NoError(t, err)

	require.NotEmpty(t, stored.PayloadRef)
	require.Equal(t, types.ContentType("video/mp4"), stored.PayloadType)
	require.False(t, stored.UploadDate.IsZero())

	got, err := database.GetPayload(stored.PayloadRef)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, payload, got.Bytes)
	require.Equal(t, types.ContentType("video/mp4"), got.ContentType)
	require.Equal(t, int64(1024), got.Size)
}

func TestMetadataOnlyUpdatePreservesPayload(t *testing.T) {
	database, err := testdb.NewWithChunkSize(100)
	require.NoError(t, err)
	defer database.Close()

	payload := randomBytes(t, 1024)

	stored, err := database.AddRecord(types.VideoMetadata{
		ID:       "vid-1",
		Title:    "Trip",
		Category: "Travel",
	}, bytes.NewReader(payload), "video/mp4")
	require.NoError(t, err)

	stored.Title = "Trip 2025"
	updated, err := database.UpdateRecord(stored, nil, "")
	require.NoError(t, err)

	require.Equal(t, "Trip 2025", updated.Title)
	require.Equal(t, stored.PayloadRef, updated.PayloadRef)
	require.Equal(t, stored.PayloadType, updated.PayloadType)
	require.True(t, stored.UploadDate.Equal(updated.UploadDate))

	got, err := database.GetPayload(stored.PayloadRef)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, payload, got.Bytes)

	all, err := database.ListAllMetadata()
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.Equal(t, "Trip 2025", all[0].Title)
}

func TestMetadataOnlyUpdateTypeHint(t *testing.T) {
	database, err := testdb.NewWithChunkSize(100)
	require.NoError(t, err)
	defer database.Close()

	stored, err := database.AddRecord(types.VideoMetadata{
		ID:       "vid-1",
		Title:    "Trip",
		Category: "Travel",
	}, bytes.NewReader(randomBytes(t, 64)), "video/mp4")
	require.NoError(t, err)

	// A caller-supplied hint overrides the stored type.
	updated, err := database.UpdateRecord(stored, nil, "video/webm")
	require.NoError(t, err)
	require.Equal(t, types.ContentType("video/webm"), updated.PayloadType)

	// Without a hint the stored value is carried over.
	updated, err = database.UpdateRecord(updated, nil, "")
	require.NoError(t, err)
	require.Equal(t, types.ContentType("video/webm"), updated.PayloadType)
}

func TestPayloadReplaceInvalidatesOldRef(t *testing.T) {
	database, err := testdb.NewWithChunkSize(100)
	require.NoError(t, err)
	defer database.Close()

	stored, err := database.AddRecord(types.VideoMetadata{
		ID:       "vid-1",
		Title:    "Trip",
		Category: "Travel",
	}, bytes.NewReader(randomBytes(t, 1024)), "video/mp4")
	require.NoError(t, err)

	oldRef := stored.PayloadRef
	replacement := randomBytes(t, 2048)

	updated, err := database.UpdateRecord(stored, bytes.NewReader(replacement), "video/webm")
	require.NoError(t, err)

	require.NotEqual(t, oldRef, updated.PayloadRef)
	require.Equal(t, types.ContentType("video/webm"), updated.PayloadType)
	require.True(t, stored.UploadDate.Equal(updated.UploadDate))

	gone, err := database.GetPayload(oldRef)
	require.NoError(t, err)
	require.Nil(t, gone)

	got, err := database.GetPayload(updated.PayloadRef)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, replacement, got.Bytes)
	require.Equal(t, int64(2048), got.Size)
}

func TestCascadeDelete(t *testing.T) {
	database, err := testdb.NewWithChunkSize(100)
	require.NoError(t, err)
	defer database.Close()

	stored, err := database.AddRecord(types.VideoMetadata{
		ID:       "vid-1",
		Title:    "Trip",
		Category: "Travel",
	}, bytes.NewReader(randomBytes(t, 512)), "video/mp4")
	require.NoError(t, err)

	err = database.DeleteRecord(stored.ID, stored.PayloadRef)
	require.NoError(t, err)

	all, err := database.ListAllMetadata()
	require.NoError(t, err)
	require.Empty(t, all)

	gone, err := database.GetPayload(stored.PayloadRef)
	require.NoError(t, err)
	require.Nil(t, gone)
}

func TestDeleteNonExistentIsIdempotent(t *testing.T) {
	database, err := testdb.NewWithChunkSize(100)
	require.NoError(t, err)
	defer database.Close()

	stored, err := database.AddRecord(types.VideoMetadata{
		ID:       "vid-1",
		Title:    "Trip",
		Category: "Travel",
	}, bytes.NewReader(randomBytes(t, 64)), "video/mp4")
	require.NoError(t, err)

	err = database.DeleteRecord("no-such-id", "no-such-ref")
	require.NoError(t, err)

	all, err := database.ListAllMetadata()
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.Equal(t, stored.ID, all[0].ID)
}

func TestAddValidation(t *testing.T) {
	database, err := testdb.NewWithChunkSize(100)
	require.NoError(t, err)
	defer database.Close()

	for _, row := range []struct {
		description string
		metadata    types.VideoMetadata
		field       string
	}{
		{
			description: "missing title",
			metadata:    types.VideoMetadata{ID: "vid-1", Category: "Travel"},
			field:       "title",
		},
		{
			description: "missing category",
			metadata:    types.VideoMetadata{ID: "vid-1", Title: "Trip"},
			field:       "category",
		},
		{
			description: "missing id",
			metadata:    types.VideoMetadata{Title: "Trip", Category: "Travel"},
			field:       "id",
		},
	} {
		t.Run(row.description, func(t *testing.T) {
			_, err := database.AddRecord(row.metadata, bytes.NewReader([]byte("data")), "video/mp4")
			require.Equal(t, types.ErrInvalidMetadata{Field: row.field}, err)
		})
	}
}

func TestAddRequiresPayload(t *testing.T) {
	database, err := testdb.NewWithChunkSize(100)
	require.NoError(t, err)
	defer database.Close()

	_, err = database.AddRecord(types.VideoMetadata{
		ID:       "vid-1",
		Title:    "Trip",
		Category: "Travel",
	}, nil, "video/mp4")
	require.Equal(t, types.ErrPayloadMissing{ID: "vid-1"}, err)

	_, err = database.AddRecord(types.VideoMetadata{
		ID:       "vid-1",
		Title:    "Trip",
		Category: "Travel",
	}, bytes.NewReader(nil), "video/mp4")
	var invalid types.ErrPayloadInvalid
	require.ErrorAs(t, err, &invalid)
}

func TestPayloadRequiresContentType(t *testing.T) {
	database, err := testdb.NewWithChunkSize(100)
	require.NoError(t, err)
	defer database.Close()

	var invalid types.ErrPayloadInvalid

	_, err = database.AddRecord(types.VideoMetadata{
		ID:       "vid-1",
		Title:    "Trip",
		Category: "Travel",
	}, bytes.NewReader([]byte("data")), "")
	require.ErrorAs(t, err, &invalid)

	stored, err := database.AddRecord(types.VideoMetadata{
		ID:       "vid-1",
		Title:    "Trip",
		Category: "Travel",
	}, bytes.NewReader([]byte("data")), "video/mp4")
	require.NoError(t, err)

	// A replacement payload without a type is rejected before any write.
	_, err = database.UpdateRecord(stored, bytes.NewReader([]byte("more")), "")
	require.ErrorAs(t, err, &invalid)

	got, err := database.GetPayload(stored.PayloadRef)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, []byte("data"), got.Bytes)
}

func TestUpdateNonExistentRecord(t *testing.T) {
	database, err := testdb.NewWithChunkSize(100)
	require.NoError(t, err)
	defer database.Close()

	_, err = database.UpdateRecord(types.VideoMetadata{
		ID:       "no-such-id",
		Title:    "Trip",
		Category: "Travel",
	}, nil, "")
	require.Equal(t, types.ErrRecordNotExists{ID: "no-such-id"}, err)
}

func TestGetPayloadMissingRef(t *testing.T) {
	database, err := testdb.NewWithChunkSize(100)
	require.NoError(t, err)
	defer database.Close()

	got, err := database.GetPayload("missing")
	require.NoError(t, err)
	require.Nil(t, got)

	got, err = database.GetPayload("")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestUploadDateSurvivesReload(t *testing.T) {
	database, err := testdb.NewWithChunkSize(100)
	require.NoError(t, err)
	defer database.Close()

	uploadDate := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

	stored, err := database.AddRecord(types.VideoMetadata{
		ID:         "vid-1",
		Title:      "Trip",
		Category:   "Travel",
		UploadDate: uploadDate,
	}, bytes.NewReader(randomBytes(t, 64)), "video/mp4")
	require.NoError(t, err)
	require.True(t, uploadDate.Equal(stored.UploadDate))

	all, err := database.ListAllMetadata()
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.True(t, uploadDate.Equal(all[0].UploadDate))
}

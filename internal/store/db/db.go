package db

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"github.com/vaarrunii/VidVault/internal/store"
	"github.com/vaarrunii/VidVault/internal/store/db/blob"
	"github.com/vaarrunii/VidVault/internal/types"
)

const (
	timeFormat = time.RFC3339
)

// DB is the SQLite-backed Store. The videos table holds the queryable
// metadata; payload bytes live in payloads/payload_chunks under refs that
// are independent of video ids, so a payload can be replaced without
// touching the owning record's identity.
type DB struct {
	ctx       *sql.DB
	chunkSize int
	log       zerolog.Logger
}

type dbMigration struct {
	version int
	query   string
}

//go:embed migrations/*.sql
var migrationsFs embed.FS // is an embedded filesystem that contains the migration SQL files

func New(path string, logger zerolog.Logger) (store.Store, error) {
	return NewWithChunkSize(path, defaultChunkSize, logger)
}

const defaultChunkSize = 327680

func NewWithChunkSize(path string, chunkSize int, logger zerolog.Logger) (*DB, error) {
	logger.Info().Str("path", path).Msg("opening video library store")
	ctx, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, types.ErrStorageOpen{Err: err}
	}

	if _, err := ctx.Exec(`
		PRAGMA temp_store = FILE;
		PRAGMA journal_mode = WAL;
		PRAGMA busy_timeout = 5000;
	`); err != nil {
		return nil, types.ErrStorageOpen{Err: fmt.Errorf("failed to set up pragmas: %w", err)}
	}

	if err := migrate(ctx, logger); err != nil {
		return nil, types.ErrStorageOpen{Err: err}
	}

	return &DB{
		ctx:       ctx,
		chunkSize: chunkSize,
		log:       logger,
	}, nil
}

func (d *DB) AddRecord(metadata types.VideoMetadata, payload io.Reader, contentType types.ContentType) (types.VideoMetadata, error) {
	none := types.VideoMetadata{}

	if err := validateMetadata(metadata); err != nil {
		return none, err
	}
	if payload == nil {
		return none, types.ErrPayloadMissing{ID: metadata.ID}
	}
	if contentType == "" {
		return none, types.ErrPayloadInvalid{Reason: "payload has no content type"}
	}

	d.log.Debug().Str("id", string(metadata.ID)).Msg("create a new video record")

	tx, err := d.ctx.BeginTx(context.Background(), nil)
	if err != nil {
		return none, types.ErrStorageOp{Op: "add", Err: err}
	}
	defer tx.Rollback()

	// The payload is committed under a fresh ref before the metadata row
	// that references it.
	ref := types.PayloadRef(uuid.New().String())
	size, err := writePayload(tx, ref, payload, contentType, d.chunkSize)
	if err != nil {
		return none, types.ErrStorageOp{Op: "add", Err: err}
	}
	if size == 0 {
		return none, types.ErrPayloadInvalid{Ref: ref, Reason: "payload is empty"}
	}

	metadata.PayloadRef = ref
	metadata.PayloadType = contentType
	if metadata.UploadDate.IsZero() {
		metadata.UploadDate = time.Now()
	}
	// Stored timestamps carry second precision; return exactly what a
	// later read will yield.
	metadata.UploadDate = metadata.UploadDate.UTC().Truncate(time.Second)

	_, err = tx.Exec(`
	INSERT INTO
		videos
	(
		id,
		title,
		category,
		description,
		serial_number,
		upload_date,
		payload_ref,
		payload_type
	)
	VALUES(?,?,?,?,?,?,?,?)`,
		metadata.ID,
		metadata.Title,
		metadata.Category,
		metadata.Description,
		metadata.SerialNumber,
		metadata.UploadDate.UTC().Format(timeFormat),
		metadata.PayloadRef,
		metadata.PayloadType,
	)
	if err != nil {
		return none, types.ErrStorageOp{Op: "add", Err: err}
	}

	if err := tx.Commit(); err != nil {
		return none, types.ErrStorageOp{Op: "add", Err: err}
	}

	return metadata, nil
}

func (d *DB) UpdateRecord(metadata types.VideoMetadata, payload io.Reader, contentType types.ContentType) (types.VideoMetadata, error) {
	none := types.VideoMetadata{}

	if err := validateMetadata(metadata); err != nil {
		return none, err
	}
	// A replacement payload must carry a type; the stored row would
	// otherwise end up typeless and unplayable.
	if payload != nil && contentType == "" {
		return none, types.ErrPayloadInvalid{Reason: "payload has no content type"}
	}

	tx, err := d.ctx.BeginTx(context.Background(), nil)
	if err != nil {
		return none, types.ErrStorageOp{Op: "update", Err: err}
	}
	defer tx.Rollback()

	var oldRef, oldType, uploadDate string
	err = tx.QueryRow(`
		SELECT
			payload_ref,
			payload_type,
			upload_date
		FROM
			videos
		WHERE
			id=?`, metadata.ID).Scan(&oldRef, &oldType, &uploadDate)
	if err == sql.ErrNoRows {
		return none, types.ErrRecordNotExists{ID: metadata.ID}
	}
	if err != nil {
		return none, types.ErrStorageOp{Op: "update", Err: err}
	}

	// The original upload date survives every edit.
	metadata.UploadDate, err = time.Parse(timeFormat, uploadDate)
	if err != nil {
		return none, types.ErrStorageOp{Op: "update", Err: err}
	}

	if payload != nil {
		// Replacing: the superseded payload is removed best-effort, the
		// new one gets a fresh ref. The old ref is never reused.
		if err := deletePayload(tx, types.PayloadRef(oldRef)); err != nil {
			d.log.Warn().Err(err).Str("ref", oldRef).Msg("could not delete superseded payload")
			payloadCleanupFailures.Inc()
		}

		ref := types.PayloadRef(uuid.New().String())
		size, err := writePayload(tx, ref, payload, contentType, d.chunkSize)
		if err != nil {
			return none, types.ErrStorageOp{Op: "update", Err: err}
		}
		if size == 0 {
			return none, types.ErrPayloadInvalid{Ref: ref, Reason: "payload is empty"}
		}

		metadata.PayloadRef = ref
		metadata.PayloadType = contentType
	} else {
		// Metadata-only edit: carry the stored ref over. The caller may
		// still override the stored type with a hint.
		metadata.PayloadRef = types.PayloadRef(oldRef)
		if contentType != "" {
			metadata.PayloadType = contentType
		} else {
			metadata.PayloadType = types.ContentType(oldType)
		}
	}

	_, err = tx.Exec(`
		UPDATE videos
		SET
			title = ?,
			category = ?,
			description = ?,
			serial_number = ?,
			payload_ref = ?,
			payload_type = ?
		WHERE
			id=?
	`,
		metadata.Title,
		metadata.Category,
		metadata.Description,
		metadata.SerialNumber,
		metadata.PayloadRef,
		metadata.PayloadType,
		metadata.ID,
	)
	if err != nil {
		return none, types.ErrStorageOp{Op: "update", Err: err}
	}

	if err := tx.Commit(); err != nil {
		return none, types.ErrStorageOp{Op: "update", Err: err}
	}

	return metadata, nil
}

func (d *DB) ListAllMetadata() ([]types.VideoMetadata, error) {
	rows, err := d.ctx.Query(`
		SELECT
			id,
			title,
			category,
			description,
			serial_number,
			upload_date,
			payload_ref,
			payload_type
		FROM
			videos`)
	if err != nil {
		return nil, types.ErrStorageOp{Op: "list", Err: err}
	}
	defer rows.Close()

	var all []types.VideoMetadata
	for rows.Next() {
		var m types.VideoMetadata
		var uploadDate string
		if err := rows.Scan(&m.ID, &m.Title, &m.Category, &m.Description,
			&m.SerialNumber, &uploadDate, &m.PayloadRef, &m.PayloadType); err != nil {
			return nil, types.ErrStorageOp{Op: "list", Err: err}
		}
		m.UploadDate, err = time.Parse(timeFormat, uploadDate)
		if err != nil {
			return nil, types.ErrStorageOp{Op: "list", Err: err}
		}
		all = append(all, m)
	}
	if err := rows.Err(); err != nil {
		return nil, types.ErrStorageOp{Op: "list", Err: err}
	}

	return all, nil
}

func (d *DB) GetPayload(ref types.PayloadRef) (*types.Payload, error) {
	if ref == "" {
		return nil, nil
	}

	var contentType string
	var size int64
	err := d.ctx.QueryRow(`
		SELECT
			content_type,
			size
		FROM
			payloads
		WHERE
			id=?`, ref).Scan(&contentType, &size)
	if err == sql.ErrNoRows {
		// Expected degraded state, e.g. after a schema migration dropped
		// the payload tables.
		return nil, nil
	}
	if err != nil {
		return nil, types.ErrStorageOp{Op: "get payload", Err: err}
	}

	r, err := blob.NewReader(d.ctx, ref)
	if errors.Is(err, sql.ErrNoRows) {
		d.log.Warn().Str("ref", string(ref)).Msg("payload row exists but chunks are missing")
		return nil, nil
	}
	if err != nil {
		return nil, types.ErrStorageOp{Op: "get payload", Err: err}
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, types.ErrStorageOp{Op: "get payload", Err: err}
	}

	return &types.Payload{
		Ref:         ref,
		ContentType: types.ContentType(contentType),
		Size:        size,
		Bytes:       data,
	}, nil
}

func (d *DB) DeleteRecord(id types.ID, ref types.PayloadRef) error {
	tx, err := d.ctx.BeginTx(context.Background(), nil)
	if err != nil {
		return types.ErrStorageOp{Op: "delete", Err: err}
	}
	defer tx.Rollback()

	// Deleting a non-existent id succeeds silently.
	_, err = tx.Exec(`
	DELETE FROM
		videos
	WHERE
		id=?`, id)
	if err != nil {
		return types.ErrStorageOp{Op: "delete", Err: err}
	}

	if ref != "" {
		// Cascade to the payload, best-effort: the metadata delete is not
		// contingent on payload cleanup succeeding.
		if err := deletePayload(tx, ref); err != nil {
			d.log.Warn().Err(err).Str("ref", string(ref)).Msg("could not delete payload during cascade")
			payloadCleanupFailures.Inc()
		}
	}

	if err := tx.Commit(); err != nil {
		return types.ErrStorageOp{Op: "delete", Err: err}
	}

	return nil
}

func (d *DB) Close() error {
	return d.ctx.Close()
}

// writePayload streams the payload into chunk rows and then records its
// bookkeeping row. Returns the number of bytes stored.
func writePayload(tx *sql.Tx, ref types.PayloadRef, payload io.Reader, contentType types.ContentType, chunkSize int) (int64, error) {
	w := blob.NewWriter(tx, ref, chunkSize)
	size, err := io.Copy(w, payload)
	if err != nil {
		return 0, err
	}
	if err := w.Close(); err != nil {
		return 0, err
	}

	if size == 0 {
		return 0, nil
	}

	_, err = tx.Exec(`
	INSERT INTO
		payloads
	(
		id,
		content_type,
		size
	)
	VALUES(?,?,?)`, ref, contentType, size)
	if err != nil {
		return 0, err
	}

	payloadBytesStored.Add(float64(size))

	return size, nil
}

func deletePayload(tx *sql.Tx, ref types.PayloadRef) error {
	if ref == "" {
		return nil
	}
	if _, err := tx.Exec(`DELETE FROM payload_chunks WHERE id=?`, ref); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM payloads WHERE id=?`, ref); err != nil {
		return err
	}
	return nil
}

func validateMetadata(metadata types.VideoMetadata) error {
	if metadata.ID == "" {
		return types.ErrInvalidMetadata{Field: "id"}
	}
	if metadata.Title == "" {
		return types.ErrInvalidMetadata{Field: "title"}
	}
	if metadata.Category == "" {
		return types.ErrInvalidMetadata{Field: "category"}
	}
	return nil
}

func migrate(ctx *sql.DB, logger zerolog.Logger) error {
	var currentVersion int
	if err := ctx.QueryRow(`PRAGMA user_version`).Scan(&currentVersion); err != nil {
		return fmt.Errorf("failed to get user_version: %w", err)
	}

	migrations, err := getMigrationsQuery()
	if err != nil {
		return fmt.Errorf("error loading database migrations: %w", err)
	}

	logger.Info().Int("current", currentVersion).Int("latest", len(migrations)).Msg("start schema migration")

	for _, migration := range migrations {
		if migration.version <= currentVersion {
			continue
		}
		tx, err := ctx.BeginTx(context.Background(), nil)
		if err != nil {
			return fmt.Errorf("failed to create transaction %d: %w", migration.version, err)
		}

		if _, err := tx.Exec(migration.query); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to perform DB migration %d: %w", migration.version, err)
		}

		if _, err := tx.Exec(fmt.Sprintf(`pragma user_version=%d`, migration.version)); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to update DB version to %d: %w", migration.version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.version, err)
		}

		logger.Info().Int("version", migration.version).Msg("applied schema migration")
	}

	return nil
}

func getMigrationsQuery() ([]dbMigration, error) {
	migrations := []dbMigration{}
	dirname := "migrations"

	entries, err := migrationsFs.ReadDir(dirname)
	if err != nil {
		return []dbMigration{}, err
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		version, err := getMigrationVersion(entry.Name())
		if err != nil {
			return []dbMigration{}, err
		}

		query, err := migrationsFs.ReadFile(path.Join(dirname, entry.Name()))
		if err != nil {
			return []dbMigration{}, err
		}

		migrations = append(migrations, dbMigration{version: version, query: string(query)})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].version < migrations[j].version
	})

	return migrations, nil
}

func getMigrationVersion(filename string) (int, error) {
	version, err := strconv.ParseInt(filename[:3], 10, 32)
	if err != nil {
		return 0, fmt.Errorf("migration version is wrong: %v", filename)
	}
	return int(version), nil
}

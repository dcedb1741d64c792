package blob

import (
	"bytes"
	"fmt"
	"io"

	"github.com/vaarrunii/VidVault/internal/types"
)

type reader struct {
	ctx       Querier
	ref       types.PayloadRef
	length    int64
	offset    int64
	chunkSize int64
	buf       *bytes.Buffer
}

// NewReader opens a ReadSeeker over the chunk rows stored for ref. It fails
// with sql.ErrNoRows when no chunks exist for the ref.
func NewReader(ctx Querier, ref types.PayloadRef) (io.ReadSeeker, error) {
	chunkSize, err := getChunkSize(ctx, ref)
	if err != nil {
		return nil, err
	}

	length, err := getPayloadLength(ctx, ref, chunkSize)
	if err != nil {
		return nil, err
	}

	return &reader{
		ctx:       ctx,
		ref:       ref,
		length:    length,
		offset:    0,
		chunkSize: chunkSize,
		buf:       bytes.NewBuffer([]byte{}),
	}, nil
}

func (r *reader) Read(p []byte) (n int, err error) {
	read := 0
	for {
		n, err := r.buf.Read(p[read:])
		read += n
		// If buf is empty, check if we've read the entire payload
		if err == io.EOF {
			if r.offset == r.length {
				return read, io.EOF
			}
			// Repopulate the buf with the next chunk row and continue
			if err := r.populateBuffer(); err != nil {
				return read, err
			}
			continue
		}
		if read >= len(p) {
			break
		}
	}

	return read, nil
}

func (r *reader) Seek(offset int64, whence int) (int64, error) {
	// Reset the buf since seeking to a new position invalidates its content
	r.buf = bytes.NewBuffer([]byte{})

	switch whence {
	case io.SeekStart:
		r.offset = offset
	case io.SeekCurrent:
		r.offset += offset
	case io.SeekEnd:
		r.offset = r.length + offset
	default:
		return r.offset, fmt.Errorf("invalid whence value: %d", whence)
	}

	return r.offset, nil
}

func (r *reader) populateBuffer() error {
	if r.offset == r.length {
		return io.EOF
	}
	chunkIndex := r.offset / r.chunkSize

	var chunk []byte
	err := r.ctx.QueryRow(`
		SELECT chunk
		FROM payload_chunks
		WHERE id=? AND chunk_index=?
		ORDER BY
		    chunk_index ASC
	`, r.ref, chunkIndex).Scan(&chunk)
	if err != nil {
		return err
	}

	// Start within the chunk at the position the payload offset points to
	readStart := r.offset % r.chunkSize

	r.buf = bytes.NewBuffer(chunk[readStart:])
	r.offset += int64(len(chunk)) - readStart

	return nil
}

func getChunkSize(ctx Querier, ref types.PayloadRef) (int64, error) {
	var chunkSize int64
	if err := ctx.QueryRow(`
		SELECT
		LENGTH(chunk) AS chunk_size
		FROM
			payload_chunks
		WHERE
			id=?
		ORDER BY
			chunk_index ASC
		LIMIT 1
	`, ref).Scan(&chunkSize); err != nil {
		return 0, err
	}

	return chunkSize, nil
}

func getPayloadLength(ctx Querier, ref types.PayloadRef, chunkSize int64) (int64, error) {
	var chunkIndex int64
	var chunkLen int64
	// the last chunk index and the length of that chunk bound the payload
	if err := ctx.QueryRow(`
		SELECT
			chunk_index,
			LENGTH(chunk) AS chunk_size
		FROM
			payload_chunks
		WHERE
			id=?
		ORDER BY
			chunk_index DESC
		LIMIT 1
	`, ref).Scan(&chunkIndex, &chunkLen); err != nil {
		return 0, err
	}

	return (chunkSize * chunkIndex) + chunkLen, nil
}

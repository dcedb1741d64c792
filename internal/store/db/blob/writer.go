package blob

import (
	"io"

	"github.com/vaarrunii/VidVault/internal/types"
)

type writer struct {
	ctx     Execer
	ref     types.PayloadRef
	buf     []byte
	written int
}

// NewWriter creates a Writer that stores payload bytes under the given ref.
// The data is split into separate rows in the payload_chunks table, with
// each row containing at most chunkLen bytes.
func NewWriter(ctx Execer, ref types.PayloadRef, chunkLen int) io.WriteCloser {
	return &writer{
		ctx: ctx,
		ref: ref,
		buf: make([]byte, chunkLen),
	}
}

func (w *writer) Write(data []byte) (int, error) {
	bytesWritten := 0

	for {
		if bytesWritten == len(data) {
			break
		}
		bufferStart := w.written % len(w.buf)
		copySize := min(len(w.buf)-bufferStart, len(data)-bytesWritten)
		bufferEnd := bufferStart + copySize
		copy(w.buf[bufferStart:bufferEnd], data[bytesWritten:bytesWritten+copySize])

		if bufferEnd == len(w.buf) {
			if err := w.flush(len(w.buf)); err != nil {
				return bytesWritten, err
			}
		}

		w.written += copySize
		bytesWritten += copySize
	}

	return bytesWritten, nil
}

func (w *writer) Close() error {
	unflushed := w.written % len(w.buf)
	if unflushed != 0 {
		return w.flush(unflushed)
	}
	return nil
}

// flush writes one chunk row: the payload ref, the index of the chunk
// within the payload, and the first n buffered bytes.
func (w *writer) flush(n int) error {
	idx := w.written / len(w.buf)
	_, err := w.ctx.Exec(`
	INSERT INTO
		payload_chunks
	(
		id,
		chunk_index,
		chunk
	)
	VALUES(?,?,?)
 	`, w.ref, idx, w.buf[0:n])
	return err
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

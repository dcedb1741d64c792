package blob_test

import (
	"database/sql"
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vaarrunii/VidVault/internal/store/db/blob"
	"github.com/vaarrunii/VidVault/internal/types"
)

type (
	mockChunkRow struct {
		ref        types.PayloadRef
		chunkIndex int
		chunk      []byte
	}

	mockSqlDB struct {
		rows []mockChunkRow
		err  error
	}
)

var errMockSqlFailure = errors.New("wrong SQL")

func (db *mockSqlDB) Exec(query string, args ...interface{}) (sql.Result, error) {
	chunk := args[2].([]byte)
	chunkCopy := make([]byte, len(chunk))
	copy(chunkCopy, chunk)
	db.rows = append(db.rows, mockChunkRow{
		ref:        args[0].(types.PayloadRef),
		chunkIndex: args[1].(int),
		chunk:      chunkCopy,
	})
	return nil, db.err
}

func TestWritePayload(t *testing.T) {
	for _, row := range []struct {
		description  string
		ref          types.PayloadRef
		data         []byte
		chunkSize    int
		sqlExecErr   error
		errExpected  error
		rowsExpected []mockChunkRow
	}{
		{
			description: "data is smaller than chunk size",
			ref:         types.PayloadRef("test_ref"),
			data:        []byte("test test test"),
			chunkSize:   30,
			rowsExpected: []mockChunkRow{
				{
					ref:        types.PayloadRef("test_ref"),
					chunkIndex: 0,
					chunk:      []byte("test test test"),
				},
			},
		},
		{
			description: "data fills a single chunk",
			ref:         types.PayloadRef("test_ref"),
			data:        []byte("test"),
			chunkSize:   4,
			rowsExpected: []mockChunkRow{
				{
					ref:        types.PayloadRef("test_ref"),
					chunkIndex: 0,
					chunk:      []byte("test"),
				},
			},
		},
		{
			description: "data is split into two chunks",
			ref:         types.PayloadRef("test_ref"),
			data:        []byte("123456"),
			chunkSize:   5,
			rowsExpected: []mockChunkRow{
				{
					ref:        types.PayloadRef("test_ref"),
					chunkIndex: 0,
					chunk:      []byte("12345"),
				},
				{
					ref:        types.PayloadRef("test_ref"),
					chunkIndex: 1,
					chunk:      []byte("6"),
				},
			},
		},
		{
			description: "data is split exactly into two chunks",
			ref:         types.PayloadRef("test_ref"),
			data:        []byte("1234567890"),
			chunkSize:   5,
			rowsExpected: []mockChunkRow{
				{
					ref:        types.PayloadRef("test_ref"),
					chunkIndex: 0,
					chunk:      []byte("12345"),
				},
				{
					ref:        types.PayloadRef("test_ref"),
					chunkIndex: 1,
					chunk:      []byte("67890"),
				},
			},
		},
		{
			description: "write fails when SQL execution returns error",
			ref:         types.PayloadRef("test_ref"),
			data:        []byte("1234567890"),
			chunkSize:   5,
			sqlExecErr:  errMockSqlFailure,
			errExpected: errMockSqlFailure,
		},
	} {
		t.Run(row.description, func(t *testing.T) {
			tx := mockSqlDB{
				err: row.sqlExecErr,
			}

			w := blob.NewWriter(&tx, row.ref, row.chunkSize)
			n, err := w.Write(row.data)

			require.Equal(t, err, row.errExpected)

			if err != nil {
				return
			}

			require.Equal(t, n, len(row.data))

			err = w.Close()
			require.Nil(t, err)

			res := reflect.DeepEqual(row.rowsExpected, tx.rows)
			require.True(t, res)
		})
	}
}

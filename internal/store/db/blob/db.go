package blob

import "database/sql"

// Execer is the subset of *sql.DB / *sql.Tx the chunk writer needs.
type Execer interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
}

// Querier is the subset of *sql.DB / *sql.Tx the chunk reader needs.
type Querier interface {
	QueryRow(query string, args ...interface{}) *sql.Row
}

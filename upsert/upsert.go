package upsert

import (
	"context"
	"database/sql"
)

// Executor runs a statement with positional arguments. *sql.DB, *sql.Tx,
// *sql.Conn and their sqlx wrappers all satisfy it.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// TxBeginner is an executor able to open a transaction, such as *sql.DB.
type TxBeginner interface {
	Executor
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// Upserter inserts rows into table, updating them on duplicate key.
//
// data is a Row, a []Row, a map[string]any, a []map[string]any or a []any of
// rows. The result is returned as reported by the database: for a single row
// MySQL reports 0 when unchanged, 1 when inserted and 2 when updated.
type Upserter interface {
	Upsert(ctx context.Context, table string, data any, update UpdateSpec) (sql.Result, error)
}

// Options tune statement building. The zero value reproduces the plain
// behaviour: rows are trusted to share the first row's columns and no
// identifier is checked.
type Options struct {
	// StrictRows rejects rows whose columns differ from the first row's.
	StrictRows bool
	// CheckIdentifiers rejects table and column names that are not simple
	// unqualified identifiers, including for an empty batch. Nothing is ever
	// escaped or rewritten.
	CheckIdentifiers bool
}

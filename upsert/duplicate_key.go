package upsert

import (
	"context"
	"database/sql"
)

// DuplicateKeyUpserter sends the whole batch as one INSERT ... ON DUPLICATE KEY UPDATE.
type DuplicateKeyUpserter struct {
	db   Executor
	opts Options
}

func NewDuplicateKeyUpserter(db Executor) *DuplicateKeyUpserter {
	return &DuplicateKeyUpserter{db: db}
}

// WithOptions returns a shallow copy using opts for statement building.
func (d *DuplicateKeyUpserter) WithOptions(opts Options) *DuplicateKeyUpserter {
	clone := *d
	clone.opts = opts
	return &clone
}

func (d *DuplicateKeyUpserter) Upsert(ctx context.Context, table string, data any, update UpdateSpec) (sql.Result, error) {
	stmt, err := d.opts.Build(table, data, update)
	if err != nil {
		return nil, err
	}
	return d.db.ExecContext(ctx, stmt.SQL, stmt.Args...)
}

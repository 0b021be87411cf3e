package upsert

import (
	"context"
	"database/sql"
)

// MaxPlaceholders is the MySQL limit of parameters in one prepared statement.
const MaxPlaceholders = 65535

// BatchedUpserter splits large batches into several upsert statements.
// When the executor can begin transactions, a multi-chunk batch runs in one
// transaction.
type BatchedUpserter struct {
	db        Executor
	batchSize int
	opts      Options
}

func NewBatchedUpserter(db Executor) *BatchedUpserter {
	return &BatchedUpserter{db: db, batchSize: 500}
}

// WithBatchSize returns a shallow copy with an overridden batch size for testing and tuning.
func (b *BatchedUpserter) WithBatchSize(size int) *BatchedUpserter {
	clone := *b
	clone.batchSize = size
	return &clone
}

// WithOptions returns a shallow copy using opts for statement building.
func (b *BatchedUpserter) WithOptions(opts Options) *BatchedUpserter {
	clone := *b
	clone.opts = opts
	return &clone
}

func (b *BatchedUpserter) Upsert(ctx context.Context, table string, data any, update UpdateSpec) (sql.Result, error) {
	if b.batchSize <= 0 {
		return nil, invalidInput("batch size must be positive")
	}
	rows, err := Normalize(data)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		stmt, err := b.opts.BuildRows(table, nil, update)
		if err != nil {
			return nil, err
		}
		return b.db.ExecContext(ctx, stmt.SQL, stmt.Args...)
	}
	if b.opts.StrictRows {
		if err := checkShape(rows); err != nil {
			return nil, err
		}
	}

	chunks := chunkRows(rows, b.batchSize, MaxPlaceholders)
	stmts := make([]Statement, len(chunks))
	for i, chunk := range chunks {
		if stmts[i], err = b.opts.BuildRows(table, chunk, update); err != nil {
			return nil, err
		}
	}

	if len(stmts) == 1 {
		return b.db.ExecContext(ctx, stmts[0].SQL, stmts[0].Args...)
	}
	beginner, ok := b.db.(TxBeginner)
	if !ok {
		return execAll(ctx, b.db, stmts)
	}

	tx, err := beginner.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	res, err := execAll(ctx, tx, stmts)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return res, nil
}

func execAll(ctx context.Context, db Executor, stmts []Statement) (sql.Result, error) {
	var total batchResult
	for i, stmt := range stmts {
		res, err := db.ExecContext(ctx, stmt.SQL, stmt.Args...)
		if err != nil {
			return nil, err
		}
		if err := total.add(res, i == 0); err != nil {
			return nil, err
		}
	}
	return total, nil
}

// chunkRows cuts rows into runs of at most batchSize rows and maxArgs values.
// A single row wider than maxArgs still forms its own chunk.
func chunkRows(rows []Row, batchSize, maxArgs int) [][]Row {
	var chunks [][]Row
	start, args := 0, 0
	for i, row := range rows {
		if i > start && (i-start >= batchSize || args+len(row) > maxArgs) {
			chunks = append(chunks, rows[start:i])
			start, args = i, 0
		}
		args += len(row)
	}
	if start < len(rows) {
		chunks = append(chunks, rows[start:])
	}
	return chunks
}

// batchResult sums affected rows over several statements and keeps the
// first statement's insert id.
type batchResult struct {
	lastInsertID int64
	rowsAffected int64
}

func (r batchResult) LastInsertId() (int64, error) { return r.lastInsertID, nil }

func (r batchResult) RowsAffected() (int64, error) { return r.rowsAffected, nil }

func (r *batchResult) add(res sql.Result, first bool) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	r.rowsAffected += n
	if first {
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		r.lastInsertID = id
	}
	return nil
}

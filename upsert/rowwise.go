package upsert

import (
	"context"
	"database/sql"
)

// RowwiseUpserter upserts one row per statement inside a transaction, which
// lets callers see what happened to each row.
type RowwiseUpserter struct {
	db   TxBeginner
	opts Options
}

func NewRowwiseUpserter(db TxBeginner) *RowwiseUpserter {
	return &RowwiseUpserter{db: db}
}

// WithOptions returns a shallow copy using opts for statement building.
func (r *RowwiseUpserter) WithOptions(opts Options) *RowwiseUpserter {
	clone := *r
	clone.opts = opts
	return &clone
}

func (r *RowwiseUpserter) Upsert(ctx context.Context, table string, data any, update UpdateSpec) (sql.Result, error) {
	rows, err := Normalize(data)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return r.execEmpty(ctx, table, update)
	}
	outcomes, firstID, err := r.upsertRows(ctx, table, rows, update)
	if err != nil {
		return nil, err
	}
	total := batchResult{lastInsertID: firstID}
	for _, o := range outcomes {
		total.rowsAffected += int64(o)
	}
	return total, nil
}

// UpsertEach returns the outcome of every row, in input order. Empty input
// runs the bare "INSERT INTO <table> () VALUES ()" and reports no outcomes.
func (r *RowwiseUpserter) UpsertEach(ctx context.Context, table string, data any, update UpdateSpec) ([]Outcome, error) {
	rows, err := Normalize(data)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		_, err := r.execEmpty(ctx, table, update)
		return nil, err
	}
	outcomes, _, err := r.upsertRows(ctx, table, rows, update)
	return outcomes, err
}

func (r *RowwiseUpserter) execEmpty(ctx context.Context, table string, update UpdateSpec) (sql.Result, error) {
	stmt, err := r.opts.BuildRows(table, nil, update)
	if err != nil {
		return nil, err
	}
	return r.db.ExecContext(ctx, stmt.SQL, stmt.Args...)
}

// upsertRows also returns the first row's insert id.
func (r *RowwiseUpserter) upsertRows(ctx context.Context, table string, rows []Row, update UpdateSpec) ([]Outcome, int64, error) {
	var err error
	if r.opts.StrictRows {
		if err := checkShape(rows); err != nil {
			return nil, 0, err
		}
	}

	stmts := make([]Statement, len(rows))
	for i, row := range rows {
		if stmts[i], err = r.opts.BuildRows(table, []Row{row}, update); err != nil {
			return nil, 0, err
		}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, 0, err
	}

	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var firstID int64
	outcomes := make([]Outcome, len(stmts))
	for i, stmt := range stmts {
		res, err := tx.ExecContext(ctx, stmt.SQL, stmt.Args...)
		if err != nil {
			return nil, 0, err
		}
		if i == 0 {
			if firstID, err = res.LastInsertId(); err != nil {
				return nil, 0, err
			}
		}
		if outcomes[i], err = OutcomeOf(res); err != nil {
			return nil, 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, 0, err
	}
	committed = true
	return outcomes, firstID, nil
}

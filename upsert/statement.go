package upsert

import (
	"strings"
)

// Statement is a built SQL string with its positional arguments.
type Statement struct {
	SQL  string
	Args []any
}

// Build normalizes data and builds its upsert statement with default options.
//
// The table and column names are wrapped in backticks but never escaped, and
// raw update expressions are emitted verbatim. Callers must only pass trusted
// identifiers; see Options.CheckIdentifiers for an opt-in guard.
func Build(table string, data any, update UpdateSpec) (Statement, error) {
	return Options{}.Build(table, data, update)
}

// Build normalizes data and builds its upsert statement.
func (o Options) Build(table string, data any, update UpdateSpec) (Statement, error) {
	rows, err := Normalize(data)
	if err != nil {
		return Statement{}, err
	}
	return o.BuildRows(table, rows, update)
}

// BuildRows builds the statement for an already normalized batch.
//
// An empty batch yields "INSERT INTO <table> () VALUES ()" with no arguments.
func (o Options) BuildRows(table string, rows []Row, update UpdateSpec) (Statement, error) {
	if o.CheckIdentifiers && !isSafeIdentifier(table) {
		return Statement{}, invalidInput("table: invalid identifier %q", table)
	}
	if len(rows) == 0 {
		return Statement{SQL: "INSERT INTO " + table + " () VALUES ()"}, nil
	}
	first := rows[0]
	if len(first) == 0 {
		return Statement{}, invalidInput("first row has no columns")
	}
	columns := first.Columns()

	if o.StrictRows {
		if err := checkShape(rows); err != nil {
			return Statement{}, err
		}
	}
	if o.CheckIdentifiers {
		if err := checkIdentifiers(columns, update); err != nil {
			return Statement{}, err
		}
	}

	var sb strings.Builder
	sb.WriteString("INSERT INTO `")
	sb.WriteString(table)
	sb.WriteString("`(`")
	sb.WriteString(strings.Join(columns, "`,`"))
	sb.WriteString("`) VALUES ")
	sb.WriteString(placeholders(rows))
	sb.WriteString(" ON DUPLICATE KEY UPDATE ")
	sb.WriteString(update.clause(columns))

	return Statement{SQL: sb.String(), Args: flatten(rows)}, nil
}

// checkShape fails on the first row whose columns differ from rows[0].
func checkShape(rows []Row) error {
	if len(rows) == 0 {
		return nil
	}
	columns := rows[0].Columns()
	for i, row := range rows[1:] {
		if err := row.sameShape(columns); err != nil {
			return invalidInput("row %d: %v", i+1, err)
		}
	}
	return nil
}

// placeholders renders one (?,...) group per row using that row's own arity.
func placeholders(rows []Row) string {
	groups := make([]string, len(rows))
	for i, row := range rows {
		marks := strings.Repeat("?,", len(row))
		groups[i] = "(" + strings.TrimSuffix(marks, ",") + ")"
	}
	return strings.Join(groups, ", ")
}

func flatten(rows []Row) []any {
	n := 0
	for _, row := range rows {
		n += len(row)
	}
	args := make([]any, 0, n)
	for _, row := range rows {
		for _, f := range row {
			args = append(args, f.Value)
		}
	}
	return args
}

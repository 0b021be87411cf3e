package upsert

import (
	"fmt"
	"sort"
	"strings"
)

// Assignment is one entry of the ON DUPLICATE KEY UPDATE clause.
//
// A plain assignment renders Column as `col` = VALUES(`col`). A raw one,
// built with Set or UpdateExprs, is emitted verbatim as "Column = Expr" even
// when Expr is empty. Neither side of a raw assignment is quoted or escaped:
// Expr is a SQL fragment and must come from trusted code, never from user
// input.
type Assignment struct {
	Column string
	Expr   string
	Raw    bool
}

// UpdateSpec lists the assignments of the update clause. An empty spec
// updates every column of the first row from its inserted value.
type UpdateSpec []Assignment

// UpdateColumns returns a spec that updates only the given columns.
func UpdateColumns(columns ...string) UpdateSpec {
	spec := make(UpdateSpec, len(columns))
	for i, c := range columns {
		spec[i] = Assignment{Column: c}
	}
	return spec
}

// Set returns a raw "lhs = rhs" assignment.
func Set(lhs, rhs string) Assignment {
	return Assignment{Column: lhs, Expr: rhs, Raw: true}
}

// UpdateExprs returns raw assignments for every entry of exprs, ordered by lhs.
func UpdateExprs(exprs map[string]string) UpdateSpec {
	keys := make([]string, 0, len(exprs))
	for k := range exprs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	spec := make(UpdateSpec, len(keys))
	for i, k := range keys {
		spec[i] = Set(k, exprs[k])
	}
	return spec
}

func (a Assignment) raw() bool {
	return a.Raw
}

func (a Assignment) String() string {
	if a.raw() {
		return fmt.Sprintf("%s = %s", a.Column, a.Expr)
	}
	return fmt.Sprintf("`%s` = VALUES(`%s`)", a.Column, a.Column)
}

func (s UpdateSpec) clause(columns []string) string {
	if len(s) == 0 {
		s = UpdateColumns(columns...)
	}
	parts := make([]string, len(s))
	for i, a := range s {
		parts[i] = a.String()
	}
	return strings.Join(parts, ", ")
}

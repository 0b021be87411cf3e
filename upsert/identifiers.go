package upsert

import "unicode"

// isSafeIdentifier reports whether the identifier meets simple SQL safety rules.
// Qualified names such as "shop.users" are rejected: Build wraps the whole
// name in one pair of backticks, which MySQL reads as a single table name.
func isSafeIdentifier(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		if r == '_' {
			continue
		}
		if unicode.IsLetter(r) {
			continue
		}
		if unicode.IsDigit(r) {
			if i == 0 {
				return false
			}
			continue
		}
		return false
	}
	return true
}

// checkIdentifiers validates the column names Build would emit inside
// backticks. The table is checked by BuildRows. Raw update expressions are
// left alone.
func checkIdentifiers(columns []string, update UpdateSpec) error {
	for i, c := range columns {
		if !isSafeIdentifier(c) {
			return invalidInput("column[%d]: invalid identifier %q", i, c)
		}
	}
	for i, a := range update {
		if a.raw() {
			continue
		}
		if !isSafeIdentifier(a.Column) {
			return invalidInput("update[%d]: invalid identifier %q", i, a.Column)
		}
	}
	return nil
}

package upsert

import (
	"database/sql"
	"fmt"
)

// Outcome is the effect of a single-row upsert as reported by MySQL.
type Outcome int

const (
	Unchanged Outcome = iota
	Inserted
	Updated
)

func (o Outcome) String() string {
	switch o {
	case Unchanged:
		return "unchanged"
	case Inserted:
		return "inserted"
	case Updated:
		return "updated"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// OutcomeOf decodes the affected-rows count of a single-row upsert.
// Connections opened with clientFoundRows=true report 1 for unchanged rows.
func OutcomeOf(res sql.Result) (Outcome, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	switch n {
	case 0, 1, 2:
		return Outcome(n), nil
	}
	return 0, fmt.Errorf("affected rows %d is not a single-row upsert outcome", n)
}

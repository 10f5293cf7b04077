package search

import (
	"errors"
	"strings"

	"gorm.io/gorm/clause"
)

// ErrBadSort is returned by ParseSort for unknown fields or directions.
var ErrBadSort = errors.New("invalid sort")

// sortable maps public sort keys to animals columns.
var sortable = map[string]string{
	"id":         "id",
	"name":       "name",
	"birth_date": "birth_date",
	"birthdate":  "birth_date",
	"created_at": "created_at",
}

// Sort is a validated ordering on the animals table.
type Sort struct {
	Column string
	Desc   bool
}

// DefaultSort orders newest listings first.
var DefaultSort = Sort{Column: "id", Desc: true}

// ParseSort parses "field" or "field,dir" where dir is asc or desc.
// Blank input yields DefaultSort.
func ParseSort(s string) (Sort, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultSort, nil
	}
	field, dir, _ := strings.Cut(s, ",")
	column, ok := sortable[strings.ToLower(strings.TrimSpace(field))]
	if !ok {
		return Sort{}, ErrBadSort
	}
	out := Sort{Column: column}
	switch strings.ToLower(strings.TrimSpace(dir)) {
	case "", "asc":
	case "desc":
		out.Desc = true
	default:
		return Sort{}, ErrBadSort
	}
	return out, nil
}

// OrderBy renders the sort with id as a stable tie-breaker.
func (s Sort) OrderBy() clause.OrderBy {
	cols := []clause.OrderByColumn{{Column: col(s.Column), Desc: s.Desc}}
	if s.Column != "id" {
		cols = append(cols, clause.OrderByColumn{Column: col("id"), Desc: s.Desc})
	}
	return clause.OrderBy{Columns: cols}
}

// String renders the sort back into its "field,dir" form.
func (s Sort) String() string {
	if s.Desc {
		return s.Column + ",desc"
	}
	return s.Column + ",asc"
}

// Package search turns optional animal search criteria into a single
// composite store predicate. Every present criterion becomes one clause from
// a closed set of variants; the predicate is the AND of all clauses, and an
// empty criteria set yields a predicate that matches every animal.
//
// The package has no I/O and no logging. Predicates are immutable values,
// safe for concurrent use, and render to gorm clause expressions so the
// repository layer can apply them to any query on the animals table.
package search

import (
	"strings"
	"time"

	"gorm.io/gorm/clause"

	"github.com/tbourn/go-adoption-backend/internal/domain"
)

// Criteria holds the optional filters of an animal search. Nil pointers and
// blank text mean "no constraint", never "false".
type Criteria struct {
	Text       string
	CategoryID *uint
	BreedID    *uint
	Gender     *domain.Gender
	Size       *domain.Size
	AgeGroup   *domain.AgeGroup
	Adopted    *bool
}

// Clause is one filter of the closed set below. Expression renders it for a
// query whose base table is animals, anchoring time-relative filters on now.
type Clause interface {
	Expression(now time.Time) clause.Expression
	isClause()
}

// CategoryEquals keeps animals of one category.
type CategoryEquals struct{ CategoryID uint }

// BreedEquals keeps animals of one breed.
type BreedEquals struct{ BreedID uint }

// GenderEquals keeps animals of one gender.
type GenderEquals struct{ Gender domain.Gender }

// SizeEquals keeps animals of one size.
type SizeEquals struct{ Size domain.Size }

// AgeGroupRange keeps animals whose birth date falls in the group's window.
type AgeGroupRange struct{ Group domain.AgeGroup }

// AdoptedEquals keeps animals by adoption flag.
type AdoptedEquals struct{ Adopted bool }

// TextTokenMatch keeps animals where Token occurs, case-insensitively, in the
// name, the short description, the category name or the breed name.
// Token must already be lower-cased.
type TextTokenMatch struct{ Token string }

func (CategoryEquals) isClause() {}
func (BreedEquals) isClause()    {}
func (GenderEquals) isClause()   {}
func (SizeEquals) isClause()     {}
func (AgeGroupRange) isClause()  {}
func (AdoptedEquals) isClause()  {}
func (TextTokenMatch) isClause() {}

func col(name string) clause.Column {
	return clause.Column{Table: "animals", Name: name}
}

func (c CategoryEquals) Expression(time.Time) clause.Expression {
	return clause.Eq{Column: col("category_id"), Value: c.CategoryID}
}

func (c BreedEquals) Expression(time.Time) clause.Expression {
	return clause.Eq{Column: col("breed_id"), Value: c.BreedID}
}

func (c GenderEquals) Expression(time.Time) clause.Expression {
	return clause.Eq{Column: col("gender"), Value: string(c.Gender)}
}

func (c SizeEquals) Expression(time.Time) clause.Expression {
	return clause.Eq{Column: col("size"), Value: string(c.Size)}
}

func (c AdoptedEquals) Expression(time.Time) clause.Expression {
	return clause.Eq{Column: col("adopted"), Value: c.Adopted}
}

// Expression renders the birth-date window of the group. An unknown group
// matches nothing.
func (c AgeGroupRange) Expression(now time.Time) clause.Expression {
	r, ok := domain.BirthRangeFor(c.Group, now)
	if !ok {
		return clause.Expr{SQL: "1 = 0"}
	}
	var upper clause.Expression = clause.Lt{Column: col("birth_date"), Value: r.To}
	if r.ToInclusive {
		upper = clause.Lte{Column: col("birth_date"), Value: r.To}
	}
	return clause.And(clause.Gte{Column: col("birth_date"), Value: r.From}, upper)
}

// Matching runs against the folded columns, which hold the same Unicode
// lower-casing Tokenize applies, so no store-side LOWER is involved.
const tokenMatchSQL = "(animals.name_fold LIKE ? ESCAPE '\\'" +
	" OR animals.short_description_fold LIKE ? ESCAPE '\\'" +
	" OR animals.category_id IN (SELECT categories.id FROM categories WHERE categories.name_fold LIKE ? ESCAPE '\\')" +
	" OR animals.breed_id IN (SELECT breeds.id FROM breeds WHERE breeds.name_fold LIKE ? ESCAPE '\\'))"

func (c TextTokenMatch) Expression(time.Time) clause.Expression {
	p := "%" + EscapeLike(c.Token) + "%"
	return clause.Expr{SQL: tokenMatchSQL, Vars: []any{p, p, p, p}}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLike escapes LIKE wildcards so s only ever matches literally.
// The escape character is a backslash.
func EscapeLike(s string) string { return likeEscaper.Replace(s) }

// Tokenize trims, lower-cases and splits free text on whitespace.
// Blank input yields no tokens.
func Tokenize(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	return strings.Fields(domain.Fold(text))
}

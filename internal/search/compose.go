package search

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Predicate is the AND of a list of clauses, anchored on a fixed instant.
type Predicate struct {
	clauses []Clause
	now     time.Time
}

// Compose builds the predicate for c. Criteria are read, never modified.
// Clause order is stable: equality filters first, then the age window,
// then one TextTokenMatch per token in input order.
func Compose(c Criteria, now time.Time) Predicate {
	var cs []Clause
	if c.CategoryID != nil {
		cs = append(cs, CategoryEquals{CategoryID: *c.CategoryID})
	}
	if c.BreedID != nil {
		cs = append(cs, BreedEquals{BreedID: *c.BreedID})
	}
	if c.Gender != nil {
		cs = append(cs, GenderEquals{Gender: *c.Gender})
	}
	if c.Size != nil {
		cs = append(cs, SizeEquals{Size: *c.Size})
	}
	if c.Adopted != nil {
		cs = append(cs, AdoptedEquals{Adopted: *c.Adopted})
	}
	if c.AgeGroup != nil {
		cs = append(cs, AgeGroupRange{Group: *c.AgeGroup})
	}
	for _, tok := range Tokenize(c.Text) {
		cs = append(cs, TextTokenMatch{Token: tok})
	}
	return Predicate{clauses: cs, now: now}
}

// Clauses returns a copy of the predicate's clauses.
func (p Predicate) Clauses() []Clause {
	out := make([]Clause, len(p.clauses))
	copy(out, p.clauses)
	return out
}

// Empty reports whether the predicate matches every animal.
func (p Predicate) Empty() bool { return len(p.clauses) == 0 }

// Expression renders the conjunction. It returns nil for an empty predicate.
func (p Predicate) Expression() clause.Expression {
	if p.Empty() {
		return nil
	}
	exprs := make([]clause.Expression, 0, len(p.clauses))
	for _, c := range p.clauses {
		exprs = append(exprs, c.Expression(p.now))
	}
	return clause.And(exprs...)
}

// Scope applies the predicate to a query on the animals table.
// An empty predicate leaves the query untouched.
func (p Predicate) Scope(db *gorm.DB) *gorm.DB {
	if expr := p.Expression(); expr != nil {
		return db.Where(expr)
	}
	return db
}

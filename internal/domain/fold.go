package domain

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"
)

// Fold lower-cases s with full Unicode rules. Searchable text is stored
// folded next to the original so matching never depends on the store's
// own LOWER, which on SQLite only folds ASCII.
func Fold(s string) string {
	// Casers carry state and must not be shared across goroutines.
	return cases.Lower(language.Und).String(s)
}

// BeforeSave keeps the folded name in step with Name.
func (c *Category) BeforeSave(*gorm.DB) error {
	c.NameFold = Fold(c.Name)
	return nil
}

// BeforeSave keeps the folded name in step with Name.
func (b *Breed) BeforeSave(*gorm.DB) error {
	b.NameFold = Fold(b.Name)
	return nil
}

// BeforeSave keeps the folded search columns in step with Name and
// ShortDescription. Column-map updates bypass struct hooks; the repository
// adds the folded columns for those.
func (a *Animal) BeforeSave(*gorm.DB) error {
	a.NameFold = Fold(a.Name)
	a.ShortFold = Fold(a.ShortDescription)
	return nil
}

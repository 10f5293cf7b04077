package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-adoption-backend/internal/domain"
)

// SeedSummary reports what Seed inserted.
type SeedSummary struct {
	Users, Categories, Breeds, Animals int
}

// Seed loads a small demo dataset: an administrator, two owners, the Dog and
// Cat taxonomies and a handful of animals. It does nothing when any user
// already exists, so it is safe to run on every start. Birth dates are
// anchored on now so the age groups stay stable.
func Seed(ctx context.Context, db *gorm.DB, now time.Time) (SeedSummary, error) {
	var sum SeedSummary
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&domain.User{}).Count(&n).Error; err != nil {
			return Classify(err)
		}
		if n > 0 {
			return nil
		}

		users := []*domain.User{
			{Name: "Admin", Email: "admin@example.com", Role: domain.RoleAdmin},
			{Name: "Olga Papadopoulou", Email: "olga@example.com", Phone: "+30 210 555 0101"},
			{Name: "Rui Costa", Email: "rui@example.com", Phone: "+351 21 555 0199"},
		}
		for _, u := range users {
			if err := CreateUser(ctx, tx, u); err != nil {
				return err
			}
		}
		sum.Users = len(users)

		breedsBy := map[string][]string{
			"Dog": {"Golden Retriever", "Labrador", "Poodle"},
			"Cat": {"Maine Coon", "Siamese"},
		}
		breeds := map[string]uint{}
		for _, cat := range []string{"Dog", "Cat"} {
			c := &domain.Category{Name: cat, Active: true}
			if err := CreateCategory(ctx, tx, c); err != nil {
				return err
			}
			sum.Categories++
			for _, name := range breedsBy[cat] {
				b := &domain.Breed{CategoryID: c.ID, Name: name, Active: true}
				if err := CreateBreed(ctx, tx, b); err != nil {
					return err
				}
				breeds[name] = b.ID
				sum.Breeds++
			}
		}

		day := domain.Date(now)
		animals := []struct {
			name, short, breed string
			gender             domain.Gender
			size               domain.Size
			born               time.Time
			owner              *domain.User
		}{
			{"Max", "Calm family dog", "Golden Retriever", domain.GenderMale, domain.SizeLarge, day.AddDate(-3, 0, 0), users[1]},
			{"Bella", "Playful puppy", "Poodle", domain.GenderFemale, domain.SizeSmall, day.AddDate(0, -3, 0), users[1]},
			{"Luna", "Indoor cat, loves naps", "Siamese", domain.GenderFemale, domain.SizeSmall, day.AddDate(-1, 0, 0), users[2]},
			{"Rocky", "Gentle senior", "Labrador", domain.GenderMale, domain.SizeLarge, day.AddDate(-9, 0, 0), users[2]},
		}
		for _, s := range animals {
			breedID := breeds[s.breed]
			var categoryID uint
			if err := tx.Model(&domain.Breed{}).Where("id = ?", breedID).Pluck("category_id", &categoryID).Error; err != nil {
				return Classify(err)
			}
			a := &domain.Animal{
				Name: s.name, ShortDescription: s.short, CategoryID: categoryID, BreedID: &breedID,
				Gender: s.gender, Size: s.size, BirthDate: s.born, OwnerID: s.owner.ID,
			}
			if err := CreateAnimal(ctx, tx, a); err != nil {
				return err
			}
			sum.Animals++
		}
		return nil
	})
	if err != nil {
		return SeedSummary{}, err
	}
	return sum, nil
}

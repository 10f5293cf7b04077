package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-adoption-backend/internal/domain"
	"github.com/tbourn/go-adoption-backend/internal/search"
)

// AnimalRow is an animal joined with its display names.
type AnimalRow struct {
	domain.Animal
	CategoryName string
	BreedName    *string
	OwnerName    string
	OwnerEmail   string
	OwnerPhone   string
}

const animalRowSelect = "animals.*, categories.name AS category_name, breeds.name AS breed_name, " +
	"users.name AS owner_name, users.email AS owner_email, users.phone AS owner_phone"

func animalRows(db *gorm.DB) *gorm.DB {
	return db.Model(&domain.Animal{}).
		Select(animalRowSelect).
		Joins("JOIN categories ON categories.id = animals.category_id").
		Joins("LEFT JOIN breeds ON breeds.id = animals.breed_id").
		Joins("JOIN users ON users.id = animals.owner_id")
}

// GetAnimal fetches a bare animal row by id.
func GetAnimal(ctx context.Context, db *gorm.DB, id uint) (*domain.Animal, error) {
	var a domain.Animal
	if err := db.WithContext(ctx).First(&a, id).Error; err != nil {
		return nil, Classify(err)
	}
	return &a, nil
}

// GetAnimalForUpdate fetches an animal row and, on stores that support it,
// locks it until the surrounding transaction ends. SQLite ignores the lock
// clause; callers serialize per animal instead.
func GetAnimalForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*domain.Animal, error) {
	var a domain.Animal
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&a, id).Error
	if err != nil {
		return nil, Classify(err)
	}
	return &a, nil
}

// GetAnimalRow fetches one animal with category, breed and owner names.
func GetAnimalRow(ctx context.Context, db *gorm.DB, id uint) (*AnimalRow, error) {
	var row AnimalRow
	err := animalRows(db.WithContext(ctx)).Where("animals.id = ?", id).Take(&row).Error
	if err != nil {
		return nil, Classify(err)
	}
	return &row, nil
}

// SearchAnimals returns one page of animals matching p plus the total count.
func SearchAnimals(ctx context.Context, db *gorm.DB, p search.Predicate, s search.Sort, offset, limit int) ([]AnimalRow, int64, error) {
	var total int64
	if err := p.Scope(db.WithContext(ctx).Model(&domain.Animal{})).Count(&total).Error; err != nil {
		return nil, 0, Classify(err)
	}
	if total == 0 {
		return []AnimalRow{}, 0, nil
	}
	var out []AnimalRow
	err := p.Scope(animalRows(db.WithContext(ctx))).
		Clauses(s.OrderBy()).
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, total, Classify(err)
}

// ListAnimalsByOwner returns every animal of ownerID, newest first.
func ListAnimalsByOwner(ctx context.Context, db *gorm.DB, ownerID uint) ([]AnimalRow, error) {
	var out []AnimalRow
	err := animalRows(db.WithContext(ctx)).
		Where("animals.owner_id = ?", ownerID).
		Order("animals.id desc").
		Find(&out).Error
	return out, Classify(err)
}

// CreateAnimal inserts a without touching associations.
func CreateAnimal(ctx context.Context, db *gorm.DB, a *domain.Animal) error {
	return Classify(db.WithContext(ctx).Omit(clause.Associations).Create(a).Error)
}

// UpdateAnimal writes the given columns of animal id. A new name or short
// description also rewrites its folded search column.
func UpdateAnimal(ctx context.Context, db *gorm.DB, id uint, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	if v, ok := fields["name"].(string); ok {
		fields["name_fold"] = domain.Fold(v)
	}
	if v, ok := fields["short_description"].(string); ok {
		fields["short_description_fold"] = domain.Fold(v)
	}
	res := db.WithContext(ctx).Model(&domain.Animal{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return Classify(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkAdopted flips adopted from false to true. It returns false without
// error when the animal was already adopted, which makes it usable as a
// compare-and-set inside an approval transaction.
func MarkAdopted(ctx context.Context, tx *gorm.DB, id uint) (bool, error) {
	res := tx.WithContext(ctx).
		Model(&domain.Animal{}).
		Where("id = ? AND adopted = ?", id, false).
		Update("adopted", true)
	if res.Error != nil {
		return false, Classify(res.Error)
	}
	return res.RowsAffected == 1, nil
}

// DeleteAnimal removes an animal and its adoption requests.
func DeleteAnimal(ctx context.Context, db *gorm.DB, id uint) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Explicit so the cascade holds even where FK enforcement is off.
		if err := tx.Where("animal_id = ?", id).Delete(&domain.AdoptionRequest{}).Error; err != nil {
			return Classify(err)
		}
		res := tx.Delete(&domain.Animal{}, id)
		if res.Error != nil {
			return Classify(res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

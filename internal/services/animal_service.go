// Package services – AnimalService
//
// This file implements listing management for adoptable animals and the
// paged animal search. Search criteria are turned into a search.Predicate,
// validated sort keys into a search.Sort, and the result is returned as a
// page with its total count.
package services

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/tbourn/go-adoption-backend/internal/domain"
	"github.com/tbourn/go-adoption-backend/internal/lock"
	"github.com/tbourn/go-adoption-backend/internal/repo"
	"github.com/tbourn/go-adoption-backend/internal/search"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	nameMaxRunes      = 120
	shortDescMaxRunes = 255
)

// AnimalInput carries the fields of a new listing.
type AnimalInput struct {
	Name             string
	ShortDescription string
	Description      string
	CategoryID       uint
	BreedID          *uint
	Gender           domain.Gender
	Size             domain.Size
	BirthDate        time.Time
}

// AnimalPatch carries a partial listing update; nil fields are left alone.
// ClearBreed removes the breed and wins over BreedID.
type AnimalPatch struct {
	Name             *string
	ShortDescription *string
	Description      *string
	CategoryID       *uint
	BreedID          *uint
	ClearBreed       bool
	Gender           *domain.Gender
	Size             *domain.Size
	BirthDate        *time.Time
}

// SearchQuery is one page request of the animal search.
type SearchQuery struct {
	Criteria search.Criteria
	Page     int
	PageSize int
	Sort     string
}

// AnimalPage is a page of search results.
type AnimalPage struct {
	Items      []repo.AnimalRow
	Total      int64
	Page       int
	PageSize   int
	TotalPages int
	Sort       search.Sort
}

// AnimalService manages animal listings and search.
type AnimalService struct {
	DB    *gorm.DB
	Locks lock.Locker

	DefaultPageSize int
	MaxPageSize     int

	// Now is the clock; nil means time.Now.
	Now func() time.Time
}

// NewAnimalService constructs an AnimalService with default paging limits.
// Pass the same locker as the AdoptionService so deletes and approvals on
// one animal are serialized.
func NewAnimalService(db *gorm.DB, locks lock.Locker) *AnimalService {
	return &AnimalService{DB: db, Locks: locks, DefaultPageSize: 20, MaxPageSize: 100}
}

var animalTracer = otel.Tracer("services/AnimalService")

func (s *AnimalService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Age classifies a's birth date against the service clock.
func (s *AnimalService) Age(a domain.Animal) (domain.Age, error) {
	return domain.Classify(a.BirthDate, s.now())
}

// Create lists a new animal owned by actor.
func (s *AnimalService) Create(ctx context.Context, actor Actor, in AnimalInput) (row *repo.AnimalRow, err error) {
	ctx, span := animalTracer.Start(ctx, "Create",
		trace.WithAttributes(attribute.Int64("user.id", int64(actor.UserID))),
	)
	defer func() { finish(span, "animal_create", err) }()

	a := domain.Animal{
		Name:             strings.TrimSpace(in.Name),
		ShortDescription: strings.TrimSpace(in.ShortDescription),
		Description:      strings.TrimSpace(in.Description),
		CategoryID:       in.CategoryID,
		BreedID:          in.BreedID,
		Gender:           in.Gender,
		Size:             in.Size,
		BirthDate:        domain.Date(in.BirthDate),
		OwnerID:          actor.UserID,
	}
	if err := s.validate(&a); err != nil {
		return nil, err
	}
	if _, err := repo.GetUser(ctx, s.DB, actor.UserID); err != nil {
		return nil, storeErr(err, ErrUserNotFound)
	}
	if err := s.checkTaxonomy(ctx, a.CategoryID, a.BreedID); err != nil {
		return nil, err
	}
	if err := repo.CreateAnimal(ctx, s.DB, &a); err != nil {
		return nil, storeErr(err, nil)
	}
	zerolog.Ctx(ctx).Info().Uint("animal_id", a.ID).Uint("owner_id", a.OwnerID).Msg("animal listed")
	return s.get(ctx, a.ID)
}

// Get returns one animal with its display names.
func (s *AnimalService) Get(ctx context.Context, id uint) (*repo.AnimalRow, error) {
	ctx, span := animalTracer.Start(ctx, "Get",
		trace.WithAttributes(attribute.Int64("animal.id", int64(id))),
	)
	defer span.End()
	return s.get(ctx, id)
}

func (s *AnimalService) get(ctx context.Context, id uint) (*repo.AnimalRow, error) {
	row, err := repo.GetAnimalRow(ctx, s.DB, id)
	if err != nil {
		return nil, storeErr(err, ErrAnimalNotFound)
	}
	return row, nil
}

// Update applies p to animal id. Only the owner or an administrator may
// edit a listing; the adopted flag is not editable here.
func (s *AnimalService) Update(ctx context.Context, actor Actor, id uint, p AnimalPatch) (row *repo.AnimalRow, err error) {
	ctx, span := animalTracer.Start(ctx, "Update",
		trace.WithAttributes(
			attribute.Int64("animal.id", int64(id)),
			attribute.Int64("user.id", int64(actor.UserID)),
		),
	)
	defer func() { finish(span, "animal_update", err) }()

	a, err := repo.GetAnimal(ctx, s.DB, id)
	if err != nil {
		return nil, storeErr(err, ErrAnimalNotFound)
	}
	if a.OwnerID != actor.UserID && !actor.IsAdmin() {
		return nil, ErrForbidden.withMsg("only the owner can edit this animal")
	}

	fields := map[string]any{}
	if p.Name != nil {
		a.Name = strings.TrimSpace(*p.Name)
		fields["name"] = a.Name
	}
	if p.ShortDescription != nil {
		a.ShortDescription = strings.TrimSpace(*p.ShortDescription)
		fields["short_description"] = a.ShortDescription
	}
	if p.Description != nil {
		a.Description = strings.TrimSpace(*p.Description)
		fields["description"] = a.Description
	}
	if p.CategoryID != nil {
		a.CategoryID = *p.CategoryID
		fields["category_id"] = a.CategoryID
	}
	switch {
	case p.ClearBreed:
		a.BreedID = nil
		fields["breed_id"] = nil
	case p.BreedID != nil:
		a.BreedID = p.BreedID
		fields["breed_id"] = *p.BreedID
	}
	if p.Gender != nil {
		a.Gender = *p.Gender
		fields["gender"] = a.Gender
	}
	if p.Size != nil {
		a.Size = *p.Size
		fields["size"] = a.Size
	}
	if p.BirthDate != nil {
		a.BirthDate = domain.Date(*p.BirthDate)
		fields["birth_date"] = a.BirthDate
	}
	if len(fields) == 0 {
		return s.get(ctx, id)
	}

	if err := s.validate(a); err != nil {
		return nil, err
	}
	if p.CategoryID != nil || p.BreedID != nil {
		if err := s.checkTaxonomy(ctx, a.CategoryID, a.BreedID); err != nil {
			return nil, err
		}
	}
	fields["updated_at"] = s.now()
	if err := repo.UpdateAnimal(ctx, s.DB, id, fields); err != nil {
		return nil, storeErr(err, ErrAnimalNotFound)
	}
	return s.get(ctx, id)
}

// Delete removes a listing together with its adoption requests. Only the
// owner or an administrator may delete it.
func (s *AnimalService) Delete(ctx context.Context, actor Actor, id uint) (err error) {
	ctx, span := animalTracer.Start(ctx, "Delete",
		trace.WithAttributes(
			attribute.Int64("animal.id", int64(id)),
			attribute.Int64("user.id", int64(actor.UserID)),
		),
	)
	defer func() { finish(span, "animal_delete", err) }()

	a, err := repo.GetAnimal(ctx, s.DB, id)
	if err != nil {
		return storeErr(err, ErrAnimalNotFound)
	}
	if a.OwnerID != actor.UserID && !actor.IsAdmin() {
		return ErrForbidden.withMsg("only the owner can delete this animal")
	}
	if s.Locks != nil {
		release, err := s.Locks.Acquire(ctx, lock.AnimalKey(id))
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			return ErrUnavailable.wrap(err)
		}
		defer release()
	}
	if err := repo.DeleteAnimal(ctx, s.DB, id); err != nil {
		return storeErr(err, ErrAnimalNotFound)
	}
	zerolog.Ctx(ctx).Info().Uint("animal_id", id).Msg("animal deleted")
	return nil
}

// ListByOwner returns every listing of ownerID.
func (s *AnimalService) ListByOwner(ctx context.Context, ownerID uint) ([]repo.AnimalRow, error) {
	rows, err := repo.ListAnimalsByOwner(ctx, s.DB, ownerID)
	return rows, storeErr(err, nil)
}

// Search returns one page of animals matching q. Page numbers start at 1;
// out-of-range page sizes are clamped.
func (s *AnimalService) Search(ctx context.Context, q SearchQuery) (page AnimalPage, err error) {
	ctx, span := animalTracer.Start(ctx, "Search",
		trace.WithAttributes(
			attribute.Int("page", q.Page),
			attribute.Int("page_size", q.PageSize),
			attribute.String("sort", q.Sort),
		),
	)
	defer func() { finish(span, "search", err) }()
	start := time.Now()
	defer func() { searchDuration.Observe(time.Since(start).Seconds()) }()

	srt, err := search.ParseSort(q.Sort)
	if err != nil {
		return AnimalPage{}, invalid("sort must be one of id, name, birth_date, created_at with optional ,asc or ,desc")
	}
	if g := q.Criteria.AgeGroup; g != nil && !g.Valid() {
		return AnimalPage{}, invalid("invalid age_group")
	}
	if g := q.Criteria.Gender; g != nil && !g.Valid() {
		return AnimalPage{}, invalid("invalid gender")
	}
	if z := q.Criteria.Size; z != nil && !z.Valid() {
		return AnimalPage{}, invalid("invalid size")
	}

	pageNo, size := s.paging(q.Page, q.PageSize)
	pred := search.Compose(q.Criteria, s.now())
	span.SetAttributes(attribute.Int("clauses", len(pred.Clauses())))

	items, total, err := repo.SearchAnimals(ctx, s.DB, pred, srt, (pageNo-1)*size, size)
	if err != nil {
		return AnimalPage{}, storeErr(err, nil)
	}
	return AnimalPage{
		Items:      items,
		Total:      total,
		Page:       pageNo,
		PageSize:   size,
		TotalPages: int((total + int64(size) - 1) / int64(size)),
		Sort:       srt,
	}, nil
}

func (s *AnimalService) paging(page, size int) (int, int) {
	defSize, maxSize := s.DefaultPageSize, s.MaxPageSize
	if defSize <= 0 {
		defSize = 20
	}
	if maxSize < defSize {
		maxSize = defSize
	}
	if page < 1 {
		page = 1
	}
	switch {
	case size <= 0:
		size = defSize
	case size > maxSize:
		size = maxSize
	}
	return page, size
}

// validate checks the intrinsic fields of a listing.
func (s *AnimalService) validate(a *domain.Animal) error {
	switch {
	case a.Name == "":
		return invalid("name is required")
	case utf8.RuneCountInString(a.Name) > nameMaxRunes:
		return invalid("name is too long")
	case utf8.RuneCountInString(a.ShortDescription) > shortDescMaxRunes:
		return invalid("short_description is too long")
	case a.CategoryID == 0:
		return invalid("category_id is required")
	case !a.Gender.Valid():
		return invalid("gender must be one of MALE, FEMALE, UNKNOWN")
	case !a.Size.Valid():
		return invalid("size must be one of SMALL, MEDIUM, LARGE, EXTRA_LARGE")
	case a.BirthDate.IsZero():
		return invalid("birth_date is required")
	}
	if _, err := domain.Classify(a.BirthDate, s.now()); err != nil {
		return invalid("birth_date must not be in the future")
	}
	return nil
}

// checkTaxonomy verifies the category exists and the breed, if any, belongs to it.
func (s *AnimalService) checkTaxonomy(ctx context.Context, categoryID uint, breedID *uint) error {
	if _, err := repo.GetCategory(ctx, s.DB, categoryID); err != nil {
		return storeErr(err, ErrCategoryNotFound)
	}
	if breedID == nil {
		return nil
	}
	b, err := repo.GetBreed(ctx, s.DB, *breedID)
	if err != nil {
		return storeErr(err, ErrBreedNotFound)
	}
	if b.CategoryID != categoryID {
		return ErrBreedNotInCategory
	}
	return nil
}

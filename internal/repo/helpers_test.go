package repo

import (
	"context"
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite (no CGO)
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-adoption-backend/internal/domain"
)

// newTestDB opens a unique in-memory database. With no models it stays empty,
// which lets tests exercise missing-table failures.
func newTestDB(t *testing.T, migrate ...any) *gorm.DB {
	t.Helper()
	dsn := SQLiteDSN(fmt.Sprintf("file:repo_%s?mode=memory&cache=shared", uuid.NewString()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if len(migrate) > 0 {
		if err := db.AutoMigrate(migrate...); err != nil {
			t.Fatalf("automigrate: %v", err)
		}
	}
	return db
}

func newSchemaDB(t *testing.T) *gorm.DB {
	t.Helper()
	db := newTestDB(t)
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	return db
}

type seeded struct {
	owner, r1, r2 domain.User
	dog           domain.Category
	lab           domain.Breed
	animal        domain.Animal
}

func seedBasic(t *testing.T, db *gorm.DB) seeded {
	t.Helper()
	ctx := context.Background()
	s := seeded{
		owner: domain.User{Name: "Owner", Email: "Owner@Example.com"},
		r1:    domain.User{Name: "Req One", Email: "r1@example.com"},
		r2:    domain.User{Name: "Req Two", Email: "r2@example.com"},
		dog:   domain.Category{Name: "Dog"},
	}
	for _, u := range []*domain.User{&s.owner, &s.r1, &s.r2} {
		if err := CreateUser(ctx, db, u); err != nil {
			t.Fatalf("seed user: %v", err)
		}
	}
	if err := CreateCategory(ctx, db, &s.dog); err != nil {
		t.Fatalf("seed category: %v", err)
	}
	s.lab = domain.Breed{Name: "Labrador", CategoryID: s.dog.ID}
	if err := CreateBreed(ctx, db, &s.lab); err != nil {
		t.Fatalf("seed breed: %v", err)
	}
	s.animal = domain.Animal{
		Name: "Max", ShortDescription: "good boy", CategoryID: s.dog.ID, BreedID: &s.lab.ID,
		Gender: domain.GenderMale, Size: domain.SizeLarge,
		BirthDate: time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC), OwnerID: s.owner.ID,
	}
	if err := CreateAnimal(ctx, db, &s.animal); err != nil {
		t.Fatalf("seed animal: %v", err)
	}
	return s
}

func newPending(t *testing.T, db *gorm.DB, animalID, requesterID uint, note string) *domain.AdoptionRequest {
	t.Helper()
	r := &domain.AdoptionRequest{AnimalID: animalID, RequesterID: requesterID, Note: note, Status: domain.StatusPending}
	if err := CreateRequest(context.Background(), db, r); err != nil {
		t.Fatalf("create request: %v", err)
	}
	return r
}

package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-adoption-backend/internal/domain"
	"github.com/tbourn/go-adoption-backend/internal/lock"
	"github.com/tbourn/go-adoption-backend/internal/repo"
)

var fixedNow = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

// newSvcDB opens a migrated in-memory database. A single connection keeps
// the shared-cache database from reporting table locks under concurrency.
func newSvcDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := repo.SQLiteDSN(fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", uuid.NewString()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

type world struct {
	db                *gorm.DB
	owner, r1, r2, r3 Actor
	admin             Actor
	dog               domain.Category
	golden, poodle    domain.Breed
	animal            domain.Animal
	adoptions         *AdoptionService
	animals           *AnimalService
}

func newWorld(t *testing.T) *world {
	t.Helper()
	return newWorldOn(t, newSvcDB(t))
}

// newFileWorld seeds a world on a file database opened with the production
// pool and connection settings.
func newFileWorld(t *testing.T) *world {
	t.Helper()
	db, err := repo.Open(repo.Options{
		Driver:      repo.DriverSQLite,
		Path:        filepath.Join(t.TempDir(), "adoption.db"),
		AutoMigrate: true,
	})
	if err != nil {
		t.Fatalf("open file store: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return newWorldOn(t, db)
}

func newWorldOn(t *testing.T, db *gorm.DB) *world {
	t.Helper()
	ctx := context.Background()
	w := &world{db: db}

	mkUser := func(name string, role domain.Role) Actor {
		u := domain.User{Name: name, Email: name + "@example.com", Role: role}
		if err := repo.CreateUser(ctx, db, &u); err != nil {
			t.Fatalf("seed user %s: %v", name, err)
		}
		return Actor{UserID: u.ID, Role: u.Role}
	}
	w.owner = mkUser("owner", domain.RoleUser)
	w.r1 = mkUser("r1", domain.RoleUser)
	w.r2 = mkUser("r2", domain.RoleUser)
	w.r3 = mkUser("r3", domain.RoleUser)
	w.admin = mkUser("admin", domain.RoleAdmin)

	w.dog = domain.Category{Name: "Dog", Active: true}
	if err := repo.CreateCategory(ctx, db, &w.dog); err != nil {
		t.Fatalf("seed category: %v", err)
	}
	w.golden = domain.Breed{CategoryID: w.dog.ID, Name: "Golden Retriever", Active: true}
	w.poodle = domain.Breed{CategoryID: w.dog.ID, Name: "Poodle", Active: true}
	for _, b := range []*domain.Breed{&w.golden, &w.poodle} {
		if err := repo.CreateBreed(ctx, db, b); err != nil {
			t.Fatalf("seed breed: %v", err)
		}
	}
	w.animal = w.addAnimal(t, "Max", &w.golden.ID, time.Date(2022, 6, 15, 0, 0, 0, 0, time.UTC))

	locks := lock.NewKeyedMutex()
	w.adoptions = NewAdoptionService(db, locks)
	w.adoptions.Now = clock
	w.animals = NewAnimalService(db, locks)
	w.animals.Now = clock
	return w
}

func (w *world) addAnimal(t *testing.T, name string, breedID *uint, birth time.Time) domain.Animal {
	t.Helper()
	a := domain.Animal{
		Name: name, ShortDescription: "friendly", CategoryID: w.dog.ID, BreedID: breedID,
		Gender: domain.GenderMale, Size: domain.SizeLarge, BirthDate: birth, OwnerID: w.owner.UserID,
	}
	if err := repo.CreateAnimal(context.Background(), w.db, &a); err != nil {
		t.Fatalf("seed animal: %v", err)
	}
	return a
}

func (w *world) request(t *testing.T, requester Actor, note string) *domain.AdoptionRequest {
	t.Helper()
	r, err := w.adoptions.Create(context.Background(), requester, w.animal.ID, note)
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	return r
}

func (w *world) status(t *testing.T, id uint) domain.RequestStatus {
	t.Helper()
	r, err := repo.GetRequest(context.Background(), w.db, id)
	if err != nil {
		t.Fatalf("get request %d: %v", id, err)
	}
	return r.Status
}

func (w *world) adopted(t *testing.T) bool {
	t.Helper()
	a, err := repo.GetAnimal(context.Background(), w.db, w.animal.ID)
	if err != nil {
		t.Fatalf("get animal: %v", err)
	}
	return a.Adopted
}

func wantErr(t *testing.T, err, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("expected %v, got %v", target, err)
	}
}

func wantKind(t *testing.T, err error, k Kind) {
	t.Helper()
	if got := KindOf(err); got != k {
		t.Fatalf("expected kind %s, got %s (%v)", k, got, err)
	}
}

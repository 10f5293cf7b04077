package repo

import (
	"context"
	"testing"
	"time"

	"github.com/tbourn/go-adoption-backend/internal/domain"
)

func TestRequesterStats_CountError_NoTable(t *testing.T) {
	db := newTestDB(t)
	if _, _, err := RequesterStats(context.Background(), db, 1); err == nil {
		t.Fatalf("expected error due to missing table")
	}
}

func TestRequesterStats_ZeroRows(t *testing.T) {
	db := newSchemaDB(t)
	count, maxAt, err := RequesterStats(context.Background(), db, 99)
	if err != nil {
		t.Fatalf("RequesterStats error: %v", err)
	}
	if count != 0 || maxAt != nil {
		t.Fatalf("expected (0, nil), got (%d, %v)", count, maxAt)
	}
}

func TestStats_FilterAndMax(t *testing.T) {
	db := newSchemaDB(t)
	s := seedBasic(t, db)
	ctx := context.Background()

	other := domain.Animal{
		Name: "Luna", CategoryID: s.dog.ID, Gender: domain.GenderFemale, Size: domain.SizeSmall,
		BirthDate: time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC), OwnerID: s.r2.ID,
	}
	if err := CreateAnimal(ctx, db, &other); err != nil {
		t.Fatalf("seed animal: %v", err)
	}

	t1 := time.Date(2025, 1, 2, 15, 0, 0, 0, time.UTC)
	t2 := time.Date(2025, 3, 4, 10, 30, 0, 0, time.UTC)
	t3 := time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)

	a := newPending(t, db, s.animal.ID, s.r1.ID, "first")
	b := newPending(t, db, other.ID, s.r1.ID, "second")
	c := newPending(t, db, s.animal.ID, s.r2.ID, "third")
	for id, at := range map[uint]time.Time{a.ID: t1, b.ID: t2, c.ID: t3} {
		if err := db.Model(&domain.AdoptionRequest{}).Where("id = ?", id).UpdateColumn("updated_at", at).Error; err != nil {
			t.Fatalf("set updated_at: %v", err)
		}
	}

	count, maxAt, err := RequesterStats(ctx, db, s.r1.ID)
	if err != nil {
		t.Fatalf("RequesterStats: %v", err)
	}
	if count != 2 || maxAt == nil || !maxAt.Equal(t2) {
		t.Fatalf("requester stats = (%d, %v), want (2, %v)", count, maxAt, t2)
	}

	count, maxAt, err = OwnerStats(ctx, db, s.owner.ID)
	if err != nil {
		t.Fatalf("OwnerStats: %v", err)
	}
	if count != 2 || maxAt == nil || !maxAt.Equal(t3) {
		t.Fatalf("owner stats = (%d, %v), want (2, %v)", count, maxAt, t3)
	}
}

// Force the second query to fail by renaming the column it reads.
func TestRequesterStats_SelectLatest_ErrorPath(t *testing.T) {
	db := newSchemaDB(t)
	s := seedBasic(t, db)
	newPending(t, db, s.animal.ID, s.r1.ID, "x")

	if err := db.Exec(`ALTER TABLE adoption_requests RENAME COLUMN updated_at TO updated_at_old`).Error; err != nil {
		t.Fatalf("rename column: %v", err)
	}
	if _, _, err := RequesterStats(context.Background(), db, s.r1.ID); err == nil {
		t.Fatalf("expected error from latest-updated select after column rename")
	}
}

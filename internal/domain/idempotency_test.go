package domain

import (
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newIdemDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&Idempotency{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func TestIdempotency_UniquePerUserScopeKey(t *testing.T) {
	db := newIdemDB(t)
	now := time.Now().UTC()

	rec := Idempotency{ID: "a", UserID: 1, Scope: "adoption.create", Key: "k1", ResourceID: 7, Status: 201, ExpiresAt: now.Add(time.Hour)}
	if err := db.Create(&rec).Error; err != nil {
		t.Fatalf("insert: %v", err)
	}
	dup := rec
	dup.ID = "b"
	if err := db.Create(&dup).Error; err == nil {
		t.Fatalf("expected unique violation on (user_id, scope, key)")
	}

	otherScope := rec
	otherScope.ID, otherScope.Scope = "c", "animal.create"
	if err := db.Create(&otherScope).Error; err != nil {
		t.Fatalf("same key in another scope should be allowed: %v", err)
	}
	otherUser := rec
	otherUser.ID, otherUser.UserID = "d", 2
	if err := db.Create(&otherUser).Error; err != nil {
		t.Fatalf("same key for another user should be allowed: %v", err)
	}

	if !db.Migrator().HasIndex(&Idempotency{}, "ux_idem_user_scope_key") {
		t.Fatalf("expected unique index ux_idem_user_scope_key")
	}
}

func TestIdempotency_Expired(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	rec := Idempotency{ExpiresAt: now}
	if !rec.Expired(now) {
		t.Fatalf("record expiring at now must be expired")
	}
	if rec.Expired(now.Add(-time.Second)) {
		t.Fatalf("record must be live before ExpiresAt")
	}
}

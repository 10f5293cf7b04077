package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-adoption-backend/internal/domain"
	"github.com/tbourn/go-adoption-backend/internal/repo"
)

// ---------- Create ----------

func TestAdoptionService_Create_Success(t *testing.T) {
	w := newWorld(t)
	r := w.request(t, w.r1, "  interested  ")

	if r.ID == 0 || r.Status != domain.StatusPending || r.DecisionAt != nil {
		t.Fatalf("unexpected request: %+v", r)
	}
	if r.Note != "interested" {
		t.Fatalf("note must be trimmed, got %q", r.Note)
	}
	if !r.CreatedAt.Equal(fixedNow) {
		t.Fatalf("CreatedAt = %v, want %v", r.CreatedAt, fixedNow)
	}
}

func TestAdoptionService_Create_Failures(t *testing.T) {
	ctx := context.Background()

	t.Run("animal not found", func(t *testing.T) {
		w := newWorld(t)
		_, err := w.adoptions.Create(ctx, w.r1, 9999, "hi")
		wantErr(t, err, ErrAnimalNotFound)
		wantKind(t, err, KindNotFound)
	})
	t.Run("requester not found", func(t *testing.T) {
		w := newWorld(t)
		_, err := w.adoptions.Create(ctx, Actor{UserID: 9999}, w.animal.ID, "hi")
		wantErr(t, err, ErrUserNotFound)
	})
	t.Run("own animal", func(t *testing.T) {
		w := newWorld(t)
		_, err := w.adoptions.Create(ctx, w.owner, w.animal.ID, "mine")
		wantErr(t, err, ErrOwnAnimal)
		wantKind(t, err, KindForbidden)
	})
	t.Run("blank note", func(t *testing.T) {
		w := newWorld(t)
		_, err := w.adoptions.Create(ctx, w.r1, w.animal.ID, " \t\n ")
		wantErr(t, err, ErrNoteRequired)
		wantKind(t, err, KindInvalidInput)
	})
	t.Run("note too long", func(t *testing.T) {
		w := newWorld(t)
		_, err := w.adoptions.Create(ctx, w.r1, w.animal.ID, strings.Repeat("é", 501))
		wantErr(t, err, ErrNoteTooLong)
	})
	t.Run("note at limit counts runes", func(t *testing.T) {
		w := newWorld(t)
		if _, err := w.adoptions.Create(ctx, w.r1, w.animal.ID, strings.Repeat("é", 500)); err != nil {
			t.Fatalf("500 runes must be accepted: %v", err)
		}
	})
	t.Run("duplicate open request", func(t *testing.T) {
		w := newWorld(t)
		w.request(t, w.r1, "first")
		_, err := w.adoptions.Create(ctx, w.r1, w.animal.ID, "second")
		wantErr(t, err, ErrDuplicateRequest)
		wantKind(t, err, KindConflict)
	})
	t.Run("adopted animal", func(t *testing.T) {
		w := newWorld(t)
		if _, err := repo.MarkAdopted(ctx, w.db, w.animal.ID); err != nil {
			t.Fatalf("mark adopted: %v", err)
		}
		_, err := w.adoptions.Create(ctx, w.r1, w.animal.ID, "too late")
		wantErr(t, err, ErrAlreadyAdopted)
		wantKind(t, err, KindConflict)
	})
}

func TestAdoptionService_Create_NothingPersistedOnFailure(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	if _, err := w.adoptions.Create(ctx, w.r1, w.animal.ID, ""); err == nil {
		t.Fatalf("expected error")
	}
	n, err := w.adoptions.CountByAnimalAndStatus(ctx, w.animal.ID, domain.StatusPending)
	if err != nil || n != 0 {
		t.Fatalf("pending = %d, %v; want 0", n, err)
	}
}

func TestAdoptionService_Create_AgainAfterRejectionOrCancel(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()

	first := w.request(t, w.r1, "first")
	if _, err := w.adoptions.Decide(ctx, w.owner, first.ID, domain.StatusRejected); err != nil {
		t.Fatalf("reject: %v", err)
	}
	second := w.request(t, w.r1, "second")

	if err := w.adoptions.Delete(ctx, w.r1, second.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	w.request(t, w.r1, "third")
}

func TestAdoptionService_CreateIdempotent_Replays(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()

	a, replayed, err := w.adoptions.CreateIdempotent(ctx, w.r1, w.animal.ID, "hello", "key-1")
	if err != nil || replayed {
		t.Fatalf("first call = %v, %v", replayed, err)
	}
	b, replayed, err := w.adoptions.CreateIdempotent(ctx, w.r1, w.animal.ID, "hello", "key-1")
	if err != nil || !replayed {
		t.Fatalf("retry = %v, %v; want replay", replayed, err)
	}
	if a.ID != b.ID {
		t.Fatalf("replay returned %d, want %d", b.ID, a.ID)
	}

	_, _, err = w.adoptions.CreateIdempotent(ctx, w.r1, w.animal.ID, "hello", "key-2")
	wantErr(t, err, ErrDuplicateRequest)

	// Blank key behaves like a plain create.
	_, replayed, err = w.adoptions.CreateIdempotent(ctx, w.r2, w.animal.ID, "hi", "  ")
	if err != nil || replayed {
		t.Fatalf("blank key = %v, %v", replayed, err)
	}
}

func TestAdoptionService_CreateIdempotent_KeyReusedForOtherAnimal(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	other := w.addAnimal(t, "Luna", &w.poodle.ID, domain.AddMonths(fixedNow, -6))

	first, _, err := w.adoptions.CreateIdempotent(ctx, w.r1, w.animal.ID, "hello", "key-1")
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	req, replayed, err := w.adoptions.CreateIdempotent(ctx, w.r1, other.ID, "hello", "key-1")
	wantErr(t, err, ErrIdempotencyReuse)
	wantKind(t, err, KindConflict)
	if req != nil || replayed {
		t.Fatalf("mismatched retry = %v, %v; want nothing", req, replayed)
	}

	// No request was filed against the other animal and the key still replays.
	reqs, err := w.adoptions.ListByAnimal(ctx, other.ID)
	if err != nil || len(reqs) != 0 {
		t.Fatalf("requests on other animal = %v, %v", reqs, err)
	}
	again, replayed, err := w.adoptions.CreateIdempotent(ctx, w.r1, w.animal.ID, "hello", "key-1")
	if err != nil || !replayed || again.ID != first.ID {
		t.Fatalf("replay = %v, %v, %v", again, replayed, err)
	}
}

func TestAdoptionService_CreateIdempotent_KeyExpires(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	now := fixedNow
	w.adoptions.Now = func() time.Time { return now }
	w.adoptions.IdempotencyTTL = time.Hour

	first, _, err := w.adoptions.CreateIdempotent(ctx, w.r1, w.animal.ID, "hello", "key-x")
	if err != nil {
		t.Fatalf("first call: %v", err)
	}

	// Past the TTL the key no longer replays; the open request still blocks.
	now = fixedNow.Add(2 * time.Hour)
	_, replayed, err := w.adoptions.CreateIdempotent(ctx, w.r1, w.animal.ID, "hello", "key-x")
	if replayed {
		t.Fatal("expired key replayed")
	}
	wantErr(t, err, ErrDuplicateRequest)

	// Once the first request is gone the same key files a fresh one.
	if err := w.adoptions.Delete(ctx, w.r1, first.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	second, replayed, err := w.adoptions.CreateIdempotent(ctx, w.r1, w.animal.ID, "again", "key-x")
	if err != nil || replayed || second.ID == first.ID {
		t.Fatalf("reuse = %+v, %v, %v", second, replayed, err)
	}
}

// ---------- Decide ----------

func TestAdoptionService_Scenario_ApproveRejectsOthersAndAdopts(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()

	r1 := w.request(t, w.r1, "interested")
	r2 := w.request(t, w.r2, "me too")

	got, err := w.adoptions.Decide(ctx, w.owner, r1.ID, domain.StatusApproved)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	if got.Status != domain.StatusApproved || got.DecisionAt == nil || !got.DecisionAt.Equal(fixedNow) {
		t.Fatalf("unexpected approved request: %+v", got)
	}
	if s := w.status(t, r1.ID); s != domain.StatusApproved {
		t.Fatalf("r1 = %s", s)
	}
	other, _ := repo.GetRequest(ctx, w.db, r2.ID)
	if other.Status != domain.StatusRejected || other.DecisionAt == nil {
		t.Fatalf("r2 must be rejected with a decision time: %+v", other)
	}
	if !w.adopted(t) {
		t.Fatalf("animal must be adopted")
	}

	_, err = w.adoptions.Create(ctx, w.r3, w.animal.ID, "am I late?")
	wantErr(t, err, ErrAlreadyAdopted)
}

func TestAdoptionService_Decide_RejectHasNoSideEffects(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	r1 := w.request(t, w.r1, "a")
	r2 := w.request(t, w.r2, "b")

	got, err := w.adoptions.Decide(ctx, w.owner, r1.ID, domain.StatusRejected)
	if err != nil || got.Status != domain.StatusRejected || got.DecisionAt == nil {
		t.Fatalf("reject = %+v, %v", got, err)
	}
	if s := w.status(t, r2.ID); s != domain.StatusPending {
		t.Fatalf("r2 = %s, want PENDING", s)
	}
	if w.adopted(t) {
		t.Fatalf("rejecting must not adopt the animal")
	}
}

func TestAdoptionService_Decide_Failures(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	r := w.request(t, w.r1, "hi")

	_, err := w.adoptions.Decide(ctx, w.owner, r.ID, domain.StatusPending)
	wantErr(t, err, ErrInvalidDecision)

	_, err = w.adoptions.Decide(ctx, w.owner, 9999, domain.StatusApproved)
	wantErr(t, err, ErrRequestNotFound)

	_, err = w.adoptions.Decide(ctx, w.r2, r.ID, domain.StatusApproved)
	wantKind(t, err, KindForbidden)

	_, err = w.adoptions.Decide(ctx, w.admin, r.ID, domain.StatusApproved)
	wantKind(t, err, KindForbidden)

	if _, err := w.adoptions.Decide(ctx, w.owner, r.ID, domain.StatusRejected); err != nil {
		t.Fatalf("reject: %v", err)
	}
	_, err = w.adoptions.Decide(ctx, w.owner, r.ID, domain.StatusApproved)
	wantErr(t, err, ErrNotPending)
	wantKind(t, err, KindInvalidState)
}

func TestAdoptionService_Decide_ApprovalIsAllOrNothing(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	r1 := w.request(t, w.r1, "a")
	r2 := w.request(t, w.r2, "b")

	// Fail the final write of the approval: flipping the adopted flag.
	injected := errors.New("injected failure")
	err := w.db.Callback().Update().Before("gorm:update").Register("test:fail_animals", func(tx *gorm.DB) {
		if tx.Statement.Table == "animals" {
			_ = tx.AddError(injected)
		}
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}

	_, err = w.adoptions.Decide(ctx, w.owner, r1.ID, domain.StatusApproved)
	if !errors.Is(err, injected) {
		t.Fatalf("expected injected failure, got %v", err)
	}
	wantKind(t, err, KindInternal)

	if s := w.status(t, r1.ID); s != domain.StatusPending {
		t.Fatalf("r1 = %s after rollback, want PENDING", s)
	}
	if s := w.status(t, r2.ID); s != domain.StatusPending {
		t.Fatalf("r2 = %s after rollback, want PENDING", s)
	}
	if w.adopted(t) {
		t.Fatalf("animal must not be adopted after rollback")
	}
}

func TestAdoptionService_Decide_ConcurrentApprovals_OneWins(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()

	requesters := []Actor{w.r1, w.r2, w.r3, w.admin}
	ids := make([]uint, 0, len(requesters))
	for _, a := range requesters {
		ids = append(ids, w.request(t, a, "pick me").ID)
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		wins    int
		badErrs []error
	)
	for _, id := range ids {
		wg.Add(1)
		go func(id uint) {
			defer wg.Done()
			_, err := w.adoptions.Decide(ctx, w.owner, id, domain.StatusApproved)
			mu.Lock()
			defer mu.Unlock()
			switch KindOf(err) {
			case KindNone:
				wins++
			case KindInvalidState, KindConflict:
			default:
				badErrs = append(badErrs, err)
			}
		}(id)
	}
	wg.Wait()

	if len(badErrs) > 0 {
		t.Fatalf("unexpected errors: %v", badErrs)
	}
	if wins != 1 {
		t.Fatalf("%d approvals succeeded, want exactly 1", wins)
	}
	n, err := w.adoptions.CountByAnimalAndStatus(ctx, w.animal.ID, domain.StatusApproved)
	if err != nil || n != 1 {
		t.Fatalf("approved = %d, %v; want 1", n, err)
	}
	n, err = w.adoptions.CountByAnimalAndStatus(ctx, w.animal.ID, domain.StatusRejected)
	if err != nil || n != int64(len(ids)-1) {
		t.Fatalf("rejected = %d, %v; want %d", n, err, len(ids)-1)
	}
	if !w.adopted(t) {
		t.Fatalf("animal must be adopted")
	}
}

func TestAdoptionService_Create_ConcurrentDuplicates_OneWins(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()

	const n = 8
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
		dups int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := w.adoptions.Create(ctx, w.r1, w.animal.ID, "race")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				wins++
			case errors.Is(err, ErrDuplicateRequest):
				dups++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()
	if wins != 1 || dups != n-1 {
		t.Fatalf("wins=%d dups=%d, want 1 and %d", wins, dups, n-1)
	}
}

// ---------- UpdateNote ----------

func TestAdoptionService_UpdateNote(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	r := w.request(t, w.r1, "old")

	got, err := w.adoptions.UpdateNote(ctx, w.r1, r.ID, "  new note ")
	if err != nil {
		t.Fatalf("UpdateNote: %v", err)
	}
	if got.Note != "new note" || got.Status != domain.StatusPending || got.DecisionAt != nil {
		t.Fatalf("unexpected request: %+v", got)
	}
	stored, _ := repo.GetRequest(ctx, w.db, r.ID)
	if stored.Note != "new note" || !stored.CreatedAt.Equal(r.CreatedAt) {
		t.Fatalf("stored = %+v", stored)
	}

	_, err = w.adoptions.UpdateNote(ctx, w.r2, r.ID, "hijack")
	wantKind(t, err, KindForbidden)

	_, err = w.adoptions.UpdateNote(ctx, w.r1, r.ID, "")
	wantErr(t, err, ErrNoteRequired)

	_, err = w.adoptions.UpdateNote(ctx, w.r1, 9999, "x")
	wantErr(t, err, ErrRequestNotFound)
}

func TestAdoptionService_UpdateNote_AfterDecision(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	r := w.request(t, w.r1, "note")
	if _, err := w.adoptions.Decide(ctx, w.owner, r.ID, domain.StatusApproved); err != nil {
		t.Fatalf("approve: %v", err)
	}

	_, err := w.adoptions.UpdateNote(ctx, w.r1, r.ID, "changed my mind")
	wantErr(t, err, ErrNotPending)
	wantKind(t, err, KindInvalidState)
}

func TestAdoptionService_UpdateNote_AdoptedAnimal(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	r := w.request(t, w.r1, "note")
	if _, err := repo.MarkAdopted(ctx, w.db, w.animal.ID); err != nil {
		t.Fatalf("mark adopted: %v", err)
	}
	_, err := w.adoptions.UpdateNote(ctx, w.r1, r.ID, "still want it")
	wantErr(t, err, ErrAlreadyAdopted)
}

// ---------- Delete ----------

func TestAdoptionService_Delete(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	r1 := w.request(t, w.r1, "a")
	r2 := w.request(t, w.r2, "b")

	err := w.adoptions.Delete(ctx, w.r2, r1.ID)
	wantKind(t, err, KindForbidden)
	err = w.adoptions.Delete(ctx, w.owner, r1.ID)
	wantKind(t, err, KindForbidden)

	// Decided requests can still be removed by their requester.
	if _, err := w.adoptions.Decide(ctx, w.owner, r1.ID, domain.StatusRejected); err != nil {
		t.Fatalf("reject: %v", err)
	}
	if err := w.adoptions.Delete(ctx, w.r1, r1.ID); err != nil {
		t.Fatalf("delete decided: %v", err)
	}
	if err := w.adoptions.Delete(ctx, w.admin, r2.ID); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
	wantErr(t, w.adoptions.Delete(ctx, w.r1, r1.ID), ErrRequestNotFound)
}

// ---------- Queries ----------

func TestAdoptionService_Queries(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	other := w.addAnimal(t, "Luna", &w.poodle.ID, fixedNow.AddDate(-1, 0, 0))
	r1 := w.request(t, w.r1, "a")
	r2 := w.request(t, w.r2, "b")
	r3, err := w.adoptions.Create(ctx, w.r1, other.ID, "c")
	if err != nil {
		t.Fatalf("create on other animal: %v", err)
	}

	byAnimal, err := w.adoptions.ListByAnimal(ctx, w.animal.ID)
	if err != nil || len(byAnimal) != 2 || byAnimal[0].ID != r2.ID || byAnimal[1].ID != r1.ID {
		t.Fatalf("by animal = %+v, %v", byAnimal, err)
	}
	_, err = w.adoptions.ListByAnimal(ctx, 9999)
	wantErr(t, err, ErrAnimalNotFound)

	mine, err := w.adoptions.ListByRequester(ctx, w.r1.UserID)
	if err != nil || len(mine) != 2 {
		t.Fatalf("mine = %+v, %v", mine, err)
	}
	for _, row := range mine {
		if row.RequesterID != w.r1.UserID || row.RequesterEmail != "r1@example.com" {
			t.Fatalf("foreign row in requester list: %+v", row)
		}
	}

	owned, err := w.adoptions.ListForOwner(ctx, w.owner.UserID)
	if err != nil || len(owned) != 3 {
		t.Fatalf("for owner = %d rows, %v", len(owned), err)
	}

	one, err := w.adoptions.ListForOwnerAnimal(ctx, w.owner.UserID, other.ID)
	if err != nil || len(one) != 1 || one[0].ID != r3.ID || one[0].AnimalName != "Luna" {
		t.Fatalf("for owner animal = %+v, %v", one, err)
	}
	_, err = w.adoptions.ListForOwnerAnimal(ctx, w.r1.UserID, other.ID)
	wantKind(t, err, KindForbidden)
	_, err = w.adoptions.ListForOwnerAnimal(ctx, w.owner.UserID, 9999)
	wantErr(t, err, ErrAnimalNotFound)

	n, err := w.adoptions.CountByAnimalAndStatus(ctx, w.animal.ID, domain.StatusPending)
	if err != nil || n != 2 {
		t.Fatalf("pending count = %d, %v", n, err)
	}
	_, err = w.adoptions.CountByAnimalAndStatus(ctx, w.animal.ID, domain.RequestStatus("CANCELLED"))
	wantKind(t, err, KindInvalidInput)

	_, err = w.adoptions.ListAll(ctx, w.r1)
	wantKind(t, err, KindForbidden)
	all, err := w.adoptions.ListAll(ctx, w.admin)
	if err != nil || len(all) != 3 {
		t.Fatalf("all = %d rows, %v", len(all), err)
	}
}

func TestAdoptionService_Get_Access(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	r := w.request(t, w.r1, "a")

	for name, actor := range map[string]Actor{"requester": w.r1, "owner": w.owner, "admin": w.admin} {
		row, err := w.adoptions.Get(ctx, actor, r.ID)
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if row.AnimalName != "Max" || row.OwnerID != w.owner.UserID || row.CategoryName != "Dog" {
			t.Fatalf("%s: unexpected row %+v", name, row)
		}
	}
	_, err := w.adoptions.Get(ctx, w.r2, r.ID)
	wantKind(t, err, KindForbidden)
	_, err = w.adoptions.Get(ctx, w.r1, 9999)
	wantErr(t, err, ErrRequestNotFound)
}

func TestAdoptionService_ParallelWritesOnFileStore(t *testing.T) {
	w := newFileWorld(t)
	ctx := context.Background()

	animals := []uint{w.animal.ID}
	for i := 0; i < 5; i++ {
		a := w.addAnimal(t, fmt.Sprintf("Pup %d", i), &w.poodle.ID, domain.AddMonths(fixedNow, -6))
		animals = append(animals, a.ID)
	}
	requesters := []Actor{w.r1, w.r2, w.r3}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
		reqs = map[uint]uint{}
	)
	for _, animalID := range animals {
		for _, r := range requesters {
			wg.Add(1)
			go func() {
				defer wg.Done()
				req, err := w.adoptions.Create(ctx, r, animalID, "parallel")
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					errs = append(errs, err)
					return
				}
				reqs[animalID] = req.ID
			}()
		}
	}
	wg.Wait()
	if len(errs) > 0 {
		t.Fatalf("parallel creates failed: %v", errs)
	}

	for _, animalID := range animals {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := w.adoptions.Decide(ctx, w.owner, reqs[animalID], domain.StatusApproved)
			if err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if len(errs) > 0 {
		t.Fatalf("parallel approvals failed: %v", errs)
	}

	for _, animalID := range animals {
		n, err := w.adoptions.CountByAnimalAndStatus(ctx, animalID, domain.StatusRejected)
		if err != nil || n != int64(len(requesters)-1) {
			t.Fatalf("animal %d rejected = %d (%v), want %d", animalID, n, err, len(requesters)-1)
		}
	}
}

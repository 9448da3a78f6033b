package repository

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/axellelanca/shorturls/internal/config"
	"github.com/axellelanca/shorturls/internal/database"
	customerrors "github.com/axellelanca/shorturls/internal/errors"
	"github.com/axellelanca/shorturls/internal/models"
)

var base = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(config.DatabaseConfig{
		DSN:          filepath.Join(t.TempDir(), "repo.db"),
		MaxOpenConns: 1,
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

func mustInsert(t *testing.T, repo *GormLinkRepository, link *models.Link) *models.Link {
	t.Helper()
	if err := repo.Insert(context.Background(), link); err != nil {
		t.Fatalf("insert %s: %v", link.ShortCode, err)
	}
	return link
}

func expiring(code string, created time.Time, ttl time.Duration) *models.Link {
	exp := created.Add(ttl)
	return &models.Link{ShortCode: code, LongURL: "https://example.com/" + code, CreatedAt: created, ExpiresAt: &exp}
}

func owned(l *models.Link, owner string) *models.Link {
	l.OwnerID = &owner
	return l
}

func countClicks(t *testing.T, db *gorm.DB, linkID uint) int64 {
	t.Helper()
	var n int64
	if err := db.Model(&models.Click{}).Where("link_id = ?", linkID).Count(&n).Error; err != nil {
		t.Fatal(err)
	}
	return n
}

func TestInsertDuplicateCode(t *testing.T) {
	repo := NewLinkRepository(newTestDB(t))
	mustInsert(t, repo, expiring("dup", base, time.Hour))

	err := repo.Insert(context.Background(), expiring("dup", base, time.Hour))
	if !errors.Is(err, customerrors.ErrDuplicateCode) {
		t.Fatalf("expected ErrDuplicateCode, got %v", err)
	}
}

func TestFindByCode(t *testing.T) {
	repo := NewLinkRepository(newTestDB(t))
	in := mustInsert(t, repo, expiring("abc", base, time.Minute))

	got, err := repo.FindByCode(context.Background(), "abc")
	if err != nil {
		t.Fatalf("FindByCode: %v", err)
	}
	if got.ID != in.ID || got.LongURL != in.LongURL {
		t.Errorf("got %+v, want %+v", got, in)
	}
	if got.ExpiresAt == nil || !got.ExpiresAt.Equal(*in.ExpiresAt) {
		t.Errorf("expires_at round trip: got %v want %v", got.ExpiresAt, in.ExpiresAt)
	}

	if _, err := repo.FindByCode(context.Background(), "missing"); !errors.Is(err, customerrors.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListByOwner(t *testing.T) {
	repo := NewLinkRepository(newTestDB(t))
	ctx := context.Background()
	now := base.Add(time.Hour)

	mustInsert(t, repo, owned(expiring("old", base, 2*time.Hour), "alice"))
	mustInsert(t, repo, owned(expiring("mid", base.Add(time.Minute), 2*time.Hour), "alice"))
	mustInsert(t, repo, owned(expiring("gone", base.Add(2*time.Minute), time.Minute), "alice"))
	mustInsert(t, repo, owned(&models.Link{ShortCode: "perm", LongURL: "https://example.com", CreatedAt: base.Add(3 * time.Minute), IsPermanent: true}, "alice"))
	mustInsert(t, repo, owned(expiring("bob", base.Add(4*time.Minute), 2*time.Hour), "bob"))

	links, err := repo.ListByOwner(ctx, "alice", 50, now)
	if err != nil {
		t.Fatalf("ListByOwner: %v", err)
	}
	var codes []string
	for _, l := range links {
		codes = append(codes, l.ShortCode)
	}
	want := []string{"perm", "mid", "old"}
	if fmt.Sprint(codes) != fmt.Sprint(want) {
		t.Errorf("codes = %v, want %v", codes, want)
	}

	links, err = repo.ListByOwner(ctx, "alice", 2, now)
	if err != nil {
		t.Fatal(err)
	}
	if len(links) != 2 {
		t.Errorf("limit not applied: %d links", len(links))
	}
}

func TestIncrementClicksConcurrent(t *testing.T) {
	db := newTestDB(t)
	repo := NewLinkRepository(db)
	link := mustInsert(t, repo, expiring("hot", base, time.Hour))

	const n = 25
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.IncrementClicks(context.Background(), link.ID); err != nil {
				t.Errorf("increment: %v", err)
			}
		}()
	}
	wg.Wait()

	got, err := repo.FindByCode(context.Background(), "hot")
	if err != nil {
		t.Fatal(err)
	}
	if got.ClickCount != n {
		t.Errorf("click_count = %d, want %d", got.ClickCount, n)
	}
}

func TestDeleteByCodeCascadesAndIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	repo := NewLinkRepository(db)
	clicks := NewClickRepository(db)
	ctx := context.Background()
	link := mustInsert(t, repo, expiring("del", base, time.Hour))

	for i := 0; i < 3; i++ {
		ev := models.ClickEvent{LinkID: link.ID, Timestamp: base}
		if err := clicks.RecordClick(ctx, ev.ToClick()); err != nil {
			t.Fatalf("RecordClick: %v", err)
		}
	}

	n, err := repo.DeleteByCode(ctx, "del")
	if err != nil || n != 1 {
		t.Fatalf("DeleteByCode = %d, %v; want 1, nil", n, err)
	}
	if c := countClicks(t, db, link.ID); c != 0 {
		t.Errorf("%d orphaned clicks left", c)
	}

	n, err = repo.DeleteByCode(ctx, "del")
	if err != nil || n != 0 {
		t.Errorf("second DeleteByCode = %d, %v; want 0, nil", n, err)
	}
}

func TestDeleteExpiredByCode(t *testing.T) {
	repo := NewLinkRepository(newTestDB(t))
	ctx := context.Background()
	mustInsert(t, repo, expiring("x", base, time.Minute))

	n, err := repo.DeleteExpiredByCode(ctx, "x", base.Add(30*time.Second))
	if err != nil || n != 0 {
		t.Fatalf("live link deleted: %d, %v", n, err)
	}
	n, err = repo.DeleteExpiredByCode(ctx, "x", base.Add(2*time.Minute))
	if err != nil || n != 1 {
		t.Fatalf("expired link not deleted: %d, %v", n, err)
	}
}

func TestExpiryInstantDeleteVersusSweep(t *testing.T) {
	repo := NewLinkRepository(newTestDB(t))
	ctx := context.Background()
	link := mustInsert(t, repo, expiring("edgy", base, 10*time.Second))
	at := *link.ExpiresAt

	if n, err := repo.DeleteExpiredBefore(ctx, at, 10); err != nil || n != 0 {
		t.Fatalf("sweep at expires_at = %d, %v; want 0", n, err)
	}
	if n, err := repo.DeleteExpiredByCode(ctx, "edgy", at); err != nil || n != 1 {
		t.Fatalf("DeleteExpiredByCode at expires_at = %d, %v; want 1", n, err)
	}
}

func TestDeleteOwned(t *testing.T) {
	repo := NewLinkRepository(newTestDB(t))
	ctx := context.Background()
	mustInsert(t, repo, owned(expiring("mine", base, time.Hour), "alice"))

	if n, err := repo.DeleteOwned(ctx, "mine", "bob"); err != nil || n != 0 {
		t.Fatalf("foreign owner deleted link: %d, %v", n, err)
	}
	if n, err := repo.DeleteOwned(ctx, "mine", "alice"); err != nil || n != 1 {
		t.Fatalf("owner could not delete link: %d, %v", n, err)
	}
}

func TestDeleteAllByOwner(t *testing.T) {
	repo := NewLinkRepository(newTestDB(t))
	ctx := context.Background()
	mustInsert(t, repo, owned(expiring("a1", base, time.Hour), "alice"))
	mustInsert(t, repo, owned(expiring("a2", base, time.Hour), "alice"))
	mustInsert(t, repo, owned(expiring("b1", base, time.Hour), "bob"))

	n, err := repo.DeleteAllByOwner(ctx, "alice")
	if err != nil || n != 2 {
		t.Fatalf("DeleteAllByOwner = %d, %v; want 2", n, err)
	}
	if _, err := repo.FindByCode(ctx, "b1"); err != nil {
		t.Errorf("other owner's link removed: %v", err)
	}
}

func TestDeleteExpiredBeforeBatches(t *testing.T) {
	db := newTestDB(t)
	repo := NewLinkRepository(db)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		mustInsert(t, repo, expiring(fmt.Sprintf("exp%d", i), base, time.Minute))
	}
	boundary := mustInsert(t, repo, expiring("edge", base, 10*time.Minute))
	past := base.Add(-time.Hour)
	mustInsert(t, repo, &models.Link{ShortCode: "perm", LongURL: "https://example.com", CreatedAt: base, IsPermanent: true, ExpiresAt: &past})

	n, err := repo.DeleteExpiredBefore(ctx, *boundary.ExpiresAt, 2)
	if err != nil {
		t.Fatalf("DeleteExpiredBefore: %v", err)
	}
	if n != 5 {
		t.Errorf("deleted %d, want 5", n)
	}
	for _, code := range []string{"edge", "perm"} {
		if _, err := repo.FindByCode(ctx, code); err != nil {
			t.Errorf("%s should survive: %v", code, err)
		}
	}

	n, err = repo.DeleteExpiredBefore(ctx, *boundary.ExpiresAt, 2)
	if err != nil || n != 0 {
		t.Errorf("second pass = %d, %v; want 0", n, err)
	}
}

func TestRecordClickOnDeletedLink(t *testing.T) {
	db := newTestDB(t)
	repo := NewLinkRepository(db)
	clicks := NewClickRepository(db)
	ctx := context.Background()
	link := mustInsert(t, repo, expiring("race", base, time.Hour))

	if _, err := repo.DeleteByCode(ctx, "race"); err != nil {
		t.Fatal(err)
	}

	ev := models.ClickEvent{LinkID: link.ID, Timestamp: base}
	err := clicks.RecordClick(ctx, ev.ToClick())
	if !errors.Is(err, customerrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if c := countClicks(t, db, link.ID); c != 0 {
		t.Errorf("orphaned click written")
	}
}

func TestCountClicksByLinkID(t *testing.T) {
	db := newTestDB(t)
	repo := NewLinkRepository(db)
	clicks := NewClickRepository(db)
	ctx := context.Background()
	link := mustInsert(t, repo, expiring("cnt", base, time.Hour))

	for i := 0; i < 4; i++ {
		ev := models.ClickEvent{LinkID: link.ID, Timestamp: base, UserAgent: "test"}
		if err := clicks.RecordClick(ctx, ev.ToClick()); err != nil {
			t.Fatal(err)
		}
	}
	n, err := clicks.CountClicksByLinkID(ctx, link.ID)
	if err != nil || n != 4 {
		t.Errorf("CountClicksByLinkID = %d, %v; want 4", n, err)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	if IsUniqueViolation(nil) {
		t.Error("nil is not a violation")
	}
	if !IsUniqueViolation(gorm.ErrDuplicatedKey) {
		t.Error("gorm.ErrDuplicatedKey not detected")
	}
	if !IsUniqueViolation(errors.New("UNIQUE constraint failed: links.short_code")) {
		t.Error("sqlite message not detected")
	}
	if IsUniqueViolation(errors.New("database is locked")) {
		t.Error("false positive")
	}
}

package services

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/axellelanca/shorturls/internal/config"
	"github.com/axellelanca/shorturls/internal/database"
	"github.com/axellelanca/shorturls/internal/models"
	"github.com/axellelanca/shorturls/internal/repository"
)

var epoch = time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testEnv struct {
	db        *gorm.DB
	clock     *fakeClock
	linkRepo  *repository.GormLinkRepository
	clickRepo *repository.GormClickRepository
	allocator *CodeAllocator
	links     *LinkService
	resolver  *Resolver
}

func newTestEnv(t *testing.T, lazyDelete bool) *testEnv {
	t.Helper()
	db, err := database.Open(config.DatabaseConfig{
		DSN:          filepath.Join(t.TempDir(), "services.db"),
		MaxOpenConns: 1,
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })

	clock := &fakeClock{now: epoch}
	linkRepo := repository.NewLinkRepository(db)
	clickRepo := repository.NewClickRepository(db)
	allocator := NewCodeAllocator(linkRepo, 8, clock.Now)

	return &testEnv{
		db:        db,
		clock:     clock,
		linkRepo:  linkRepo,
		clickRepo: clickRepo,
		allocator: allocator,
		links: NewLinkService(linkRepo, clickRepo, allocator, LinkOptions{
			MaxRetries:      5,
			DefaultValidity: 30 * time.Second,
			HistoryLimit:    50,
		}, clock.Now),
		resolver: NewResolver(linkRepo, NewClickRecorder(clickRepo), lazyDelete, clock.Now),
	}
}

func (e *testEnv) create(t *testing.T, in CreateLinkInput) *models.Link {
	t.Helper()
	link, err := e.links.CreateLink(context.Background(), in, anonymous)
	if err != nil {
		t.Fatalf("CreateLink(%+v): %v", in, err)
	}
	return link
}

func (e *testEnv) clickRows(t *testing.T, linkID uint) int64 {
	t.Helper()
	var n int64
	if err := e.db.Model(&models.Click{}).Where("link_id = ?", linkID).Count(&n).Error; err != nil {
		t.Fatal(err)
	}
	return n
}

func seconds(n int64) *int64 { return &n }

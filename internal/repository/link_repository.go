package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	customerrors "github.com/axellelanca/shorturls/internal/errors"
	"github.com/axellelanca/shorturls/internal/models"
)

// LinkRepository defines data access to links. Every delete removes the
// link's clicks in the same transaction and reports 0 when nothing matched.
type LinkRepository interface {
	Insert(ctx context.Context, link *models.Link) error
	FindByCode(ctx context.Context, code string) (*models.Link, error)
	ListByOwner(ctx context.Context, ownerID string, limit int, now time.Time) ([]models.Link, error)
	IncrementClicks(ctx context.Context, linkID uint) (int64, error)
	DeleteByCode(ctx context.Context, code string) (int64, error)
	DeleteExpiredByCode(ctx context.Context, code string, now time.Time) (int64, error)
	DeleteOwned(ctx context.Context, code, ownerID string) (int64, error)
	DeleteAllByOwner(ctx context.Context, ownerID string) (int64, error)
	DeleteExpiredBefore(ctx context.Context, before time.Time, batchSize int) (int64, error)
}

// GormLinkRepository implements LinkRepository with GORM.
type GormLinkRepository struct {
	db *gorm.DB
}

// NewLinkRepository creates a GormLinkRepository.
func NewLinkRepository(db *gorm.DB) *GormLinkRepository {
	return &GormLinkRepository{db: db}
}

// IsUniqueViolation reports whether err comes from a unique index.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "SQLITE_CONSTRAINT_UNIQUE")
}

// Insert stores a new link. The unique index on short_code is the only
// arbiter of code ownership.
func (r *GormLinkRepository) Insert(ctx context.Context, link *models.Link) error {
	if err := r.db.WithContext(ctx).Create(link).Error; err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("insert %q: %w", link.ShortCode, customerrors.ErrDuplicateCode)
		}
		return fmt.Errorf("failed to create link: %w", err)
	}
	return nil
}

// FindByCode returns the stored link or ErrNotFound.
func (r *GormLinkRepository) FindByCode(ctx context.Context, code string) (*models.Link, error) {
	var link models.Link
	err := r.db.WithContext(ctx).Where("short_code = ?", code).Take(&link).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, customerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find link %q: %w", code, err)
	}
	return &link, nil
}

// ListByOwner returns the owner's links, most recent first. Logically expired
// links are left out even before the sweep removes them.
func (r *GormLinkRepository) ListByOwner(ctx context.Context, ownerID string, limit int, now time.Time) ([]models.Link, error) {
	var links []models.Link
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Where("(is_permanent = ? OR expires_at > ?)", true, now.UTC()).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&links).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list links for owner: %w", err)
	}
	return links, nil
}

// IncrementClicks bumps the counter in a single UPDATE so concurrent
// resolutions never lose an increment.
func (r *GormLinkRepository) IncrementClicks(ctx context.Context, linkID uint) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Link{}).
		Where("id = ?", linkID).
		UpdateColumn("click_count", gorm.Expr("click_count + ?", 1))
	if res.Error != nil {
		return 0, fmt.Errorf("failed to increment clicks for link ID %d: %w", linkID, res.Error)
	}
	return res.RowsAffected, nil
}

// DeleteByCode removes a link regardless of its state.
func (r *GormLinkRepository) DeleteByCode(ctx context.Context, code string) (int64, error) {
	return r.deleteWhere(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("short_code = ?", code)
	})
}

// DeleteExpiredByCode removes the link only while it is still logically
// expired at now (expires_at <= now), so a code re-allocated in the meantime
// is left alone.
func (r *GormLinkRepository) DeleteExpiredByCode(ctx context.Context, code string, now time.Time) (int64, error) {
	return r.deleteWhere(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("short_code = ? AND is_permanent = ? AND expires_at IS NOT NULL AND expires_at <= ?", code, false, now.UTC())
	})
}

// DeleteOwned removes a link only if ownerID owns it.
func (r *GormLinkRepository) DeleteOwned(ctx context.Context, code, ownerID string) (int64, error) {
	return r.deleteWhere(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("short_code = ? AND owner_id = ?", code, ownerID)
	})
}

// DeleteAllByOwner removes every link of an account.
func (r *GormLinkRepository) DeleteAllByOwner(ctx context.Context, ownerID string) (int64, error) {
	return r.deleteWhere(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("owner_id = ?", ownerID)
	})
}

// DeleteExpiredBefore removes non-permanent links with expires_at < before,
// batchSize links per transaction, and returns the total removed.
func (r *GormLinkRepository) DeleteExpiredBefore(ctx context.Context, before time.Time, batchSize int) (int64, error) {
	before = before.UTC()
	var total int64
	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		n, err := r.deleteWhere(ctx, func(db *gorm.DB) *gorm.DB {
			return expiredScope(db, before).Order("id").Limit(batchSize)
		})
		total += n
		if err != nil {
			return total, err
		}
		if n < int64(batchSize) {
			return total, nil
		}
	}
}

func expiredScope(db *gorm.DB, before time.Time) *gorm.DB {
	return db.Where("is_permanent = ? AND expires_at IS NOT NULL AND expires_at < ?", false, before)
}

// deleteWhere selects the matching link IDs, then deletes their clicks and
// the links in one transaction. Missing rows are not an error.
func (r *GormLinkRepository) deleteWhere(ctx context.Context, scope func(*gorm.DB) *gorm.DB) (int64, error) {
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []uint
		if err := tx.Model(&models.Link{}).Scopes(scope).Pluck("id", &ids).Error; err != nil {
			return fmt.Errorf("failed to select links to delete: %w", err)
		}
		if len(ids) == 0 {
			return nil
		}
		if err := tx.Where("link_id IN ?", ids).Delete(&models.Click{}).Error; err != nil {
			return fmt.Errorf("failed to delete clicks: %w", err)
		}
		res := tx.Where("id IN ?", ids).Delete(&models.Link{})
		if res.Error != nil {
			return fmt.Errorf("failed to delete links: %w", res.Error)
		}
		deleted = res.RowsAffected
		return nil
	})
	return deleted, err
}

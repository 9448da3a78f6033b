package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	customerrors "github.com/axellelanca/shorturls/internal/errors"
	"github.com/axellelanca/shorturls/internal/models"
)

// ClickRepository defines data access to click events.
type ClickRepository interface {
	RecordClick(ctx context.Context, click *models.Click) error
	CountClicksByLinkID(ctx context.Context, linkID uint) (int64, error)
}

// GormClickRepository implements ClickRepository with GORM.
type GormClickRepository struct {
	db *gorm.DB
}

// NewClickRepository creates a GormClickRepository.
func NewClickRepository(db *gorm.DB) *GormClickRepository {
	return &GormClickRepository{db: db}
}

// RecordClick increments the link counter and appends the event in one
// transaction. When the link is already gone nothing is written and
// ErrNotFound is returned, so no event can outlive its link.
func (r *GormClickRepository) RecordClick(ctx context.Context, click *models.Click) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		n, err := NewLinkRepository(tx).IncrementClicks(ctx, click.LinkID)
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("link ID %d: %w", click.LinkID, customerrors.ErrNotFound)
		}
		if err := tx.Create(click).Error; err != nil {
			return fmt.Errorf("failed to create click: %w", err)
		}
		return nil
	})
}

// CountClicksByLinkID counts the stored events of a link.
func (r *GormClickRepository) CountClicksByLinkID(ctx context.Context, linkID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Click{}).Where("link_id = ?", linkID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count clicks for link ID %d: %w", linkID, err)
	}
	return count, nil
}

package services

import (
	"context"
	"fmt"
	"log"

	customerrors "github.com/axellelanca/shorturls/internal/errors"
	"github.com/axellelanca/shorturls/internal/models"
	"github.com/axellelanca/shorturls/internal/repository"
)

// RequestMeta is the request context captured with each click.
type RequestMeta struct {
	UserAgent string
	Referrer  string
	IPAddress string
}

// Resolver turns a code into its target. It reads the store on every call;
// there is no cache of link state.
type Resolver struct {
	linkRepo   repository.LinkRepository
	clicks     ClickSink
	lazyDelete bool
	now        Clock
}

// NewResolver creates a Resolver. With lazyDelete set, an expired link found
// during resolution is deleted on the spot instead of waiting for the sweep.
func NewResolver(linkRepo repository.LinkRepository, clicks ClickSink, lazyDelete bool, now Clock) *Resolver {
	if now == nil {
		now = SystemClock
	}
	return &Resolver{
		linkRepo:   linkRepo,
		clicks:     clicks,
		lazyDelete: lazyDelete,
		now:        now,
	}
}

// Resolve returns the live link for code, ErrGone when it is logically
// expired, or ErrNotFound when it does not exist.
func (r *Resolver) Resolve(ctx context.Context, code string, meta RequestMeta) (*models.Link, error) {
	link, err := r.linkRepo.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	now := r.now()
	if link.IsExpiredAt(now) {
		if r.lazyDelete {
			// Only deletes while the stored link is still expired at now
			if _, err := r.linkRepo.DeleteExpiredByCode(ctx, code, now); err != nil {
				log.Printf("[RESOLVER] ERROR deleting expired code '%s': %v", code, err)
			}
		}
		return nil, fmt.Errorf("code %q: %w", code, customerrors.ErrGone)
	}

	event := models.ClickEvent{
		LinkID:    link.ID,
		ShortCode: link.ShortCode,
		Timestamp: now,
		UserAgent: meta.UserAgent,
		Referrer:  meta.Referrer,
		IPAddress: meta.IPAddress,
	}
	if err := r.clicks.Record(ctx, event); err != nil {
		log.Printf("[RESOLVER] WARNING click not recorded for '%s': %v", code, err)
	}

	return link, nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"net/url"
	"time"

	"github.com/axellelanca/shorturls/internal/auth"
	customerrors "github.com/axellelanca/shorturls/internal/errors"
	"github.com/axellelanca/shorturls/internal/models"
	"github.com/axellelanca/shorturls/internal/repository"
)

// maxValiditySeconds keeps now+validity within time.Duration range.
const maxValiditySeconds = int64(math.MaxInt64 / int64(time.Second))

// LinkOptions tunes link creation and listing.
type LinkOptions struct {
	MaxRetries      int
	DefaultValidity time.Duration
	HistoryLimit    int
}

// CreateLinkInput is the validated shape of a creation request.
type CreateLinkInput struct {
	OriginalURL string
	// ValiditySeconds is nil when the caller did not send one.
	ValiditySeconds *int64
	CustomCode      string
	IsPermanent     bool
}

// LinkStats is the read-only view of a link with its event count.
type LinkStats struct {
	Link   *models.Link
	Events int64
}

// LinkService manages shortened links on behalf of callers.
type LinkService struct {
	linkRepo  repository.LinkRepository
	clickRepo repository.ClickRepository
	allocator *CodeAllocator
	opts      LinkOptions
	now       Clock
}

// NewLinkService creates a LinkService.
func NewLinkService(linkRepo repository.LinkRepository, clickRepo repository.ClickRepository, allocator *CodeAllocator, opts LinkOptions, now Clock) *LinkService {
	if now == nil {
		now = SystemClock
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = 5
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = 50
	}
	if opts.DefaultValidity <= 0 {
		opts.DefaultValidity = 30 * time.Second
	}
	return &LinkService{
		linkRepo:  linkRepo,
		clickRepo: clickRepo,
		allocator: allocator,
		opts:      opts,
		now:       now,
	}
}

// ValidateTargetURL accepts absolute http and https URLs with a host.
func ValidateTargetURL(raw string) error {
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", customerrors.ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: scheme must be http or https", customerrors.ErrInvalidURL)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: missing host", customerrors.ErrInvalidURL)
	}
	return nil
}

// CreateLink validates the input, allocates a code and stores the link.
// A random code that collides at insert time is regenerated up to
// MaxRetries times; a custom code that collides is a conflict.
func (s *LinkService) CreateLink(ctx context.Context, in CreateLinkInput, caller auth.Identity) (*models.Link, error) {
	if err := ValidateTargetURL(in.OriginalURL); err != nil {
		return nil, err
	}
	if in.ValiditySeconds != nil && (*in.ValiditySeconds <= 0 || *in.ValiditySeconds > maxValiditySeconds) {
		return nil, customerrors.ErrInvalidValidity
	}
	if in.IsPermanent && !caller.Authenticated {
		return nil, fmt.Errorf("permanent links: %w", customerrors.ErrUnauthenticated)
	}

	for i := 0; i < s.opts.MaxRetries; i++ {
		code, err := s.allocator.Allocate(ctx, in.CustomCode)
		if err != nil {
			return nil, err
		}

		link := s.newLink(code, in, caller)
		err = s.linkRepo.Insert(ctx, link)
		if err == nil {
			return link, nil
		}
		if !errors.Is(err, customerrors.ErrDuplicateCode) {
			return nil, err
		}
		if in.CustomCode != "" {
			return nil, fmt.Errorf("code %q: %w", code, customerrors.ErrCodeConflict)
		}
		log.Printf("Short code '%s' already exists, retrying generation (%d/%d)...", code, i+1, s.opts.MaxRetries)
	}

	return nil, customerrors.ErrAllocationExhausted
}

func (s *LinkService) newLink(code string, in CreateLinkInput, caller auth.Identity) *models.Link {
	now := s.now()
	link := &models.Link{
		ShortCode:   code,
		LongURL:     in.OriginalURL,
		CreatedAt:   now,
		IsPermanent: in.IsPermanent,
	}
	if !in.IsPermanent {
		validity := s.opts.DefaultValidity
		if in.ValiditySeconds != nil {
			validity = time.Duration(*in.ValiditySeconds) * time.Second
		}
		expiresAt := now.Add(validity)
		link.ExpiresAt = &expiresAt
	}
	if caller.Authenticated {
		owner := caller.AccountID
		link.OwnerID = &owner
	}
	return link
}

// History lists the caller's live links, most recent first.
func (s *LinkService) History(ctx context.Context, caller auth.Identity) ([]models.Link, error) {
	if !caller.Authenticated {
		return nil, customerrors.ErrUnauthenticated
	}
	return s.linkRepo.ListByOwner(ctx, caller.AccountID, s.opts.HistoryLimit, s.now())
}

// RemoveLink deletes one of the caller's links. A code that does not exist or
// belongs to someone else is reported as not found.
func (s *LinkService) RemoveLink(ctx context.Context, code string, caller auth.Identity) error {
	if !caller.Authenticated {
		return customerrors.ErrUnauthenticated
	}
	n, err := s.linkRepo.DeleteOwned(ctx, code, caller.AccountID)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("code %q: %w", code, customerrors.ErrNotFound)
	}
	return nil
}

// PurgeAccount deletes every link of the caller along with their clicks.
func (s *LinkService) PurgeAccount(ctx context.Context, caller auth.Identity) (int64, error) {
	if !caller.Authenticated {
		return 0, customerrors.ErrUnauthenticated
	}
	return s.linkRepo.DeleteAllByOwner(ctx, caller.AccountID)
}

// DeleteCode removes a link whatever its owner or state. Operator use only.
func (s *LinkService) DeleteCode(ctx context.Context, code string) error {
	n, err := s.linkRepo.DeleteByCode(ctx, code)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("code %q: %w", code, customerrors.ErrNotFound)
	}
	return nil
}

// GetLinkStats returns a live link with its stored event count. Expired
// links answer ErrGone and are left for the reclaimer.
func (s *LinkService) GetLinkStats(ctx context.Context, code string) (*LinkStats, error) {
	link, err := s.linkRepo.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if link.IsExpiredAt(s.now()) {
		return nil, fmt.Errorf("code %q: %w", code, customerrors.ErrGone)
	}
	events, err := s.clickRepo.CountClicksByLinkID(ctx, link.ID)
	if err != nil {
		return nil, err
	}
	return &LinkStats{Link: link, Events: events}, nil
}

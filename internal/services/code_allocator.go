// Package services contains the business logic of the short-code lifecycle.
package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"math/big"
	"regexp"
	"time"

	customerrors "github.com/axellelanca/shorturls/internal/errors"
	"github.com/axellelanca/shorturls/internal/repository"
)

// charset is the alphabet of generated codes: 62 symbols.
const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Bounds of caller-supplied codes.
const (
	MinCustomCodeLength = 3
	MaxCustomCodeLength = 30
)

var customCodePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Clock returns the current instant. Services compare expiry against it.
type Clock func() time.Time

// SystemClock is the wall clock in UTC.
func SystemClock() time.Time {
	return time.Now().UTC()
}

// ValidateCustomCode checks length and charset of a caller-supplied code.
func ValidateCustomCode(code string) error {
	if len(code) < MinCustomCodeLength || len(code) > MaxCustomCodeLength {
		return fmt.Errorf("%w: length must be between %d and %d", customerrors.ErrInvalidCode, MinCustomCodeLength, MaxCustomCodeLength)
	}
	if !customCodePattern.MatchString(code) {
		return fmt.Errorf("%w: only letters, digits, '_' and '-' are allowed", customerrors.ErrInvalidCode)
	}
	return nil
}

// GenerateShortCode returns a random code of the given length drawn from charset.
func GenerateShortCode(length int) (string, error) {
	code := make([]byte, length)
	for i := range code {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", fmt.Errorf("failed to generate random number: %w", err)
		}
		code[i] = charset[num.Int64()]
	}
	return string(code), nil
}

// CodeAllocator decides which code a new link gets. It never inserts;
// uniqueness is settled by the store's unique index at insert time.
type CodeAllocator struct {
	links    repository.LinkRepository
	length   int
	now      Clock
	generate func(length int) (string, error)
}

// NewCodeAllocator creates a CodeAllocator producing codes of length characters.
func NewCodeAllocator(links repository.LinkRepository, length int, now Clock) *CodeAllocator {
	if now == nil {
		now = SystemClock
	}
	return &CodeAllocator{
		links:    links,
		length:   length,
		now:      now,
		generate: GenerateShortCode,
	}
}

// Allocate returns requested after validation, or a fresh random code when
// requested is empty. A requested code held by a logically expired link is
// freed by deleting that link first.
func (a *CodeAllocator) Allocate(ctx context.Context, requested string) (string, error) {
	if requested == "" {
		return a.generate(a.length)
	}

	if err := ValidateCustomCode(requested); err != nil {
		return "", err
	}

	existing, err := a.links.FindByCode(ctx, requested)
	switch {
	case errors.Is(err, customerrors.ErrNotFound):
		return requested, nil
	case err != nil:
		return "", fmt.Errorf("failed to check code %q: %w", requested, err)
	}

	now := a.now()
	if !existing.IsExpiredAt(now) {
		return "", fmt.Errorf("code %q: %w", requested, customerrors.ErrCodeConflict)
	}

	n, err := a.links.DeleteExpiredByCode(ctx, requested, now)
	if err != nil {
		return "", fmt.Errorf("failed to reclaim expired code %q: %w", requested, err)
	}
	if n > 0 {
		log.Printf("Reclaimed expired code '%s' for reuse", requested)
	}
	// With n == 0 another request freed or took the code; the insert decides
	return requested, nil
}

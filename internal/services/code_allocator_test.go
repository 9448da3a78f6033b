package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/axellelanca/shorturls/internal/auth"
	customerrors "github.com/axellelanca/shorturls/internal/errors"
)

var anonymous = auth.Anonymous

func TestValidateCustomCode(t *testing.T) {
	tests := []struct {
		code  string
		valid bool
	}{
		{"abc", true},
		{"my-link_2", true},
		{strings.Repeat("a", 30), true},
		{"ab", false},
		{strings.Repeat("a", 31), false},
		{"with space", false},
		{"slash/code", false},
		{"émoji", false},
	}
	for _, tt := range tests {
		err := ValidateCustomCode(tt.code)
		if tt.valid && err != nil {
			t.Errorf("ValidateCustomCode(%q) unexpected error: %v", tt.code, err)
		}
		if !tt.valid && !errors.Is(err, customerrors.ErrInvalidCode) {
			t.Errorf("ValidateCustomCode(%q) = %v, want ErrInvalidCode", tt.code, err)
		}
	}
}

func TestGenerateShortCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code, err := GenerateShortCode(8)
		if err != nil {
			t.Fatal(err)
		}
		if len(code) != 8 {
			t.Fatalf("len(%q) = %d, want 8", code, len(code))
		}
		for _, c := range code {
			if !strings.ContainsRune(charset, c) {
				t.Fatalf("unexpected rune %q in %q", c, code)
			}
		}
		seen[code] = true
	}
	if len(seen) < 99 {
		t.Errorf("too many repeated codes: %d unique of 100", len(seen))
	}
}

func TestAllocateRandom(t *testing.T) {
	env := newTestEnv(t, true)
	code, err := env.allocator.Allocate(context.Background(), "")
	if err != nil {
		t.Fatal(err)
	}
	if len(code) != 8 {
		t.Errorf("generated code %q has length %d", code, len(code))
	}
}

func TestAllocateCustom(t *testing.T) {
	env := newTestEnv(t, true)
	ctx := context.Background()

	code, err := env.allocator.Allocate(ctx, "fresh")
	if err != nil || code != "fresh" {
		t.Fatalf("Allocate(fresh) = %q, %v", code, err)
	}

	if _, err := env.allocator.Allocate(ctx, "x!"); !errors.Is(err, customerrors.ErrInvalidCode) {
		t.Errorf("expected ErrInvalidCode, got %v", err)
	}

	env.create(t, CreateLinkInput{OriginalURL: "https://example.com", CustomCode: "taken", ValiditySeconds: seconds(10)})
	if _, err := env.allocator.Allocate(ctx, "taken"); !errors.Is(err, customerrors.ErrCodeConflict) {
		t.Errorf("expected ErrCodeConflict for live code, got %v", err)
	}
}

func TestCreateReusesCustomCodeAtExpiryInstant(t *testing.T) {
	env := newTestEnv(t, false)
	env.create(t, CreateLinkInput{OriginalURL: "https://old.example.com", CustomCode: "edgy", ValiditySeconds: seconds(10)})
	env.clock.Advance(10 * time.Second)

	link, err := env.links.CreateLink(context.Background(), CreateLinkInput{
		OriginalURL: "https://new.example.com",
		CustomCode:  "edgy",
	}, anonymous)
	if err != nil {
		t.Fatalf("CreateLink at expiry instant: %v", err)
	}
	if link.LongURL != "https://new.example.com" {
		t.Errorf("unexpected link %+v", link)
	}
}

func TestAllocateReclaimsExpiredCustomCode(t *testing.T) {
	env := newTestEnv(t, false)
	ctx := context.Background()

	old := env.create(t, CreateLinkInput{OriginalURL: "https://old.example.com", CustomCode: "reuse", ValiditySeconds: seconds(10)})
	if _, err := env.resolver.Resolve(ctx, "reuse", RequestMeta{}); err != nil {
		t.Fatal(err)
	}
	env.clock.Advance(10 * time.Second)

	code, err := env.allocator.Allocate(ctx, "reuse")
	if err != nil || code != "reuse" {
		t.Fatalf("Allocate(reuse) = %q, %v", code, err)
	}
	if _, err := env.linkRepo.FindByCode(ctx, "reuse"); !errors.Is(err, customerrors.ErrNotFound) {
		t.Errorf("stale link still stored: %v", err)
	}
	if n := env.clickRows(t, old.ID); n != 0 {
		t.Errorf("stale clicks left: %d", n)
	}

	fresh := env.create(t, CreateLinkInput{OriginalURL: "https://new.example.com", CustomCode: "reuse"})
	if fresh.LongURL != "https://new.example.com" {
		t.Errorf("unexpected link %+v", fresh)
	}
}

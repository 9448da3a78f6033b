package services

import (
	"context"

	customerrors "github.com/axellelanca/shorturls/internal/errors"
	"github.com/axellelanca/shorturls/internal/models"
	"github.com/axellelanca/shorturls/internal/repository"
)

// ClickSink accepts one click per successful resolution. Implementations
// either record it inline or hand it to background workers.
type ClickSink interface {
	Record(ctx context.Context, event models.ClickEvent) error
}

// ClickRecorder writes click events synchronously.
type ClickRecorder struct {
	clickRepo repository.ClickRepository
}

// NewClickRecorder creates a ClickRecorder.
func NewClickRecorder(clickRepo repository.ClickRepository) *ClickRecorder {
	return &ClickRecorder{clickRepo: clickRepo}
}

// Record increments the link counter and appends the event.
func (r *ClickRecorder) Record(ctx context.Context, event models.ClickEvent) error {
	if err := r.clickRepo.RecordClick(ctx, event.ToClick()); err != nil {
		return customerrors.ErrClickRecordingFailed{LinkID: event.LinkID, Reason: err.Error()}
	}
	return nil
}

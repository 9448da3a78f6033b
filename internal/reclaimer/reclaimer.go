// Package reclaimer periodically deletes expired, non-permanent links and
// their clicks.
package reclaimer

import (
	"context"
	"log"
	"sync"
	"time"

	customerrors "github.com/axellelanca/shorturls/internal/errors"
)

// ExpiredLinkDeleter is the part of the link store the reclaimer needs.
type ExpiredLinkDeleter interface {
	DeleteExpiredBefore(ctx context.Context, before time.Time, batchSize int) (int64, error)
}

// Reclaimer runs the expiry sweep on a fixed interval.
type Reclaimer struct {
	links     ExpiredLinkDeleter
	interval  time.Duration
	batchSize int
	now       func() time.Time

	mu      sync.Mutex
	stop    chan struct{}
	done    chan struct{}
	running bool
}

// NewReclaimer creates a Reclaimer sweeping every interval.
func NewReclaimer(links ExpiredLinkDeleter, interval time.Duration, batchSize int, now func() time.Time) *Reclaimer {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Reclaimer{
		links:     links,
		interval:  interval,
		batchSize: batchSize,
		now:       now,
	}
}

// Sweep deletes every link with expires_at before now and returns how many
// were removed. Running it again with nothing newly expired returns 0.
func (m *Reclaimer) Sweep(ctx context.Context) (int64, error) {
	deleted, err := m.links.DeleteExpiredBefore(ctx, m.now(), m.batchSize)
	if err != nil {
		return deleted, customerrors.ErrSweepFailed{Reason: err.Error()}
	}
	return deleted, nil
}

// Start runs one sweep immediately, then one per interval, in a background
// goroutine until ctx is cancelled or Stop is called. Calling Start while the
// loop runs is a no-op.
func (m *Reclaimer) Start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return
	}
	m.running = true
	m.stop = make(chan struct{})
	m.done = make(chan struct{})

	go m.loop(ctx, m.stop, m.done)
}

func (m *Reclaimer) loop(ctx context.Context, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	log.Printf("[RECLAIMER] Starting expiry sweep with interval of %v...", m.interval)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.runSweep(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Println("[RECLAIMER] Context cancelled, stopping.")
			return
		case <-stop:
			log.Println("[RECLAIMER] Stopped.")
			return
		case <-ticker.C:
			m.runSweep(ctx)
		}
	}
}

// Done is closed when the loop started by the last Start has exited.
// It is nil before the first Start.
func (m *Reclaimer) Done() <-chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.done
}

// Stop ends the loop and waits for an in-flight sweep to finish.
func (m *Reclaimer) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	stop, done := m.stop, m.done
	m.mu.Unlock()

	close(stop)
	<-done
}

// runSweep executes one sweep. Failures and panics are logged so the next
// tick still fires.
func (m *Reclaimer) runSweep(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[RECLAIMER] ERROR sweep panicked: %v", r)
		}
	}()

	start := time.Now()
	deleted, err := m.Sweep(ctx)
	if err != nil {
		log.Printf("[RECLAIMER] ERROR %v (deleted %d before failing)", err, deleted)
		return
	}
	if deleted > 0 {
		log.Printf("[RECLAIMER] Deleted %d expired link(s) in %v.", deleted, time.Since(start))
	}
}

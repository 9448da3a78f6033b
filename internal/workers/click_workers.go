package workers

import (
	"context"
	"log"
	"sync"

	"github.com/axellelanca/shorturls/internal/models"
	"github.com/axellelanca/shorturls/internal/services"
)

// ClickDispatcher records clicks in the background through a pool of workers
// reading a buffered channel. It satisfies services.ClickSink.
type ClickDispatcher struct {
	recorder services.ClickSink
	events   chan models.ClickEvent

	mu      sync.RWMutex
	closed  bool
	started bool
	wg      sync.WaitGroup
}

// NewClickDispatcher creates a dispatcher buffering up to bufferSize events
// in front of recorder.
func NewClickDispatcher(recorder services.ClickSink, bufferSize int) *ClickDispatcher {
	return &ClickDispatcher{
		recorder: recorder,
		events:   make(chan models.ClickEvent, bufferSize),
	}
}

// Start launches workerCount goroutines. It is a no-op after the first call.
func (d *ClickDispatcher) Start(workerCount int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started || d.closed {
		return
	}
	d.started = true

	log.Printf("[CLICKS] Starting %d click worker(s)...", workerCount)
	for i := 0; i < workerCount; i++ {
		d.wg.Add(1)
		go d.clickWorker(i)
	}
}

// clickWorker records events until the channel is closed and drained.
func (d *ClickDispatcher) clickWorker(id int) {
	defer d.wg.Done()
	for event := range d.events {
		// The originating request is usually finished by now
		if err := d.recorder.Record(context.Background(), event); err != nil {
			log.Printf("[CLICKS] worker %d: ERROR failed to save click for '%s' (LinkID %d): %v",
				id, event.ShortCode, event.LinkID, err)
		}
	}
}

// Record queues the event. When the buffer is full, or the dispatcher is
// stopped, the event is recorded inline so the counter stays exact.
func (d *ClickDispatcher) Record(ctx context.Context, event models.ClickEvent) error {
	d.mu.RLock()
	if !d.closed && d.started {
		select {
		case d.events <- event:
			d.mu.RUnlock()
			return nil
		default:
		}
	}
	d.mu.RUnlock()

	log.Printf("[CLICKS] WARNING queue unavailable, recording click for '%s' inline", event.ShortCode)
	return d.recorder.Record(ctx, event)
}

// Pending returns the number of queued events.
func (d *ClickDispatcher) Pending() int {
	return len(d.events)
}

// Stop closes the queue and waits until every queued event is recorded.
func (d *ClickDispatcher) Stop() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.events)
	d.mu.Unlock()

	d.wg.Wait()
	log.Println("[CLICKS] Click workers drained.")
}

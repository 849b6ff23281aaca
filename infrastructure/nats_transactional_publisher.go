package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"gambler/challenge-service/domain/events"
	"gambler/challenge-service/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// NATSTransactionalPublisher buffers the events raised inside one unit of work.
// They reach the real publisher only after the transaction commits.
type NATSTransactionalPublisher struct {
	realPublisher interfaces.EventPublisher
	mu            sync.Mutex
	pending       []events.Event
}

// NewNATSTransactionalPublisher wraps the publisher events are eventually handed to
func NewNATSTransactionalPublisher(realPublisher interfaces.EventPublisher) *NATSTransactionalPublisher {
	return &NATSTransactionalPublisher{realPublisher: realPublisher}
}

// Publish queues the event
func (p *NATSTransactionalPublisher) Publish(event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.pending = append(p.pending, event)
	return nil
}

// Flush hands every queued event to the real publisher in order. A failed event
// does not hold back the rest; the failures come back joined. Events left over
// when ctx is cancelled are dropped and reported the same way.
func (p *NATSTransactionalPublisher) Flush(ctx context.Context) error {
	p.mu.Lock()
	pending := p.pending
	p.pending = nil
	p.mu.Unlock()

	var errs []error
	for i, event := range pending {
		if err := ctx.Err(); err != nil {
			errs = append(errs, fmt.Errorf("dropped %d events: %w", len(pending)-i, err))
			break
		}
		if err := p.realPublisher.Publish(event); err != nil {
			errs = append(errs, fmt.Errorf("failed to publish %s: %w", event.Type(), err))
		}
	}

	log.WithFields(log.Fields{
		"flushed": len(pending),
		"failed":  len(errs),
	}).Debug("Flushed unit of work events")
	return errors.Join(errs...)
}

// Discard drops every queued event
func (p *NATSTransactionalPublisher) Discard() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.pending) > 0 {
		log.WithField("discarded", len(p.pending)).Debug("Discarded unit of work events")
	}
	p.pending = nil
}

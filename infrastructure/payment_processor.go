package infrastructure

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// SimulatedPaymentProcessor stands in for the external payment capture step.
// It waits for the configured delay and succeeds with the configured probability.
type SimulatedPaymentProcessor struct {
	successRate float64
	delay       time.Duration
	mu          sync.Mutex
	rng         *rand.Rand
}

// NewSimulatedPaymentProcessor creates a processor with the given success rate and delay
func NewSimulatedPaymentProcessor(successRate float64, delay time.Duration) *SimulatedPaymentProcessor {
	return &SimulatedPaymentProcessor{
		successRate: successRate,
		delay:       delay,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Process reports whether the payment was captured
func (p *SimulatedPaymentProcessor) Process(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, method string) (bool, error) {
	if p.delay > 0 {
		timer := time.NewTimer(p.delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-timer.C:
		}
	}

	p.mu.Lock()
	roll := p.rng.Float64()
	p.mu.Unlock()

	approved := roll < p.successRate
	log.WithFields(log.Fields{
		"userID":   userID,
		"amount":   amount.StringFixed(2),
		"method":   method,
		"approved": approved,
	}).Info("Processed simulated payment")
	return approved, nil
}

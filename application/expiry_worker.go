package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gambler/challenge-service/config"
	"gambler/challenge-service/domain/entities"
	"gambler/challenge-service/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// SweepRecorder receives a tick for every completed expiry sweep
type SweepRecorder interface {
	RecordExpirySweep()
}

// ExpiryWorker declines negotiations that have waited longer than the negotiation TTL
type ExpiryWorker struct {
	config           *config.Config
	challengeRepo    interfaces.ChallengeRepository
	challengeService interfaces.ChallengeService
	recorder         SweepRecorder
	now              func() time.Time
}

// NewExpiryWorker creates a new expiry worker. recorder may be nil.
func NewExpiryWorker(challengeRepo interfaces.ChallengeRepository, challengeService interfaces.ChallengeService, recorder SweepRecorder) *ExpiryWorker {
	return &ExpiryWorker{
		config:           config.Get(),
		challengeRepo:    challengeRepo,
		challengeService: challengeService,
		recorder:         recorder,
		now:              time.Now,
	}
}

// Start begins the expiry worker and returns a function that stops it
func (w *ExpiryWorker) Start(ctx context.Context) func() {
	stopChan := make(chan struct{})

	if w.config.NegotiationTTL <= 0 {
		log.Info("Negotiation expiry disabled (NEGOTIATION_TTL=0)")
		return func() { close(stopChan) }
	}

	go func() {
		log.WithFields(log.Fields{
			"ttl":      w.config.NegotiationTTL,
			"interval": w.config.ExpiryScanInterval,
		}).Info("Expiry worker started")

		ticker := time.NewTicker(w.config.ExpiryScanInterval)
		defer ticker.Stop()

		for {
			if _, err := w.SweepOnce(ctx); err != nil {
				log.Errorf("Error sweeping stale negotiations: %v", err)
			}

			select {
			case <-ctx.Done():
				log.Info("Expiry worker shutting down (context cancelled)...")
				return
			case <-stopChan:
				log.Info("Expiry worker shutting down (stop requested)...")
				return
			case <-ticker.C:
			}
		}
	}()

	return func() {
		close(stopChan)
	}
}

// SweepOnce expires every negotiation older than the TTL and returns how many it closed.
// Challenges that moved on concurrently are skipped.
func (w *ExpiryWorker) SweepOnce(ctx context.Context) (int, error) {
	if w.config.NegotiationTTL <= 0 {
		return 0, nil
	}
	if w.recorder != nil {
		defer w.recorder.RecordExpirySweep()
	}

	cutoff := w.now().Add(-w.config.NegotiationTTL)
	batchSize := w.config.ExpiryBatchSize
	if batchSize <= 0 {
		batchSize = 100
	}

	expired := 0
	for {
		stale, err := w.challengeRepo.ListStaleNegotiations(ctx, cutoff, batchSize)
		if err != nil {
			return expired, fmt.Errorf("failed to list stale negotiations: %w", err)
		}
		if len(stale) == 0 {
			break
		}

		progressed := false
		for _, challenge := range stale {
			if ctx.Err() != nil {
				return expired, ctx.Err()
			}

			_, err := w.challengeService.ExpireChallenge(ctx, challenge.ID)
			switch {
			case err == nil:
				expired++
				progressed = true
			case errors.Is(err, entities.ErrAlreadySettled), errors.Is(err, entities.ErrInvalidTransition):
				// Someone acted on it between the scan and the write
				progressed = true
				log.WithField("challengeID", challenge.ID).Debug("Skipping challenge that moved on before expiry")
			default:
				log.WithFields(log.Fields{
					"challengeID": challenge.ID,
					"error":       err,
				}).Error("Failed to expire challenge")
			}
		}

		// A full batch that made no progress would be listed again forever
		if len(stale) < batchSize || !progressed {
			break
		}
	}

	if expired > 0 {
		log.WithFields(log.Fields{
			"expired": expired,
			"cutoff":  cutoff,
		}).Info("Expired stale negotiations")
	}
	return expired, nil
}

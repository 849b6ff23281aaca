package utils

import (
	"context"
	"fmt"

	"gambler/challenge-service/domain/entities"
	"gambler/challenge-service/domain/events"
	"gambler/challenge-service/domain/interfaces"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// RecordLedgerEntry appends a ledger entry and emits a balance change event.
// The ledger is best-effort: a failed write is logged and never returned, since the
// balance mutation it describes has already happened.
func RecordLedgerEntry(ctx context.Context, ledgerRepo interfaces.LedgerRepository, eventPublisher interfaces.EventPublisher, entry *entities.LedgerEntry) {
	if entry.Status == "" {
		entry.Status = entities.LedgerStatusCompleted
	}
	entry.Amount = entities.RoundMoney(entry.Amount)

	if err := ledgerRepo.Record(ctx, entry); err != nil {
		log.WithFields(log.Fields{
			"userID":          entry.UserID,
			"transactionType": entry.Type,
			"amount":          entry.Amount.StringFixed(entities.MoneyPlaces),
			"matchID":         entry.MatchID,
			"error":           err,
		}).Warn("Failed to record ledger entry")
	}

	// Failed attempts moved no money
	if entry.Status == entities.LedgerStatusFailed {
		return
	}

	event := events.BalanceChangeEvent{
		UserID:          entry.UserID,
		TransactionType: entry.Type,
		Amount:          entry.Amount,
		ChallengeID:     entry.MatchID,
	}
	log.WithFields(log.Fields{
		"userID":          event.UserID,
		"transactionType": event.TransactionType,
		"amount":          event.Amount.StringFixed(entities.MoneyPlaces),
	}).Debug("Publishing BalanceChangeEvent")
	if err := eventPublisher.Publish(event); err != nil {
		log.WithError(err).Error("Failed to publish balance change event")
	}
}

// NewChallengeLedgerEntry builds a ledger entry for a stake movement on a challenge
func NewChallengeLedgerEntry(userID uuid.UUID, txType entities.TransactionType, amount decimal.Decimal, challengeID uuid.UUID, description string) *entities.LedgerEntry {
	matchID := challengeID
	return &entities.LedgerEntry{
		UserID:      userID,
		Type:        txType,
		Amount:      amount,
		Description: description,
		MatchID:     &matchID,
		Status:      entities.LedgerStatusCompleted,
	}
}

// ShortID returns the first block of a uuid for human-readable descriptions
func ShortID(id uuid.UUID) string {
	return fmt.Sprintf("%.8s", id.String())
}

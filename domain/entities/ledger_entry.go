package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType represents the kind of money movement a ledger entry records
type TransactionType string

const (
	TransactionTypeDeposit    TransactionType = "deposit"
	TransactionTypeWithdrawal TransactionType = "withdrawal"
	TransactionTypeStake      TransactionType = "stake"
	TransactionTypePayout     TransactionType = "payout"
	TransactionTypeRefund     TransactionType = "refund"
)

// IsCredit returns true if the transaction adds to the balance
func (tt TransactionType) IsCredit() bool {
	return tt == TransactionTypeDeposit || tt == TransactionTypePayout || tt == TransactionTypeRefund
}

// LedgerStatus is the settlement state of a ledger entry
type LedgerStatus string

const (
	LedgerStatusCompleted LedgerStatus = "completed"
	LedgerStatusPending   LedgerStatus = "pending"
	LedgerStatusFailed    LedgerStatus = "failed"
)

// LedgerEntry is a human-readable record of a balance change
type LedgerEntry struct {
	ID          int64           `db:"id" json:"id"`
	UserID      uuid.UUID       `db:"user_id" json:"userId"`
	Type        TransactionType `db:"type" json:"type"`
	Amount      decimal.Decimal `db:"amount" json:"amount"`
	Description string          `db:"description" json:"description"`
	MatchID     *uuid.UUID      `db:"match_id" json:"matchId,omitempty"`
	ReferenceID *string         `db:"reference_id" json:"referenceId,omitempty"`
	Status      LedgerStatus    `db:"status" json:"status"`
	CreatedAt   time.Time       `db:"created_at" json:"createdAt"`
}

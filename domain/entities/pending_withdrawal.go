package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WithdrawalStatus is the processing state of a withdrawal request
type WithdrawalStatus string

const (
	WithdrawalStatusPending   WithdrawalStatus = "pending"
	WithdrawalStatusProcessed WithdrawalStatus = "processed"
	WithdrawalStatusRejected  WithdrawalStatus = "rejected"
)

// PendingWithdrawal is a withdrawal request waiting for payout
type PendingWithdrawal struct {
	ID            int64            `db:"id" json:"id"`
	UserID        uuid.UUID        `db:"user_id" json:"userId"`
	Amount        decimal.Decimal  `db:"amount" json:"amount"`
	PaymentMethod string           `db:"payment_method" json:"paymentMethod"`
	Status        WithdrawalStatus `db:"status" json:"status"`
	CreatedAt     time.Time        `db:"created_at" json:"createdAt"`
}

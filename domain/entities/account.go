package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Account holds a user's spendable balance and lifetime counters
type Account struct {
	ID                uuid.UUID       `db:"id" json:"id"`
	Username          string          `db:"username" json:"username"`
	Balance           decimal.Decimal `db:"balance" json:"balance"`
	PendingWithdrawal decimal.Decimal `db:"pending_withdrawal" json:"pendingWithdrawal"`
	LifetimeDeposits  decimal.Decimal `db:"lifetime_deposits" json:"lifetimeDeposits"`
	LifetimeWinnings  decimal.Decimal `db:"lifetime_winnings" json:"lifetimeWinnings"`
	CreatedAt         time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt         time.Time       `db:"updated_at" json:"updatedAt"`
}

// CanCover returns true if the spendable balance covers the amount
func (a *Account) CanCover(amount decimal.Decimal) bool {
	return a.Balance.GreaterThanOrEqual(amount)
}

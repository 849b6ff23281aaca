package entities

import "github.com/shopspring/decimal"

// Payout is the result of pricing a stake at a set of American odds
type Payout struct {
	Odds        int             `json:"odds"`
	Stake       decimal.Decimal `json:"stake"`
	Winnings    decimal.Decimal `json:"winnings"`
	TotalReturn decimal.Decimal `json:"totalReturn"`
}

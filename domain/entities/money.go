package entities

import "github.com/shopspring/decimal"

// MoneyPlaces is the currency precision used for every stored amount
const MoneyPlaces = 2

// RoundMoney rounds an amount to currency precision
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

// ParseMoney parses a decimal string and rounds it to currency precision
func ParseMoney(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	return RoundMoney(d), nil
}

// MustMoney parses a decimal string and panics on failure. Only use with constants.
func MustMoney(s string) decimal.Decimal {
	d, err := ParseMoney(s)
	if err != nil {
		panic(err)
	}
	return d
}

// MinStake is the smallest stake a challenge may carry
var MinStake = MustMoney("1.00")

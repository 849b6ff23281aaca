package services

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gambler/challenge-service/domain/entities"

	"github.com/shopspring/decimal"
)

// PickEmOdds is the price quoted when both players are rated equally
const PickEmOdds = 100

var hundred = decimal.NewFromInt(100)

// WinProbability returns the chance that a player rated a beats a player rated b
func WinProbability(a, b int) float64 {
	exponent := float64(b-a) / 400.0
	return 1.0 / (1.0 + math.Pow(10, exponent))
}

// ProbabilityToAmericanOdds converts a win probability into an American odds price.
// Favorites are priced at round(-100/(p-1)) clamped to at most -100, which always lands
// on -100. Underdogs get a positive price no shorter than +100, and an even match is +100.
func ProbabilityToAmericanOdds(p float64) int {
	switch {
	case p > 0.5:
		odds := int(math.Round(-100 / (p - 1)))
		if odds > -100 {
			odds = -100
		}
		return odds
	case p < 0.5:
		odds := int(math.Round((1 - p) * 100 / p))
		if odds < 100 {
			odds = 100
		}
		return odds
	default:
		return PickEmOdds
	}
}

// IsValidOdds returns true for any American price with a magnitude of at least 100
func IsValidOdds(odds int) bool {
	return odds >= 100 || odds <= -100
}

// ValidateOdds rejects prices inside (-100, 100) or beyond the configured magnitude
func ValidateOdds(odds, maxMagnitude int) error {
	if !IsValidOdds(odds) {
		return fmt.Errorf("%w: %d is between -100 and 100", entities.ErrInvalidOdds, odds)
	}
	if maxMagnitude > 0 && (odds > maxMagnitude || odds < -maxMagnitude) {
		return fmt.Errorf("%w: %d exceeds the %d limit", entities.ErrInvalidOdds, odds, maxMagnitude)
	}
	return nil
}

// ClampOdds bounds a price to the configured magnitude
func ClampOdds(odds, maxMagnitude int) int {
	if maxMagnitude <= 0 {
		return odds
	}
	if odds > maxMagnitude {
		return maxMagnitude
	}
	if odds < -maxMagnitude {
		return -maxMagnitude
	}
	return odds
}

// MirrorOdds returns the opposing side's price. A pick'em stays at +100.
func MirrorOdds(odds int) int {
	if odds == PickEmOdds || odds == -PickEmOdds {
		return PickEmOdds
	}
	return -odds
}

// QuoteOdds prices both sides of a matchup from their ratings
func QuoteOdds(challengerRating, challengedRating int) (challengerOdds, challengedOdds int) {
	challengerOdds = ProbabilityToAmericanOdds(WinProbability(challengerRating, challengedRating))
	return challengerOdds, MirrorOdds(challengerOdds)
}

// CalculatePayout returns what a winning stake returns at the given price
func CalculatePayout(odds int, stake decimal.Decimal) (*entities.Payout, error) {
	winnings, err := SettlementWinnings(stake, odds)
	if err != nil {
		return nil, err
	}
	stake = entities.RoundMoney(stake)
	return &entities.Payout{
		Odds:        odds,
		Stake:       stake,
		Winnings:    winnings,
		TotalReturn: stake.Add(winnings),
	}, nil
}

// SettlementWinnings computes winnings at the winner's own price, rounded to cents
func SettlementWinnings(stake decimal.Decimal, winnerOdds int) (decimal.Decimal, error) {
	if !IsValidOdds(winnerOdds) {
		return decimal.Zero, fmt.Errorf("%w: %d", entities.ErrInvalidOdds, winnerOdds)
	}
	if !stake.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: stake must be positive", entities.ErrInvalidAmount)
	}

	o := decimal.NewFromInt(int64(winnerOdds))
	if winnerOdds >= 100 {
		return entities.RoundMoney(stake.Mul(o).Div(hundred)), nil
	}
	return entities.RoundMoney(stake.Mul(hundred).Div(o.Abs())), nil
}

// FormatAmericanOdds renders a price with an explicit sign, e.g. "+150" or "-200"
func FormatAmericanOdds(odds int) string {
	if odds > 0 {
		return "+" + strconv.Itoa(odds)
	}
	return strconv.Itoa(odds)
}

// ParseAmericanOdds parses a price such as "+150", "150" or "-200"
func ParseAmericanOdds(s string) (int, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "+")
	odds, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a number", entities.ErrInvalidOdds, s)
	}
	if !IsValidOdds(odds) {
		return 0, fmt.Errorf("%w: %d is between -100 and 100", entities.ErrInvalidOdds, odds)
	}
	return odds, nil
}

package utils

import (
	"fmt"
	"strings"

	"gambler/challenge-service/domain/entities"

	"github.com/shopspring/decimal"
)

// FormatMoney formats an amount as dollars with thousands separators, e.g. $1,234.50
func FormatMoney(amount decimal.Decimal) string {
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Abs()
	}

	fixed := amount.StringFixed(entities.MoneyPlaces)
	whole, cents, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	return fmt.Sprintf("%s$%s.%s", sign, b.String(), cents)
}

// FormatGameType returns the display name of a game type
func FormatGameType(gameType entities.GameType) string {
	switch gameType {
	case entities.GameTypeFIFA:
		return "FIFA"
	case entities.GameTypeNBA2K:
		return "NBA 2K"
	case entities.GameTypeMadden:
		return "Madden"
	default:
		return string(gameType)
	}
}

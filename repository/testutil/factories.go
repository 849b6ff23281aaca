package testutil

import (
	"context"
	"fmt"
	"testing"

	"gambler/challenge-service/database"
	"gambler/challenge-service/domain/entities"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// CreateTestAccount inserts an account with the given balance and returns its ID
func CreateTestAccount(t *testing.T, db *database.DB, username string, balance string) uuid.UUID {
	t.Helper()

	var id uuid.UUID
	err := db.QueryRow(context.Background(),
		`INSERT INTO accounts (username, balance) VALUES ($1, $2) RETURNING id`,
		username, decimal.RequireFromString(balance),
	).Scan(&id)
	require.NoError(t, err)
	return id
}

// CreateTestAccountPair inserts two accounts with the same balance
func CreateTestAccountPair(t *testing.T, db *database.DB, balance string) (uuid.UUID, uuid.UUID) {
	t.Helper()
	suffix := uuid.NewString()[:8]
	return CreateTestAccount(t, db, fmt.Sprintf("challenger_%s", suffix), balance),
		CreateTestAccount(t, db, fmt.Sprintf("challenged_%s", suffix), balance)
}

// NewTestChallenge builds an unsaved negotiating challenge between two accounts
func NewTestChallenge(challengerID, challengedID uuid.UUID, stake string) *entities.Challenge {
	amount := entities.MustMoney(stake)
	return &entities.Challenge{
		ID:               uuid.New(),
		ChallengerID:     challengerID,
		ChallengedID:     challengedID,
		GameType:         entities.GameTypeFIFA,
		StakeAmount:      amount,
		ChallengerOdds:   100,
		Status:           entities.ChallengeStatusNegotiating,
		Turn:             entities.TurnAwaitingChallenged,
		ChallengerEscrow: amount,
	}
}

// Balance reads an account's balance straight from the table
func Balance(t *testing.T, db *database.DB, id uuid.UUID) decimal.Decimal {
	t.Helper()

	var balance decimal.Decimal
	err := db.QueryRow(context.Background(), `SELECT balance FROM accounts WHERE id = $1`, id).Scan(&balance)
	require.NoError(t, err)
	return balance
}

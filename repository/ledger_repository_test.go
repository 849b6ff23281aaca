package repository

import (
	"context"
	"testing"

	"gambler/challenge-service/domain/entities"
	"gambler/challenge-service/repository/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerRepository_RecordAndList(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewLedgerRepository(testDB.DB)
	ctx := context.Background()
	userID := testutil.CreateTestAccount(t, testDB.DB, "bookkeeper", "0")
	matchID := uuid.New()

	stake := &entities.LedgerEntry{
		UserID:      userID,
		Type:        entities.TransactionTypeStake,
		Amount:      entities.MustMoney("-20.00"),
		Description: "Stake escrowed",
		MatchID:     &matchID,
	}
	require.NoError(t, repo.Record(ctx, stake))
	assert.NotZero(t, stake.ID)
	assert.Equal(t, entities.LedgerStatusCompleted, stake.Status)

	ref := "wd_1"
	withdrawal := &entities.LedgerEntry{
		UserID:      userID,
		Type:        entities.TransactionTypeWithdrawal,
		Amount:      entities.MustMoney("-5.00"),
		ReferenceID: &ref,
		Status:      entities.LedgerStatusPending,
	}
	require.NoError(t, repo.Record(ctx, withdrawal))

	entries, err := repo.GetByUser(ctx, userID, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, withdrawal.ID, entries[0].ID)
	assert.Equal(t, entities.LedgerStatusPending, entries[0].Status)
	require.NotNil(t, entries[1].MatchID)
	assert.Equal(t, matchID, *entries[1].MatchID)

	limited, err := repo.GetByUser(ctx, userID, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	testDB.Reset(t)
	entries, err = repo.GetByUser(ctx, userID, 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWithdrawalRepository_CreateAndListPending(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewWithdrawalRepository(testDB.DB)
	ctx := context.Background()
	userID := testutil.CreateTestAccount(t, testDB.DB, "withdrawer", "100.00")

	withdrawal := &entities.PendingWithdrawal{
		UserID:        userID,
		Amount:        entities.MustMoney("40.00"),
		PaymentMethod: "bank",
		Status:        entities.WithdrawalStatusPending,
	}
	require.NoError(t, repo.Create(ctx, withdrawal))
	assert.NotZero(t, withdrawal.ID)

	pending, err := repo.GetPendingByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.True(t, pending[0].Amount.Equal(entities.MustMoney("40.00")))

	none, err := repo.GetPendingByUser(ctx, uuid.New())
	require.NoError(t, err)
	assert.Empty(t, none)
}

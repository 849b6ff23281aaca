package repository

import (
	"context"
	"sync"
	"testing"

	"gambler/challenge-service/domain/entities"
	"gambler/challenge-service/repository/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccountRepository_CreateAndGet(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewAccountRepository(testDB.DB)
	ctx := context.Background()

	t.Run("account not found", func(t *testing.T) {
		account, err := repo.GetByID(ctx, uuid.New())
		require.NoError(t, err)
		assert.Nil(t, account)

		account, err = repo.GetByUsername(ctx, "nobody")
		require.NoError(t, err)
		assert.Nil(t, account)
	})

	t.Run("create rounds the starting balance", func(t *testing.T) {
		created, err := repo.Create(ctx, "striker", entities.MustMoney("500.004"))
		require.NoError(t, err)
		assert.True(t, created.Balance.Equal(entities.MustMoney("500.00")))

		byName, err := repo.GetByUsername(ctx, "striker")
		require.NoError(t, err)
		require.NotNil(t, byName)
		assert.Equal(t, created.ID, byName.ID)
	})

	t.Run("duplicate username is rejected as input", func(t *testing.T) {
		_, err := repo.Create(ctx, "keeper", entities.MustMoney("10"))
		require.NoError(t, err)

		_, err = repo.Create(ctx, "keeper", entities.MustMoney("10"))
		assert.ErrorIs(t, err, entities.ErrInvalidInput)
	})
}

func TestAccountRepository_Debit(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewAccountRepository(testDB.DB)
	ctx := context.Background()
	id := testutil.CreateTestAccount(t, testDB.DB, "debtor", "50.00")

	require.NoError(t, repo.Debit(ctx, id, entities.MustMoney("20.00")))
	assert.True(t, testutil.Balance(t, testDB.DB, id).Equal(entities.MustMoney("30.00")))

	err := repo.Debit(ctx, id, entities.MustMoney("30.01"))
	assert.ErrorIs(t, err, entities.ErrInsufficientFunds)
	assert.True(t, testutil.Balance(t, testDB.DB, id).Equal(entities.MustMoney("30.00")))

	err = repo.Debit(ctx, uuid.New(), entities.MustMoney("1.00"))
	assert.ErrorIs(t, err, entities.ErrNotFound)
}

func TestAccountRepository_ConcurrentDebitsNeverOverdraw(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewAccountRepository(testDB.DB)
	ctx := context.Background()
	id := testutil.CreateTestAccount(t, testDB.DB, "contested", "100.00")

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := repo.Debit(ctx, id, entities.MustMoney("30.00")); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, succeeded)
	assert.True(t, testutil.Balance(t, testDB.DB, id).Equal(entities.MustMoney("10.00")))
}

func TestAccountRepository_CreditsAndWallet(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewAccountRepository(testDB.DB)
	ctx := context.Background()
	id := testutil.CreateTestAccount(t, testDB.DB, "earner", "10.00")

	require.NoError(t, repo.Credit(ctx, id, entities.MustMoney("5.00")))
	require.NoError(t, repo.CreditWinnings(ctx, id, entities.MustMoney("40.00"), entities.MustMoney("20.00")))

	account, err := repo.ApplyDeposit(ctx, id, entities.MustMoney("25.00"))
	require.NoError(t, err)
	assert.True(t, account.Balance.Equal(entities.MustMoney("80.00")))
	assert.True(t, account.LifetimeDeposits.Equal(entities.MustMoney("25.00")))
	assert.True(t, account.LifetimeWinnings.Equal(entities.MustMoney("20.00")))

	account, err = repo.ReserveWithdrawal(ctx, id, entities.MustMoney("30.00"))
	require.NoError(t, err)
	assert.True(t, account.Balance.Equal(entities.MustMoney("50.00")))
	assert.True(t, account.PendingWithdrawal.Equal(entities.MustMoney("30.00")))

	_, err = repo.ReserveWithdrawal(ctx, id, entities.MustMoney("50.01"))
	assert.ErrorIs(t, err, entities.ErrInsufficientFunds)

	assert.ErrorIs(t, repo.Credit(ctx, uuid.New(), entities.MustMoney("1")), entities.ErrNotFound)
	_, err = repo.ApplyDeposit(ctx, uuid.New(), entities.MustMoney("1"))
	assert.ErrorIs(t, err, entities.ErrNotFound)
}

package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"gambler/challenge-service/domain/entities"
	"gambler/challenge-service/domain/interfaces"
	"gambler/challenge-service/domain/testhelpers"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type walletTestFixture struct {
	ctx         context.Context
	accounts    *testhelpers.FakeAccountRepository
	ledger      *testhelpers.FakeLedgerRepository
	withdrawals *testhelpers.MockWithdrawalRepository
	payments    *testhelpers.MockPaymentProcessor
	events      *testhelpers.RecordingEventPublisher
	service     interfaces.WalletService
}

func newWalletTestFixture(t *testing.T) *walletTestFixture {
	SetupTestConfig(t)
	f := &walletTestFixture{
		ctx:         context.Background(),
		accounts:    testhelpers.NewFakeAccountRepository(),
		ledger:      &testhelpers.FakeLedgerRepository{},
		withdrawals: &testhelpers.MockWithdrawalRepository{},
		payments:    &testhelpers.MockPaymentProcessor{},
		events:      &testhelpers.RecordingEventPublisher{},
	}
	f.service = NewWalletService(f.accounts, f.withdrawals, f.ledger, f.events, f.payments)
	return f
}

func TestWalletService_RegisterAccount(t *testing.T) {
	f := newWalletTestFixture(t)

	account, err := f.service.RegisterAccount(f.ctx, "  ace_01 ")
	require.NoError(t, err)
	assert.Equal(t, "ace_01", account.Username)
	assert.True(t, account.Balance.Equal(entities.MustMoney("500.00")))

	require.Len(t, f.ledger.Entries, 1)
	assert.Equal(t, entities.TransactionTypeDeposit, f.ledger.Entries[0].Type)
	assert.Equal(t, "Starting balance", f.ledger.Entries[0].Description)

	_, err = f.service.RegisterAccount(f.ctx, "ace_01")
	assert.ErrorIs(t, err, entities.ErrInvalidInput)
}

func TestWalletService_RegisterAccount_InvalidUsernames(t *testing.T) {
	f := newWalletTestFixture(t)

	for _, username := range []string{"", "ab", strings.Repeat("x", 33), "has space", "semi;colon", "emoji🎮"} {
		t.Run(username, func(t *testing.T) {
			_, err := f.service.RegisterAccount(f.ctx, username)
			assert.ErrorIs(t, err, entities.ErrInvalidInput)
		})
	}
	assert.Empty(t, f.ledger.Entries)
}

func TestWalletService_Deposit(t *testing.T) {
	f := newWalletTestFixture(t)
	userID := f.accounts.Seed("player", "10.00")

	f.payments.On("Process", mock.Anything, userID, moneyArg("25.50"), "card").Return(true, nil).Once()

	account, err := f.service.Deposit(f.ctx, userID, entities.MustMoney("25.5"), "card")
	require.NoError(t, err)
	assert.True(t, account.Balance.Equal(entities.MustMoney("35.50")))
	assert.True(t, account.LifetimeDeposits.Equal(entities.MustMoney("25.50")))

	require.Len(t, f.ledger.Entries, 1)
	entry := f.ledger.Entries[0]
	assert.Equal(t, entities.LedgerStatusCompleted, entry.Status)
	require.NotNil(t, entry.ReferenceID)
	assert.True(t, strings.HasPrefix(*entry.ReferenceID, "dep_"))
	f.payments.AssertExpectations(t)
}

func TestWalletService_Deposit_Declined(t *testing.T) {
	f := newWalletTestFixture(t)
	userID := f.accounts.Seed("player", "10.00")

	f.payments.On("Process", mock.Anything, userID, mock.Anything, "card").Return(false, nil).Once()

	_, err := f.service.Deposit(f.ctx, userID, entities.MustMoney("25.00"), "card")
	assert.ErrorIs(t, err, entities.ErrPaymentDeclined)
	assert.True(t, f.accounts.Balance(userID).Equal(entities.MustMoney("10.00")))

	require.Len(t, f.ledger.Entries, 1)
	assert.Equal(t, entities.LedgerStatusFailed, f.ledger.Entries[0].Status)
	assert.Empty(t, f.events.Events)
}

func TestWalletService_Deposit_Validation(t *testing.T) {
	f := newWalletTestFixture(t)
	userID := f.accounts.Seed("player", "10.00")

	tests := []struct {
		name    string
		userID  uuid.UUID
		amount  string
		method  string
		wantErr error
	}{
		{"zero amount", userID, "0", "card", entities.ErrInvalidAmount},
		{"negative amount", userID, "-5", "card", entities.ErrInvalidAmount},
		{"above maximum", userID, "10000.01", "card", entities.ErrInvalidAmount},
		{"missing method", userID, "5", " ", entities.ErrInvalidInput},
		{"unknown account", uuid.New(), "5", "card", entities.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.service.Deposit(f.ctx, tt.userID, entities.MustMoney(tt.amount), tt.method)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
	f.payments.AssertNotCalled(t, "Process", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestWalletService_Deposit_ProcessorError(t *testing.T) {
	f := newWalletTestFixture(t)
	userID := f.accounts.Seed("player", "10.00")

	f.payments.On("Process", mock.Anything, userID, mock.Anything, "card").Return(false, context.DeadlineExceeded).Once()

	_, err := f.service.Deposit(f.ctx, userID, entities.MustMoney("25.00"), "card")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Empty(t, f.ledger.Entries)
}

func TestWalletService_Withdraw(t *testing.T) {
	f := newWalletTestFixture(t)
	userID := f.accounts.Seed("player", "100.00")

	f.withdrawals.On("Create", mock.Anything, mock.MatchedBy(func(w *entities.PendingWithdrawal) bool {
		return w.UserID == userID && w.Amount.Equal(entities.MustMoney("40.00")) && w.Status == entities.WithdrawalStatusPending
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*entities.PendingWithdrawal).ID = 7
	}).Return(nil).Once()

	withdrawal, err := f.service.Withdraw(f.ctx, userID, entities.MustMoney("40.00"), "bank")
	require.NoError(t, err)
	assert.Equal(t, int64(7), withdrawal.ID)

	account, err := f.service.GetAccount(f.ctx, userID)
	require.NoError(t, err)
	assert.True(t, account.Balance.Equal(entities.MustMoney("60.00")))
	assert.True(t, account.PendingWithdrawal.Equal(entities.MustMoney("40.00")))

	require.Len(t, f.ledger.Entries, 1)
	assert.Equal(t, entities.LedgerStatusPending, f.ledger.Entries[0].Status)
	assert.Equal(t, "wd_7", *f.ledger.Entries[0].ReferenceID)
	f.withdrawals.AssertExpectations(t)
}

func TestWalletService_Withdraw_Rejections(t *testing.T) {
	f := newWalletTestFixture(t)
	userID := f.accounts.Seed("player", "20.00")

	_, err := f.service.Withdraw(f.ctx, userID, entities.MustMoney("4.99"), "bank")
	assert.ErrorIs(t, err, entities.ErrInvalidAmount)

	_, err = f.service.Withdraw(f.ctx, userID, entities.MustMoney("20.01"), "bank")
	assert.ErrorIs(t, err, entities.ErrInsufficientFunds)

	_, err = f.service.Withdraw(f.ctx, userID, entities.MustMoney("10.00"), "")
	assert.ErrorIs(t, err, entities.ErrInvalidInput)

	assert.True(t, f.accounts.Balance(userID).Equal(entities.MustMoney("20.00")))
	f.withdrawals.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestWalletService_Withdraw_QueueFailure(t *testing.T) {
	f := newWalletTestFixture(t)
	userID := f.accounts.Seed("player", "50.00")

	f.withdrawals.On("Create", mock.Anything, mock.Anything).Return(errors.New("connection refused")).Once()

	_, err := f.service.Withdraw(f.ctx, userID, entities.MustMoney("10.00"), "bank")
	assert.ErrorIs(t, err, entities.ErrPersistenceFailure)
	assert.Empty(t, f.ledger.Entries)
}

func TestWalletService_GetLedger(t *testing.T) {
	SetupTestConfig(t)
	mocks := NewTestMocks()
	service := NewWalletService(mocks.AccountRepo, mocks.WithdrawalRepo, mocks.LedgerRepo, mocks.EventPublisher, mocks.PaymentProcessor)
	userID := uuid.New()

	mocks.LedgerRepo.On("GetByUser", mock.Anything, userID, defaultLedgerLimit).Return([]*entities.LedgerEntry{}, nil).Once()
	mocks.LedgerRepo.On("GetByUser", mock.Anything, userID, maxLedgerLimit).Return([]*entities.LedgerEntry{}, nil).Once()

	_, err := service.GetLedger(context.Background(), userID, 0)
	require.NoError(t, err)
	_, err = service.GetLedger(context.Background(), userID, 5000)
	require.NoError(t, err)

	mocks.LedgerRepo.On("GetByUser", mock.Anything, userID, 10).Return(nil, errors.New("timeout")).Once()
	_, err = service.GetLedger(context.Background(), userID, 10)
	assert.ErrorIs(t, err, entities.ErrPersistenceFailure)

	mocks.LedgerRepo.AssertExpectations(t)
}

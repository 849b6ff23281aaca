package application

import (
	"context"
	"errors"
	"testing"

	"gambler/challenge-service/domain/entities"
	"gambler/challenge-service/domain/events"
	"gambler/challenge-service/domain/testhelpers"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestWalletHandler_DepositCommitsAndFlushes(t *testing.T) {
	setupTestConfig(t, nil)
	factory := newFakeUnitOfWorkFactory()
	payments := &testhelpers.MockPaymentProcessor{}
	handler := NewWalletHandler(factory, payments)
	userID := factory.accounts.Seed("depositor", "10.00")

	payments.On("Process", mock.Anything, userID, mock.Anything, "card").Return(true, nil).Once()

	account, err := handler.Deposit(context.Background(), userID, entities.MustMoney("15.00"), "card")
	require.NoError(t, err)
	assert.True(t, account.Balance.Equal(entities.MustMoney("25.00")))

	assert.True(t, factory.lastUnit().committed)
	assert.Equal(t, []events.EventType{events.EventTypeBalanceChange}, factory.published.Types())
	payments.AssertExpectations(t)
}

func TestWalletHandler_PaymentRunsOutsideTransaction(t *testing.T) {
	setupTestConfig(t, nil)
	factory := newFakeUnitOfWorkFactory()
	payments := &testhelpers.MockPaymentProcessor{}
	handler := NewWalletHandler(factory, payments)
	userID := factory.accounts.Seed("patient", "10.00")

	payments.On("Process", mock.Anything, userID, mock.Anything, "card").Run(func(mock.Arguments) {
		assert.Zero(t, factory.openUnits(), "payment processed while a transaction was open")
	}).Return(true, nil).Once()

	_, err := handler.Deposit(context.Background(), userID, entities.MustMoney("15.00"), "card")
	require.NoError(t, err)
	payments.AssertExpectations(t)
}

func TestWalletHandler_DepositRejectedBeforePayment(t *testing.T) {
	setupTestConfig(t, nil)
	factory := newFakeUnitOfWorkFactory()
	payments := &testhelpers.MockPaymentProcessor{}
	handler := NewWalletHandler(factory, payments)

	_, err := handler.Deposit(context.Background(), uuid.New(), entities.MustMoney("15.00"), "card")
	assert.ErrorIs(t, err, entities.ErrNotFound)

	userID := factory.accounts.Seed("greedy", "10.00")
	_, err = handler.Deposit(context.Background(), userID, entities.MustMoney("10000.01"), "card")
	assert.ErrorIs(t, err, entities.ErrInvalidAmount)

	payments.AssertNotCalled(t, "Process", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestWalletHandler_PaymentErrorSkipsTransaction(t *testing.T) {
	setupTestConfig(t, nil)
	factory := newFakeUnitOfWorkFactory()
	payments := &testhelpers.MockPaymentProcessor{}
	handler := NewWalletHandler(factory, payments)
	userID := factory.accounts.Seed("timeout", "10.00")

	payments.On("Process", mock.Anything, userID, mock.Anything, "card").Return(false, context.DeadlineExceeded).Once()

	_, err := handler.Deposit(context.Background(), userID, entities.MustMoney("15.00"), "card")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Len(t, factory.units, 1)
	assert.True(t, factory.accounts.Balance(userID).Equal(entities.MustMoney("10.00")))
}

func TestWalletHandler_LedgerFailureKeepsDeposit(t *testing.T) {
	setupTestConfig(t, nil)
	factory := newFakeUnitOfWorkFactory()
	factory.ledger.FailRecord = errors.New("new row violates check constraint")
	payments := &testhelpers.MockPaymentProcessor{}
	handler := NewWalletHandler(factory, payments)
	userID := factory.accounts.Seed("unlogged", "10.00")

	payments.On("Process", mock.Anything, userID, mock.Anything, "card").Return(true, nil).Once()

	account, err := handler.Deposit(context.Background(), userID, entities.MustMoney("15.00"), "card")
	require.NoError(t, err)
	assert.True(t, account.Balance.Equal(entities.MustMoney("25.00")))
	assert.True(t, factory.lastUnit().committed)
	assert.Empty(t, factory.ledger.Entries)
}

func TestWalletHandler_DeclinedDepositKeepsLedgerEntry(t *testing.T) {
	setupTestConfig(t, nil)
	factory := newFakeUnitOfWorkFactory()
	payments := &testhelpers.MockPaymentProcessor{}
	handler := NewWalletHandler(factory, payments)
	userID := factory.accounts.Seed("declined", "10.00")

	payments.On("Process", mock.Anything, userID, mock.Anything, "card").Return(false, nil).Once()

	_, err := handler.Deposit(context.Background(), userID, entities.MustMoney("15.00"), "card")
	assert.ErrorIs(t, err, entities.ErrPaymentDeclined)
	assert.True(t, factory.lastUnit().committed)
	require.Len(t, factory.ledger.Entries, 1)
	assert.Equal(t, entities.LedgerStatusFailed, factory.ledger.Entries[0].Status)
}

func TestWalletHandler_FailureRollsBack(t *testing.T) {
	setupTestConfig(t, nil)
	factory := newFakeUnitOfWorkFactory()
	handler := NewWalletHandler(factory, &testhelpers.MockPaymentProcessor{})
	userID := factory.accounts.Seed("withdrawer", "50.00")

	factory.withdrawals.On("Create", mock.Anything, mock.Anything).Return(errors.New("connection reset")).Once()

	_, err := handler.Withdraw(context.Background(), userID, entities.MustMoney("20.00"), "bank")
	assert.ErrorIs(t, err, entities.ErrPersistenceFailure)
	assert.False(t, factory.units[0].committed)
	assert.Empty(t, factory.published.Events)
}

func TestWalletHandler_BeginFailure(t *testing.T) {
	setupTestConfig(t, nil)
	factory := newFakeUnitOfWorkFactory()
	factory.BeginErr = errors.New("pool exhausted")
	handler := NewWalletHandler(factory, &testhelpers.MockPaymentProcessor{})

	_, err := handler.RegisterAccount(context.Background(), "newcomer")
	assert.ErrorIs(t, err, entities.ErrPersistenceFailure)
}

func TestWalletHandler_RegisterAndRead(t *testing.T) {
	setupTestConfig(t, nil)
	factory := newFakeUnitOfWorkFactory()
	handler := NewWalletHandler(factory, &testhelpers.MockPaymentProcessor{})
	ctx := context.Background()

	account, err := handler.RegisterAccount(ctx, "rookie")
	require.NoError(t, err)

	fetched, err := handler.GetAccount(ctx, account.ID)
	require.NoError(t, err)
	assert.Equal(t, "rookie", fetched.Username)

	entries, err := handler.GetLedger(ctx, account.ID, 10)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

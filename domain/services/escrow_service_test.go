package services

import (
	"context"
	"errors"
	"testing"

	"gambler/challenge-service/domain/entities"
	"gambler/challenge-service/domain/interfaces"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newEscrowUnderTest(t *testing.T) (interfaces.EscrowService, *TestMocks, *MockHelper) {
	SetupTestConfig(t)
	mocks := NewTestMocks()
	helper := NewMockHelper(mocks)
	helper.ExpectLedgerEntries()
	return NewEscrowService(mocks.AccountRepo, mocks.LedgerRepo, mocks.EventPublisher), mocks, helper
}

func TestEscrowService_HoldChallengerStake(t *testing.T) {
	escrow, mocks, helper := newEscrowUnderTest(t)
	challenge := NewTestChallenge("25.00", 100)
	challenge.ChallengerEscrow = entities.MustMoney("0")

	helper.ExpectDebit(challenge.ChallengerID, "25.00", nil)

	err := escrow.HoldChallengerStake(context.Background(), challenge)
	require.NoError(t, err)
	assert.True(t, challenge.ChallengerEscrow.Equal(entities.MustMoney("25.00")))
	mocks.AccountRepo.AssertExpectations(t)
}

func TestEscrowService_HoldChallengerStake_InsufficientFunds(t *testing.T) {
	escrow, mocks, helper := newEscrowUnderTest(t)
	challenge := NewTestChallenge("25.00", 100)
	challenge.ChallengerEscrow = entities.MustMoney("0")

	helper.ExpectDebit(challenge.ChallengerID, "25.00", entities.ErrInsufficientFunds)

	err := escrow.HoldChallengerStake(context.Background(), challenge)
	assert.ErrorIs(t, err, entities.ErrInsufficientFunds)
	assert.False(t, errors.Is(err, entities.ErrPersistenceFailure))
	assert.True(t, challenge.ChallengerEscrow.IsZero())
	mocks.AccountRepo.AssertExpectations(t)
}

func TestEscrowService_CollectAcceptanceStakes(t *testing.T) {
	t.Run("no counter-offer only debits the challenged party", func(t *testing.T) {
		escrow, mocks, helper := newEscrowUnderTest(t)
		challenge := NewTestChallenge("50.00", 100)

		helper.ExpectDebit(challenge.ChallengedID, "50.00", nil).Once()

		receipt, err := escrow.CollectAcceptanceStakes(context.Background(), challenge)
		require.NoError(t, err)
		assert.True(t, receipt.ChallengerTopUp.IsZero())
		assert.True(t, receipt.ChallengerExcess.IsZero())
		assert.True(t, receipt.ChallengedDebit.Equal(entities.MustMoney("50.00")))
		mocks.AccountRepo.AssertExpectations(t)
		mocks.AccountRepo.AssertNumberOfCalls(t, "Debit", 1)
	})

	t.Run("raised stake tops up the challenger first", func(t *testing.T) {
		escrow, mocks, helper := newEscrowUnderTest(t)
		challenge := NewTestChallenge("80.00", 100)
		challenge.ChallengerEscrow = entities.MustMoney("50.00")

		var order []string
		helper.ExpectDebit(challenge.ChallengerID, "30.00", nil).Run(func(mock.Arguments) { order = append(order, "challenger") })
		helper.ExpectDebit(challenge.ChallengedID, "80.00", nil).Run(func(mock.Arguments) { order = append(order, "challenged") })

		receipt, err := escrow.CollectAcceptanceStakes(context.Background(), challenge)
		require.NoError(t, err)
		assert.Equal(t, []string{"challenger", "challenged"}, order)
		assert.True(t, receipt.ChallengerTopUp.Equal(entities.MustMoney("30.00")))
		mocks.AccountRepo.AssertExpectations(t)
	})

	t.Run("lowered stake records the excess without moving it", func(t *testing.T) {
		escrow, mocks, helper := newEscrowUnderTest(t)
		challenge := NewTestChallenge("30.00", 100)
		challenge.ChallengerEscrow = entities.MustMoney("50.00")

		helper.ExpectDebit(challenge.ChallengedID, "30.00", nil)

		receipt, err := escrow.CollectAcceptanceStakes(context.Background(), challenge)
		require.NoError(t, err)
		assert.True(t, receipt.ChallengerExcess.Equal(entities.MustMoney("20.00")))
		mocks.AccountRepo.AssertNotCalled(t, "Credit", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("challenged debit failure reverses the top-up", func(t *testing.T) {
		escrow, mocks, helper := newEscrowUnderTest(t)
		challenge := NewTestChallenge("80.00", 100)
		challenge.ChallengerEscrow = entities.MustMoney("50.00")

		helper.ExpectDebit(challenge.ChallengerID, "30.00", nil)
		helper.ExpectDebit(challenge.ChallengedID, "80.00", entities.ErrInsufficientFunds)
		helper.ExpectCredit(challenge.ChallengerID, "30.00", nil)

		receipt, err := escrow.CollectAcceptanceStakes(context.Background(), challenge)
		assert.Nil(t, receipt)
		assert.ErrorIs(t, err, entities.ErrInsufficientFunds)
		assert.False(t, errors.Is(err, entities.ErrCompensationFailure))
		mocks.AccountRepo.AssertExpectations(t)
	})

	t.Run("failed reversal is a compensation failure", func(t *testing.T) {
		escrow, mocks, helper := newEscrowUnderTest(t)
		challenge := NewTestChallenge("80.00", 100)
		challenge.ChallengerEscrow = entities.MustMoney("50.00")

		helper.ExpectDebit(challenge.ChallengerID, "30.00", nil)
		helper.ExpectDebit(challenge.ChallengedID, "80.00", entities.ErrInsufficientFunds)
		helper.ExpectCredit(challenge.ChallengerID, "30.00", errors.New("connection reset"))

		_, err := escrow.CollectAcceptanceStakes(context.Background(), challenge)
		assert.ErrorIs(t, err, entities.ErrInsufficientFunds)
		assert.ErrorIs(t, err, entities.ErrCompensationFailure)
		mocks.AccountRepo.AssertExpectations(t)
	})

	t.Run("challenger cannot cover the top-up", func(t *testing.T) {
		escrow, mocks, helper := newEscrowUnderTest(t)
		challenge := NewTestChallenge("80.00", 100)
		challenge.ChallengerEscrow = entities.MustMoney("50.00")

		helper.ExpectDebit(challenge.ChallengerID, "30.00", entities.ErrInsufficientFunds)

		_, err := escrow.CollectAcceptanceStakes(context.Background(), challenge)
		assert.ErrorIs(t, err, entities.ErrInsufficientFunds)
		mocks.AccountRepo.AssertNumberOfCalls(t, "Debit", 1)
	})
}

func TestEscrowService_ReverseAcceptanceStakes(t *testing.T) {
	t.Run("reverses in the opposite order", func(t *testing.T) {
		escrow, mocks, helper := newEscrowUnderTest(t)
		challenge := NewTestChallenge("80.00", 100)
		receipt := &interfaces.EscrowReceipt{
			ChallengerTopUp:  entities.MustMoney("30.00"),
			ChallengerExcess: entities.MustMoney("0"),
			ChallengedDebit:  entities.MustMoney("80.00"),
		}

		var order []string
		helper.ExpectCredit(challenge.ChallengedID, "80.00", nil).Run(func(mock.Arguments) { order = append(order, "challenged") })
		helper.ExpectCredit(challenge.ChallengerID, "30.00", nil).Run(func(mock.Arguments) { order = append(order, "challenger") })

		require.NoError(t, escrow.ReverseAcceptanceStakes(context.Background(), challenge, receipt))
		assert.Equal(t, []string{"challenged", "challenger"}, order)
		mocks.AccountRepo.AssertExpectations(t)
	})

	t.Run("keeps going after one reversal fails", func(t *testing.T) {
		escrow, mocks, helper := newEscrowUnderTest(t)
		challenge := NewTestChallenge("80.00", 100)
		receipt := &interfaces.EscrowReceipt{
			ChallengerTopUp:  entities.MustMoney("30.00"),
			ChallengerExcess: entities.MustMoney("0"),
			ChallengedDebit:  entities.MustMoney("80.00"),
		}

		helper.ExpectCredit(challenge.ChallengedID, "80.00", errors.New("timeout"))
		helper.ExpectCredit(challenge.ChallengerID, "30.00", nil)

		err := escrow.ReverseAcceptanceStakes(context.Background(), challenge, receipt)
		assert.ErrorIs(t, err, entities.ErrCompensationFailure)
		mocks.AccountRepo.AssertExpectations(t)
	})
}

func TestEscrowService_PayWinner(t *testing.T) {
	t.Run("pays at the winner's own odds", func(t *testing.T) {
		escrow, mocks, _ := newEscrowUnderTest(t)
		challenge := NewTestChallenge("20.00", -200)
		challengedOdds := 150
		challenge.ChallengedOdds = &challengedOdds

		mocks.AccountRepo.On("CreditWinnings", mock.Anything, challenge.ChallengedID,
			moneyArg("50.00"), moneyArg("30.00")).Return(nil)

		payout, err := escrow.PayWinner(context.Background(), challenge, challenge.ChallengedID)
		require.NoError(t, err)
		assert.Equal(t, 150, payout.Odds)
		assert.True(t, payout.TotalReturn.Equal(entities.MustMoney("50.00")))
		mocks.AccountRepo.AssertExpectations(t)
	})

	t.Run("favorite challenger wins less", func(t *testing.T) {
		escrow, mocks, _ := newEscrowUnderTest(t)
		challenge := NewTestChallenge("20.00", -200)
		challengedOdds := 150
		challenge.ChallengedOdds = &challengedOdds

		mocks.AccountRepo.On("CreditWinnings", mock.Anything, challenge.ChallengerID,
			moneyArg("30.00"), moneyArg("10.00")).Return(nil)

		payout, err := escrow.PayWinner(context.Background(), challenge, challenge.ChallengerID)
		require.NoError(t, err)
		assert.True(t, payout.Winnings.Equal(entities.MustMoney("10.00")))
		mocks.AccountRepo.AssertExpectations(t)
	})

	t.Run("credit failure is a persistence failure", func(t *testing.T) {
		escrow, mocks, _ := newEscrowUnderTest(t)
		challenge := NewTestChallenge("20.00", 100)

		mocks.AccountRepo.On("CreditWinnings", mock.Anything, challenge.ChallengerID, mock.Anything, mock.Anything).
			Return(errors.New("connection refused"))

		payout, err := escrow.PayWinner(context.Background(), challenge, challenge.ChallengerID)
		assert.Nil(t, payout)
		assert.ErrorIs(t, err, entities.ErrPersistenceFailure)
	})
}

func TestEscrowService_RefundBoth(t *testing.T) {
	escrow, mocks, helper := newEscrowUnderTest(t)
	challenge := NewTestChallenge("30.00", 100)

	var order []string
	helper.ExpectCredit(challenge.ChallengerID, "30.00", nil).Run(func(mock.Arguments) { order = append(order, "challenger") })
	helper.ExpectCredit(challenge.ChallengedID, "30.00", nil).Run(func(mock.Arguments) { order = append(order, "challenged") })

	require.NoError(t, escrow.RefundBoth(context.Background(), challenge))
	assert.Equal(t, []string{"challenger", "challenged"}, order)
	mocks.AccountRepo.AssertExpectations(t)
}

func TestEscrowService_RefundExcess(t *testing.T) {
	escrow, mocks, helper := newEscrowUnderTest(t)
	challenge := NewTestChallenge("30.00", 100)
	receipt := &interfaces.EscrowReceipt{ChallengerExcess: entities.MustMoney("20.00")}

	helper.ExpectCredit(challenge.ChallengerID, "20.00", errors.New("timeout"))

	err := escrow.RefundExcess(context.Background(), challenge, receipt)
	assert.ErrorIs(t, err, entities.ErrPersistenceFailure)
	mocks.AccountRepo.AssertExpectations(t)
}

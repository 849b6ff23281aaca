package services

import (
	"context"
	"testing"

	"gambler/challenge-service/config"
	"gambler/challenge-service/domain/entities"
	"gambler/challenge-service/domain/events"
	"gambler/challenge-service/domain/testhelpers"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// TestMocks aggregates all repository mocks for testing
type TestMocks struct {
	AccountRepo      *testhelpers.MockAccountRepository
	ChallengeRepo    *testhelpers.MockChallengeRepository
	RatingRepo       *testhelpers.MockRatingRepository
	LedgerRepo       *testhelpers.MockLedgerRepository
	WithdrawalRepo   *testhelpers.MockWithdrawalRepository
	EventPublisher   *testhelpers.MockEventPublisher
	PaymentProcessor *testhelpers.MockPaymentProcessor
}

// NewTestMocks creates a new set of mocks
func NewTestMocks() *TestMocks {
	return &TestMocks{
		AccountRepo:      &testhelpers.MockAccountRepository{},
		ChallengeRepo:    &testhelpers.MockChallengeRepository{},
		RatingRepo:       &testhelpers.MockRatingRepository{},
		LedgerRepo:       &testhelpers.MockLedgerRepository{},
		WithdrawalRepo:   &testhelpers.MockWithdrawalRepository{},
		EventPublisher:   &testhelpers.MockEventPublisher{},
		PaymentProcessor: &testhelpers.MockPaymentProcessor{},
	}
}

// AssertAllExpectations verifies all mock expectations were met
func (m *TestMocks) AssertAllExpectations(t *testing.T) {
	m.AccountRepo.AssertExpectations(t)
	m.ChallengeRepo.AssertExpectations(t)
	m.RatingRepo.AssertExpectations(t)
	m.LedgerRepo.AssertExpectations(t)
	m.WithdrawalRepo.AssertExpectations(t)
	m.EventPublisher.AssertExpectations(t)
	m.PaymentProcessor.AssertExpectations(t)
}

// MockHelper provides common mock setup patterns
type MockHelper struct {
	mocks *TestMocks
	ctx   context.Context
}

// NewMockHelper creates a new mock helper
func NewMockHelper(mocks *TestMocks) *MockHelper {
	return &MockHelper{
		mocks: mocks,
		ctx:   context.Background(),
	}
}

// ExpectChallengeLookup sets up challenge repository mock expectations
func (h *MockHelper) ExpectChallengeLookup(challenge *entities.Challenge) {
	h.mocks.ChallengeRepo.On("GetByID", mock.Anything, challenge.ID).Return(challenge, nil)
}

// ExpectChallengeNotFound sets up challenge repository mock to return not found
func (h *MockHelper) ExpectChallengeNotFound(challengeID uuid.UUID) {
	h.mocks.ChallengeRepo.On("GetByID", mock.Anything, challengeID).Return(nil, nil)
}

// ExpectGuardedWrite sets up a guarded update that moves the challenge to the given status
func (h *MockHelper) ExpectGuardedWrite(expected, next entities.ChallengeStatus, ok bool) *mock.Call {
	return h.mocks.ChallengeRepo.On("UpdateIfStatus", mock.Anything, mock.MatchedBy(func(c *entities.Challenge) bool {
		return c.Status == next
	}), expected).Return(ok, nil)
}

// ExpectDebit sets up account repository mock to debit an amount
func (h *MockHelper) ExpectDebit(userID uuid.UUID, amount string, err error) *mock.Call {
	return h.mocks.AccountRepo.On("Debit", mock.Anything, userID, moneyArg(amount)).Return(err)
}

// ExpectCredit sets up account repository mock to credit an amount
func (h *MockHelper) ExpectCredit(userID uuid.UUID, amount string, err error) *mock.Call {
	return h.mocks.AccountRepo.On("Credit", mock.Anything, userID, moneyArg(amount)).Return(err)
}

// ExpectLedgerEntries accepts any ledger writes and their balance events
func (h *MockHelper) ExpectLedgerEntries() {
	h.mocks.LedgerRepo.On("Record", mock.Anything, mock.Anything).Return(nil).Maybe()
	h.ExpectEventPublish(events.EventTypeBalanceChange).Maybe()
}

// ExpectEventPublish sets up event publisher mock expectations
func (h *MockHelper) ExpectEventPublish(eventType events.EventType) *mock.Call {
	return h.mocks.EventPublisher.On("Publish", mock.MatchedBy(func(e events.Event) bool {
		return e.Type() == eventType
	})).Return(nil)
}

// moneyArg matches a decimal argument by value rather than representation
func moneyArg(amount string) interface{} {
	want := entities.MustMoney(amount)
	return mock.MatchedBy(func(d decimal.Decimal) bool {
		return d.Equal(want)
	})
}

// SetupTestConfig installs the default test configuration
func SetupTestConfig(t *testing.T) {
	config.SetTestConfig(config.NewTestConfig())
	t.Cleanup(config.ResetConfig)
}

// NewTestChallenge returns a negotiating challenge between two fresh users
func NewTestChallenge(stake string, challengerOdds int) *entities.Challenge {
	return &entities.Challenge{
		ID:               uuid.New(),
		ChallengerID:     uuid.New(),
		ChallengedID:     uuid.New(),
		GameType:         entities.GameTypeFIFA,
		StakeAmount:      entities.MustMoney(stake),
		ChallengerOdds:   challengerOdds,
		Status:           entities.ChallengeStatusNegotiating,
		Turn:             entities.TurnAwaitingChallenged,
		ChallengerEscrow: entities.MustMoney(stake),
		Version:          1,
	}
}

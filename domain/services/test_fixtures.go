package services

import (
	"context"
	"testing"

	"gambler/challenge-service/domain/entities"
	"gambler/challenge-service/domain/interfaces"
	"gambler/challenge-service/domain/testhelpers"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// LifecycleTestFixture wires the real challenge lifecycle services over in-memory stores
type LifecycleTestFixture struct {
	T   *testing.T
	Ctx context.Context

	Accounts   *testhelpers.FakeAccountRepository
	Challenges *testhelpers.FakeChallengeRepository
	Ratings    *testhelpers.FakeRatingRepository
	Ledger     *testhelpers.FakeLedgerRepository
	Events     *testhelpers.RecordingEventPublisher

	Escrow        interfaces.EscrowService
	RatingService interfaces.RatingService
	Challenge     interfaces.ChallengeService
	Result        interfaces.ResultService
}

// NewLifecycleTestFixture creates a new fixture with test config installed
func NewLifecycleTestFixture(t *testing.T) *LifecycleTestFixture {
	SetupTestConfig(t)

	f := &LifecycleTestFixture{
		T:          t,
		Ctx:        context.Background(),
		Accounts:   testhelpers.NewFakeAccountRepository(),
		Challenges: testhelpers.NewFakeChallengeRepository(),
		Ratings:    testhelpers.NewFakeRatingRepository(),
		Ledger:     &testhelpers.FakeLedgerRepository{},
		Events:     &testhelpers.RecordingEventPublisher{},
	}
	f.Escrow = NewEscrowService(f.Accounts, f.Ledger, f.Events)
	f.RatingService = NewRatingService(f.Ratings, f.Events)
	f.Challenge = NewChallengeService(f.Challenges, f.Accounts, f.Escrow, f.RatingService, f.Events)
	f.Result = NewResultService(f.Challenges, f.Escrow, f.RatingService, f.Events)
	return f
}

// NewPlayers seeds two accounts with the given balances
func (f *LifecycleTestFixture) NewPlayers(challengerBalance, challengedBalance string) (uuid.UUID, uuid.UUID) {
	return f.Accounts.Seed("challenger", challengerBalance), f.Accounts.Seed("challenged", challengedBalance)
}

// CreateChallenge opens a challenge and fails the test on error
func (f *LifecycleTestFixture) CreateChallenge(challengerID, challengedID uuid.UUID, stake string, odds int) *entities.Challenge {
	challenge, err := f.Challenge.CreateChallenge(f.Ctx, interfaces.CreateChallengeParams{
		ChallengerID: challengerID,
		ChallengedID: challengedID,
		GameType:     entities.GameTypeFIFA,
		Stake:        entities.MustMoney(stake),
		Odds:         odds,
	})
	require.NoError(f.T, err)
	return challenge
}

// AcceptedChallenge creates and accepts a challenge
func (f *LifecycleTestFixture) AcceptedChallenge(challengerID, challengedID uuid.UUID, stake string, odds int) *entities.Challenge {
	challenge := f.CreateChallenge(challengerID, challengedID, stake, odds)
	accepted, err := f.Challenge.AcceptChallenge(f.Ctx, challenge.ID, challengedID)
	require.NoError(f.T, err)
	return accepted
}

// Stored returns the persisted state of a challenge
func (f *LifecycleTestFixture) Stored(challengeID uuid.UUID) *entities.Challenge {
	challenge, err := f.Challenges.GetByID(f.Ctx, challengeID)
	require.NoError(f.T, err)
	require.NotNil(f.T, challenge)
	return challenge
}

// RequireBalance asserts an account's balance
func (f *LifecycleTestFixture) RequireBalance(userID uuid.UUID, expected string) {
	got := f.Accounts.Balance(userID)
	require.True(f.T, got.Equal(entities.MustMoney(expected)), "expected balance %s, got %s", expected, got)
}

// TotalBalance sums the balances of the given accounts
func (f *LifecycleTestFixture) TotalBalance(ids ...uuid.UUID) decimal.Decimal {
	total := decimal.Zero
	for _, id := range ids {
		total = total.Add(f.Accounts.Balance(id))
	}
	return total
}

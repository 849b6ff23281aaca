package testhelpers

import (
	"context"

	"gambler/challenge-service/domain/entities"
	"gambler/challenge-service/domain/interfaces"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockChallengeService is a mock implementation of ChallengeService
type MockChallengeService struct {
	mock.Mock
}

func (m *MockChallengeService) challenge(args mock.Arguments) (*entities.Challenge, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Challenge), args.Error(1)
}

func (m *MockChallengeService) CreateChallenge(ctx context.Context, params interfaces.CreateChallengeParams) (*entities.Challenge, error) {
	return m.challenge(m.Called(ctx, params))
}

func (m *MockChallengeService) CounterOffer(ctx context.Context, challengeID, actorID uuid.UUID, stake decimal.Decimal, odds int) (*entities.Challenge, error) {
	return m.challenge(m.Called(ctx, challengeID, actorID, stake, odds))
}

func (m *MockChallengeService) AcceptChallenge(ctx context.Context, challengeID, actorID uuid.UUID) (*entities.Challenge, error) {
	return m.challenge(m.Called(ctx, challengeID, actorID))
}

func (m *MockChallengeService) DeclineChallenge(ctx context.Context, challengeID, actorID uuid.UUID) (*entities.Challenge, error) {
	return m.challenge(m.Called(ctx, challengeID, actorID))
}

func (m *MockChallengeService) ExpireChallenge(ctx context.Context, challengeID uuid.UUID) (*entities.Challenge, error) {
	return m.challenge(m.Called(ctx, challengeID))
}

func (m *MockChallengeService) GetChallenge(ctx context.Context, challengeID uuid.UUID) (*entities.Challenge, error) {
	return m.challenge(m.Called(ctx, challengeID))
}

func (m *MockChallengeService) ListForUser(ctx context.Context, userID uuid.UUID) ([]*entities.Challenge, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Challenge), args.Error(1)
}

func (m *MockChallengeService) QuoteOdds(ctx context.Context, challengerID, challengedID uuid.UUID, gameType entities.GameType) (*interfaces.OddsQuote, error) {
	args := m.Called(ctx, challengerID, challengedID, gameType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*interfaces.OddsQuote), args.Error(1)
}

// MockResultService is a mock implementation of ResultService
type MockResultService struct {
	mock.Mock
}

func (m *MockResultService) ReportResult(ctx context.Context, challengeID, reporterID, winnerID uuid.UUID) (*interfaces.ReportOutcome, error) {
	args := m.Called(ctx, challengeID, reporterID, winnerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*interfaces.ReportOutcome), args.Error(1)
}

func (m *MockResultService) SettleChallenge(ctx context.Context, challengeID uuid.UUID) (*interfaces.ReportOutcome, error) {
	args := m.Called(ctx, challengeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*interfaces.ReportOutcome), args.Error(1)
}

// MockRatingService is a mock implementation of RatingService
type MockRatingService struct {
	mock.Mock
}

func (m *MockRatingService) ApplyMatchResult(ctx context.Context, challengeID uuid.UUID, gameType entities.GameType, winnerID, loserID uuid.UUID) (*entities.MatchRatingUpdate, error) {
	args := m.Called(ctx, challengeID, gameType, winnerID, loserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.MatchRatingUpdate), args.Error(1)
}

func (m *MockRatingService) GetRating(ctx context.Context, userID uuid.UUID, gameType entities.GameType) (*entities.RatingRecord, error) {
	args := m.Called(ctx, userID, gameType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.RatingRecord), args.Error(1)
}

func (m *MockRatingService) GetLeaderboard(ctx context.Context, gameType entities.GameType, limit int) ([]*entities.RatingRecord, error) {
	args := m.Called(ctx, gameType, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.RatingRecord), args.Error(1)
}

// MockWalletService is a mock implementation of WalletService
type MockWalletService struct {
	mock.Mock
}

func (m *MockWalletService) account(args mock.Arguments) (*entities.Account, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Account), args.Error(1)
}

func (m *MockWalletService) RegisterAccount(ctx context.Context, username string) (*entities.Account, error) {
	return m.account(m.Called(ctx, username))
}

func (m *MockWalletService) GetAccount(ctx context.Context, userID uuid.UUID) (*entities.Account, error) {
	return m.account(m.Called(ctx, userID))
}

func (m *MockWalletService) Deposit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, method string) (*entities.Account, error) {
	return m.account(m.Called(ctx, userID, amount, method))
}

func (m *MockWalletService) Withdraw(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, method string) (*entities.PendingWithdrawal, error) {
	args := m.Called(ctx, userID, amount, method)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.PendingWithdrawal), args.Error(1)
}

func (m *MockWalletService) GetLedger(ctx context.Context, userID uuid.UUID, limit int) ([]*entities.LedgerEntry, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.LedgerEntry), args.Error(1)
}

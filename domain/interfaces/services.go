package interfaces

import (
	"context"

	"gambler/challenge-service/domain/entities"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateChallengeParams holds the inputs for a new challenge.
// A zero Odds asks the service to quote odds from current ratings.
type CreateChallengeParams struct {
	ChallengerID uuid.UUID
	ChallengedID uuid.UUID
	GameType     entities.GameType
	Stake        decimal.Decimal
	Odds         int
}

// OddsQuote is a rating-derived price for both sides of a potential challenge
type OddsQuote struct {
	GameType          entities.GameType `json:"gameType"`
	ChallengerRating  int               `json:"challengerRating"`
	ChallengedRating  int               `json:"challengedRating"`
	ChallengerWinProb float64           `json:"challengerWinProbability"`
	ChallengerOdds    int               `json:"challengerOdds"`
	ChallengedOdds    int               `json:"challengedOdds"`
}

// ChallengeService defines the negotiation side of the challenge lifecycle
type ChallengeService interface {
	// CreateChallenge escrows the challenger's stake and opens the negotiation
	CreateChallenge(ctx context.Context, params CreateChallengeParams) (*entities.Challenge, error)

	// CounterOffer re-prices the challenge and hands the turn to the other party
	CounterOffer(ctx context.Context, challengeID, actorID uuid.UUID, stake decimal.Decimal, odds int) (*entities.Challenge, error)

	// AcceptChallenge collects the remaining stakes and locks the challenge
	AcceptChallenge(ctx context.Context, challengeID, actorID uuid.UUID) (*entities.Challenge, error)

	// DeclineChallenge closes the negotiation and refunds the challenger
	DeclineChallenge(ctx context.Context, challengeID, actorID uuid.UUID) (*entities.Challenge, error)

	// ExpireChallenge declines a stale negotiation on behalf of the system
	ExpireChallenge(ctx context.Context, challengeID uuid.UUID) (*entities.Challenge, error)

	// GetChallenge retrieves a challenge by ID
	GetChallenge(ctx context.Context, challengeID uuid.UUID) (*entities.Challenge, error)

	// ListForUser returns every challenge the user is party to
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*entities.Challenge, error)

	// QuoteOdds prices a potential challenge from both players' ratings
	QuoteOdds(ctx context.Context, challengerID, challengedID uuid.UUID, gameType entities.GameType) (*OddsQuote, error)
}

// EscrowReceipt records what was collected at acceptance so it can be reversed
type EscrowReceipt struct {
	ChallengerTopUp  decimal.Decimal
	ChallengerExcess decimal.Decimal
	ChallengedDebit  decimal.Decimal
}

// EscrowService defines stake custody for the challenge lifecycle
type EscrowService interface {
	// HoldChallengerStake debits the challenger's stake when a challenge is created
	// and records it as the challenger's escrow
	HoldChallengerStake(ctx context.Context, challenge *entities.Challenge) error

	// ReleaseChallengerStake refunds whatever is held from the challenger
	ReleaseChallengerStake(ctx context.Context, challenge *entities.Challenge) error

	// CollectAcceptanceStakes tops up the challenger then debits the challenged party,
	// reversing the top-up if the second debit fails
	CollectAcceptanceStakes(ctx context.Context, challenge *entities.Challenge) (*EscrowReceipt, error)

	// ReverseAcceptanceStakes undoes CollectAcceptanceStakes in reverse order
	ReverseAcceptanceStakes(ctx context.Context, challenge *entities.Challenge, receipt *EscrowReceipt) error

	// RefundExcess returns stake the challenger over-escrowed before a lower counter-offer
	RefundExcess(ctx context.Context, challenge *entities.Challenge, receipt *EscrowReceipt) error

	// PayWinner credits the winner's stake plus winnings at the winner's own odds
	PayWinner(ctx context.Context, challenge *entities.Challenge, winnerID uuid.UUID) (*entities.Payout, error)

	// RefundBoth returns each party's full stake
	RefundBoth(ctx context.Context, challenge *entities.Challenge) error
}

// ReportOutcomeKind describes what a result report led to
type ReportOutcomeKind string

const (
	ReportOutcomeRecorded     ReportOutcomeKind = "recorded"
	ReportOutcomeSettled      ReportOutcomeKind = "settled"
	ReportOutcomeDisputeRetry ReportOutcomeKind = "dispute_retry"
	ReportOutcomeVoided       ReportOutcomeKind = "voided"
)

// ReportOutcome is the result of reporting or settling a challenge
type ReportOutcome struct {
	Kind      ReportOutcomeKind           `json:"kind"`
	Challenge *entities.Challenge         `json:"challenge"`
	Payout    *entities.Payout            `json:"payout,omitempty"`
	Ratings   *entities.MatchRatingUpdate `json:"-"`
}

// ResultService defines result reporting and dispute resolution
type ResultService interface {
	// ReportResult records who the reporter believes won and evaluates once both have reported
	ReportResult(ctx context.Context, challengeID, reporterID, winnerID uuid.UUID) (*ReportOutcome, error)

	// SettleChallenge evaluates a challenge whose reports are both in. Safe to call repeatedly.
	SettleChallenge(ctx context.Context, challengeID uuid.UUID) (*ReportOutcome, error)
}

// RatingService defines the Elo rating engine
type RatingService interface {
	// ApplyMatchResult updates both players' ratings for a decisive challenge, once per challenge
	ApplyMatchResult(ctx context.Context, challengeID uuid.UUID, gameType entities.GameType, winnerID, loserID uuid.UUID) (*entities.MatchRatingUpdate, error)

	// GetRating returns a player's rating, defaulting when they have none
	GetRating(ctx context.Context, userID uuid.UUID, gameType entities.GameType) (*entities.RatingRecord, error)

	// GetLeaderboard returns the top rated players for a game type
	GetLeaderboard(ctx context.Context, gameType entities.GameType, limit int) ([]*entities.RatingRecord, error)
}

// WalletService defines account registration, deposits and withdrawals
type WalletService interface {
	// RegisterAccount creates an account with the starting balance
	RegisterAccount(ctx context.Context, username string) (*entities.Account, error)

	// GetAccount retrieves an account
	GetAccount(ctx context.Context, userID uuid.UUID) (*entities.Account, error)

	// Deposit captures a payment and credits the balance
	Deposit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, method string) (*entities.Account, error)

	// Withdraw moves funds to the pending withdrawal balance and queues a payout request
	Withdraw(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, method string) (*entities.PendingWithdrawal, error)

	// GetLedger returns the user's most recent ledger entries
	GetLedger(ctx context.Context, userID uuid.UUID, limit int) ([]*entities.LedgerEntry, error)
}

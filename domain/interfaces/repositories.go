package interfaces

import (
	"context"
	"time"

	"gambler/challenge-service/domain/entities"
	"gambler/challenge-service/domain/events"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountRepository defines the interface for account balance storage.
// Every balance mutation is a single conditional statement so no caller ever writes a stale balance.
type AccountRepository interface {
	// GetByID retrieves an account, returning nil when it does not exist
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Account, error)

	// GetByUsername retrieves an account by username, returning nil when it does not exist
	GetByUsername(ctx context.Context, username string) (*entities.Account, error)

	// Create registers a new account with the starting balance
	Create(ctx context.Context, username string, initialBalance decimal.Decimal) (*entities.Account, error)

	// Debit subtracts from the balance only if it covers the amount.
	// Returns entities.ErrInsufficientFunds or entities.ErrNotFound when nothing was written.
	Debit(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error

	// Credit adds to the balance
	Credit(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error

	// CreditWinnings adds a settlement payout to the balance and winnings to the lifetime counter
	CreditWinnings(ctx context.Context, id uuid.UUID, totalPayout, winnings decimal.Decimal) error

	// ApplyDeposit adds a deposit to the balance and lifetime deposits
	ApplyDeposit(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (*entities.Account, error)

	// ReserveWithdrawal moves an amount from the balance into the pending withdrawal balance
	ReserveWithdrawal(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (*entities.Account, error)
}

// ChallengeRepository defines the interface for challenge storage
type ChallengeRepository interface {
	// Create inserts a new challenge, filling in ID, Version and timestamps
	Create(ctx context.Context, challenge *entities.Challenge) error

	// GetByID retrieves a challenge, returning nil when it does not exist
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Challenge, error)

	// UpdateIfStatus writes the challenge only if the stored row still has the expected status
	// and the challenge's version. Returns false when the guard did not match.
	UpdateIfStatus(ctx context.Context, challenge *entities.Challenge, expected entities.ChallengeStatus) (bool, error)

	// ListByUser returns challenges where the user is either party, newest first
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*entities.Challenge, error)

	// ListStaleNegotiations returns negotiating challenges not touched since the cutoff
	ListStaleNegotiations(ctx context.Context, cutoff time.Time, limit int) ([]*entities.Challenge, error)
}

// RatingRepository defines the interface for per-game skill ratings
type RatingRepository interface {
	// Get retrieves a rating record, returning nil when the player has none for the game type
	Get(ctx context.Context, userID uuid.UUID, gameType entities.GameType) (*entities.RatingRecord, error)

	// ApplyMatchUpdate writes both records and their history rows together.
	// Returns false without writing if the challenge was already applied.
	ApplyMatchUpdate(ctx context.Context, update *entities.MatchRatingUpdate) (bool, error)

	// GetLeaderboard returns the highest rated players for a game type
	GetLeaderboard(ctx context.Context, gameType entities.GameType, limit int) ([]*entities.RatingRecord, error)

	// GetHistory returns a player's rating changes for a game type, newest first
	GetHistory(ctx context.Context, userID uuid.UUID, gameType entities.GameType, limit int) ([]*entities.RatingChange, error)
}

// LedgerRepository defines the interface for the transaction log
type LedgerRepository interface {
	// Record appends a ledger entry
	Record(ctx context.Context, entry *entities.LedgerEntry) error

	// GetByUser returns a user's ledger entries, newest first
	GetByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*entities.LedgerEntry, error)
}

// WithdrawalRepository defines the interface for pending withdrawal requests
type WithdrawalRepository interface {
	// Create inserts a withdrawal request
	Create(ctx context.Context, withdrawal *entities.PendingWithdrawal) error

	// GetPendingByUser returns a user's unprocessed withdrawals
	GetPendingByUser(ctx context.Context, userID uuid.UUID) ([]*entities.PendingWithdrawal, error)
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	Publish(event events.Event) error
}

// PaymentProcessor captures a deposit payment
type PaymentProcessor interface {
	// Process reports whether the payment succeeded
	Process(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, method string) (bool, error)
}

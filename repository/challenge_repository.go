package repository

import (
	"context"
	"fmt"
	"time"

	"gambler/challenge-service/database"
	"gambler/challenge-service/domain/entities"
	"gambler/challenge-service/domain/interfaces"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const challengeColumns = `
	id, challenger_id, challenged_id, game_type, stake_amount,
	challenger_odds, challenged_odds, status, turn, challenger_escrow,
	challenger_result, challenged_result, result_status, dispute_count, final_winner_id,
	version, created_at, updated_at, accepted_at, completed_at`

// ChallengeRepository implements the ChallengeRepository interface
type ChallengeRepository struct {
	q Queryable
}

// NewChallengeRepository creates a new challenge repository
func NewChallengeRepository(db *database.DB) *ChallengeRepository {
	return &ChallengeRepository{q: db.Pool}
}

// NewChallengeRepositoryScoped creates a new challenge repository bound to a transaction
func NewChallengeRepositoryScoped(tx Queryable) interfaces.ChallengeRepository {
	return &ChallengeRepository{q: tx}
}

// Create inserts a new challenge at version 1
func (r *ChallengeRepository) Create(ctx context.Context, challenge *entities.Challenge) error {
	if challenge.ID == uuid.Nil {
		challenge.ID = uuid.New()
	}

	query := `
		INSERT INTO challenges (
			id, challenger_id, challenged_id, game_type, stake_amount,
			challenger_odds, challenged_odds, status, turn, challenger_escrow,
			dispute_count, version
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, 1)
		RETURNING version, created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query,
		challenge.ID,
		challenge.ChallengerID,
		challenge.ChallengedID,
		challenge.GameType,
		challenge.StakeAmount,
		challenge.ChallengerOdds,
		challenge.ChallengedOdds,
		challenge.Status,
		challenge.Turn,
		challenge.ChallengerEscrow,
		challenge.DisputeCount,
	).Scan(&challenge.Version, &challenge.CreatedAt, &challenge.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create challenge: %w", err)
	}
	return nil
}

// GetByID retrieves a challenge by ID
func (r *ChallengeRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Challenge, error) {
	query := `SELECT ` + challengeColumns + ` FROM challenges WHERE id = $1`

	challenge, err := scanChallenge(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get challenge %s: %w", id, err)
	}
	return challenge, nil
}

// UpdateIfStatus writes every mutable column guarded by status and version.
// On success the challenge's Version is advanced to match the stored row.
func (r *ChallengeRepository) UpdateIfStatus(ctx context.Context, challenge *entities.Challenge, expected entities.ChallengeStatus) (bool, error) {
	query := `
		UPDATE challenges SET
			stake_amount = $4,
			challenged_odds = $5,
			status = $6,
			turn = $7,
			challenger_escrow = $8,
			challenger_result = $9,
			challenged_result = $10,
			result_status = $11,
			dispute_count = $12,
			final_winner_id = $13,
			accepted_at = $14,
			completed_at = $15,
			version = version + 1,
			updated_at = NOW()
		WHERE id = $1 AND status = $2 AND version = $3
		RETURNING version, updated_at
	`

	var resultStatus *string
	if challenge.ResultStatus != nil {
		rs := string(*challenge.ResultStatus)
		resultStatus = &rs
	}

	var version int
	var updatedAt time.Time
	err := r.q.QueryRow(ctx, query,
		challenge.ID,
		expected,
		challenge.Version,
		challenge.StakeAmount,
		challenge.ChallengedOdds,
		challenge.Status,
		challenge.Turn,
		challenge.ChallengerEscrow,
		challenge.ChallengerResult,
		challenge.ChallengedResult,
		resultStatus,
		challenge.DisputeCount,
		challenge.FinalWinnerID,
		challenge.AcceptedAt,
		challenge.CompletedAt,
	).Scan(&version, &updatedAt)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to update challenge %s: %w", challenge.ID, err)
	}

	challenge.Version = version
	challenge.UpdatedAt = updatedAt
	return true, nil
}

// ListByUser returns challenges where the user is either party, newest first
func (r *ChallengeRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*entities.Challenge, error) {
	query := `
		SELECT ` + challengeColumns + `
		FROM challenges
		WHERE challenger_id = $1 OR challenged_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list challenges for %s: %w", userID, err)
	}
	defer rows.Close()

	return collectChallenges(rows)
}

// ListStaleNegotiations returns negotiating challenges not updated since the cutoff, oldest first
func (r *ChallengeRepository) ListStaleNegotiations(ctx context.Context, cutoff time.Time, limit int) ([]*entities.Challenge, error) {
	query := `
		SELECT ` + challengeColumns + `
		FROM challenges
		WHERE status IN ('negotiating', 'counter_offer') AND updated_at < $1
		ORDER BY updated_at ASC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list stale negotiations: %w", err)
	}
	defer rows.Close()

	return collectChallenges(rows)
}

func collectChallenges(rows pgx.Rows) ([]*entities.Challenge, error) {
	var challenges []*entities.Challenge
	for rows.Next() {
		challenge, err := scanChallenge(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan challenge: %w", err)
		}
		challenges = append(challenges, challenge)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating challenges: %w", err)
	}
	return challenges, nil
}

func scanChallenge(row pgx.Row) (*entities.Challenge, error) {
	var c entities.Challenge
	var resultStatus *string
	err := row.Scan(
		&c.ID,
		&c.ChallengerID,
		&c.ChallengedID,
		&c.GameType,
		&c.StakeAmount,
		&c.ChallengerOdds,
		&c.ChallengedOdds,
		&c.Status,
		&c.Turn,
		&c.ChallengerEscrow,
		&c.ChallengerResult,
		&c.ChallengedResult,
		&resultStatus,
		&c.DisputeCount,
		&c.FinalWinnerID,
		&c.Version,
		&c.CreatedAt,
		&c.UpdatedAt,
		&c.AcceptedAt,
		&c.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	if resultStatus != nil {
		c.SetResultStatus(entities.ResultStatus(*resultStatus))
	}
	return &c, nil
}

package repository

import (
	"context"
	"fmt"

	"gambler/challenge-service/database"
	"gambler/challenge-service/domain/entities"
	"gambler/challenge-service/domain/interfaces"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const ratingColumns = `user_id, game_type, elo_rating, games_played, wins, losses, current_win_streak, updated_at`

// RatingRepository implements the RatingRepository interface
type RatingRepository struct {
	q Queryable
}

// NewRatingRepository creates a new rating repository
func NewRatingRepository(db *database.DB) *RatingRepository {
	return &RatingRepository{q: db.Pool}
}

// NewRatingRepositoryScoped creates a new rating repository bound to a transaction
func NewRatingRepositoryScoped(tx Queryable) interfaces.RatingRepository {
	return &RatingRepository{q: tx}
}

// Get retrieves a player's rating for a game type
func (r *RatingRepository) Get(ctx context.Context, userID uuid.UUID, gameType entities.GameType) (*entities.RatingRecord, error) {
	query := `SELECT ` + ratingColumns + ` FROM rating_records WHERE user_id = $1 AND game_type = $2`

	record, err := scanRating(r.q.QueryRow(ctx, query, userID, gameType))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get rating for %s (%s): %w", userID, gameType, err)
	}
	return record, nil
}

// ApplyMatchUpdate writes both history rows and both records in one transaction.
// The history rows are unique per challenge and player, so a replay inserts nothing and writes nothing.
// Each record is only written over the row it was computed from; if another settlement got there
// first the whole update is rolled back with ErrStaleRating.
func (r *RatingRepository) ApplyMatchUpdate(ctx context.Context, update *entities.MatchRatingUpdate) (bool, error) {
	b, ok := r.q.(beginner)
	if !ok {
		return false, fmt.Errorf("rating repository cannot start a transaction")
	}

	tx, err := b.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to begin rating transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	historyQuery := `
		INSERT INTO rating_history (challenge_id, user_id, game_type, old_rating, new_rating)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (challenge_id, user_id) DO NOTHING
	`
	for _, change := range []*entities.RatingChange{update.WinnerChange, update.LoserChange} {
		result, err := tx.Exec(ctx, historyQuery,
			update.ChallengeID, change.UserID, change.GameType, change.OldRating, change.NewRating)
		if err != nil {
			return false, fmt.Errorf("failed to record rating history for %s: %w", change.UserID, err)
		}
		if result.RowsAffected() == 0 {
			return false, nil
		}
	}

	upsertQuery := `
		INSERT INTO rating_records (user_id, game_type, elo_rating, games_played, wins, losses, current_win_streak, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		ON CONFLICT (user_id, game_type) DO UPDATE SET
			elo_rating = EXCLUDED.elo_rating,
			games_played = EXCLUDED.games_played,
			wins = EXCLUDED.wins,
			losses = EXCLUDED.losses,
			current_win_streak = EXCLUDED.current_win_streak,
			updated_at = NOW()
		WHERE rating_records.games_played = $8
	`
	for _, record := range []*entities.RatingRecord{update.Winner, update.Loser} {
		result, err := tx.Exec(ctx, upsertQuery,
			record.UserID,
			record.GameType,
			record.EloRating,
			record.GamesPlayed,
			record.Wins,
			record.Losses,
			record.CurrentWinStreak,
			record.PriorGamesPlayed(),
		)
		if err != nil {
			return false, fmt.Errorf("failed to upsert rating for %s: %w", record.UserID, err)
		}
		if result.RowsAffected() == 0 {
			return false, fmt.Errorf("%w: %s (%s)", entities.ErrStaleRating, record.UserID, record.GameType)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("failed to commit rating update: %w", err)
	}
	return true, nil
}

// GetLeaderboard returns the highest rated players for a game type
func (r *RatingRepository) GetLeaderboard(ctx context.Context, gameType entities.GameType, limit int) ([]*entities.RatingRecord, error) {
	query := `
		SELECT ` + ratingColumns + `
		FROM rating_records
		WHERE game_type = $1 AND games_played > 0
		ORDER BY elo_rating DESC, games_played DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, gameType, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s leaderboard: %w", gameType, err)
	}
	defer rows.Close()

	var records []*entities.RatingRecord
	for rows.Next() {
		record, err := scanRating(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rating: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ratings: %w", err)
	}
	return records, nil
}

// GetHistory returns a player's rating changes for a game type, newest first
func (r *RatingRepository) GetHistory(ctx context.Context, userID uuid.UUID, gameType entities.GameType, limit int) ([]*entities.RatingChange, error) {
	query := `
		SELECT challenge_id, user_id, game_type, old_rating, new_rating, created_at
		FROM rating_history
		WHERE user_id = $1 AND game_type = $2
		ORDER BY created_at DESC, id DESC
		LIMIT $3
	`

	rows, err := r.q.Query(ctx, query, userID, gameType, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get rating history for %s: %w", userID, err)
	}
	defer rows.Close()

	var changes []*entities.RatingChange
	for rows.Next() {
		var c entities.RatingChange
		if err := rows.Scan(&c.ChallengeID, &c.UserID, &c.GameType, &c.OldRating, &c.NewRating, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan rating change: %w", err)
		}
		changes = append(changes, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rating history: %w", err)
	}
	return changes, nil
}

func scanRating(row pgx.Row) (*entities.RatingRecord, error) {
	var rec entities.RatingRecord
	err := row.Scan(
		&rec.UserID,
		&rec.GameType,
		&rec.EloRating,
		&rec.GamesPlayed,
		&rec.Wins,
		&rec.Losses,
		&rec.CurrentWinStreak,
		&rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

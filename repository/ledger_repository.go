package repository

import (
	"context"
	"errors"
	"fmt"

	"gambler/challenge-service/database"
	"gambler/challenge-service/domain/entities"
	"gambler/challenge-service/domain/interfaces"

	"github.com/google/uuid"
)

// LedgerRepository implements the LedgerRepository interface
type LedgerRepository struct {
	q Queryable
	// savepoint wraps each insert when bound to a transaction; a rejected entry
	// rolls back only itself
	savepoint bool
}

// NewLedgerRepository creates a new ledger repository
func NewLedgerRepository(db *database.DB) *LedgerRepository {
	return &LedgerRepository{q: db.Pool}
}

// NewLedgerRepositoryScoped creates a new ledger repository bound to a transaction
func NewLedgerRepositoryScoped(tx Queryable) interfaces.LedgerRepository {
	return &LedgerRepository{q: tx, savepoint: true}
}

// Record appends a ledger entry, filling in its ID and timestamp
func (r *LedgerRepository) Record(ctx context.Context, entry *entities.LedgerEntry) error {
	if entry.Status == "" {
		entry.Status = entities.LedgerStatusCompleted
	}

	if !r.savepoint {
		return r.insert(ctx, r.q, entry)
	}

	b, ok := r.q.(beginner)
	if !ok {
		return r.insert(ctx, r.q, entry)
	}
	sp, err := b.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to open ledger savepoint: %w", err)
	}
	if err := r.insert(ctx, sp, entry); err != nil {
		if rerr := sp.Rollback(ctx); rerr != nil {
			return errors.Join(err, fmt.Errorf("failed to roll back ledger savepoint: %w", rerr))
		}
		return err
	}
	if err := sp.Commit(ctx); err != nil {
		return fmt.Errorf("failed to release ledger savepoint: %w", err)
	}
	return nil
}

func (r *LedgerRepository) insert(ctx context.Context, q Queryable, entry *entities.LedgerEntry) error {
	query := `
		INSERT INTO ledger_entries (user_id, type, amount, description, match_id, reference_id, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`
	err := q.QueryRow(ctx, query,
		entry.UserID,
		entry.Type,
		entities.RoundMoney(entry.Amount),
		entry.Description,
		entry.MatchID,
		entry.ReferenceID,
		entry.Status,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record %s ledger entry for %s: %w", entry.Type, entry.UserID, err)
	}
	return nil
}

// GetByUser returns a user's ledger entries, newest first
func (r *LedgerRepository) GetByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*entities.LedgerEntry, error) {
	query := `
		SELECT id, user_id, type, amount, description, match_id, reference_id, status, created_at
		FROM ledger_entries
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger for %s: %w", userID, err)
	}
	defer rows.Close()

	entries := make([]*entities.LedgerEntry, 0)
	for rows.Next() {
		var e entities.LedgerEntry
		err := rows.Scan(
			&e.ID,
			&e.UserID,
			&e.Type,
			&e.Amount,
			&e.Description,
			&e.MatchID,
			&e.ReferenceID,
			&e.Status,
			&e.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ledger entries: %w", err)
	}
	return entries, nil
}

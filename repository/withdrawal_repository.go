package repository

import (
	"context"
	"fmt"

	"gambler/challenge-service/database"
	"gambler/challenge-service/domain/entities"
	"gambler/challenge-service/domain/interfaces"

	"github.com/google/uuid"
)

// WithdrawalRepository implements the WithdrawalRepository interface
type WithdrawalRepository struct {
	q Queryable
}

// NewWithdrawalRepository creates a new withdrawal repository
func NewWithdrawalRepository(db *database.DB) *WithdrawalRepository {
	return &WithdrawalRepository{q: db.Pool}
}

// NewWithdrawalRepositoryScoped creates a new withdrawal repository bound to a transaction
func NewWithdrawalRepositoryScoped(tx Queryable) interfaces.WithdrawalRepository {
	return &WithdrawalRepository{q: tx}
}

// Create inserts a withdrawal request
func (r *WithdrawalRepository) Create(ctx context.Context, withdrawal *entities.PendingWithdrawal) error {
	if withdrawal.Status == "" {
		withdrawal.Status = entities.WithdrawalStatusPending
	}

	query := `
		INSERT INTO pending_withdrawals (user_id, amount, payment_method, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	err := r.q.QueryRow(ctx, query,
		withdrawal.UserID,
		entities.RoundMoney(withdrawal.Amount),
		withdrawal.PaymentMethod,
		withdrawal.Status,
	).Scan(&withdrawal.ID, &withdrawal.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create withdrawal for %s: %w", withdrawal.UserID, err)
	}
	return nil
}

// GetPendingByUser returns a user's unprocessed withdrawals, oldest first
func (r *WithdrawalRepository) GetPendingByUser(ctx context.Context, userID uuid.UUID) ([]*entities.PendingWithdrawal, error) {
	query := `
		SELECT id, user_id, amount, payment_method, status, created_at
		FROM pending_withdrawals
		WHERE user_id = $1 AND status = 'pending'
		ORDER BY created_at ASC
	`

	rows, err := r.q.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending withdrawals for %s: %w", userID, err)
	}
	defer rows.Close()

	var withdrawals []*entities.PendingWithdrawal
	for rows.Next() {
		var w entities.PendingWithdrawal
		if err := rows.Scan(&w.ID, &w.UserID, &w.Amount, &w.PaymentMethod, &w.Status, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan withdrawal: %w", err)
		}
		withdrawals = append(withdrawals, &w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating withdrawals: %w", err)
	}
	return withdrawals, nil
}

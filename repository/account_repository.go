package repository

import (
	"context"
	"errors"
	"fmt"

	"gambler/challenge-service/database"
	"gambler/challenge-service/domain/entities"
	"gambler/challenge-service/domain/interfaces"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

const accountColumns = `id, username, balance, pending_withdrawal, lifetime_deposits, lifetime_winnings, created_at, updated_at`

// AccountRepository implements the AccountRepository interface
type AccountRepository struct {
	q Queryable
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *database.DB) *AccountRepository {
	return &AccountRepository{q: db.Pool}
}

// NewAccountRepositoryScoped creates a new account repository bound to a transaction
func NewAccountRepositoryScoped(tx Queryable) interfaces.AccountRepository {
	return &AccountRepository{q: tx}
}

// GetByID retrieves an account by ID
func (r *AccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`

	account, err := scanAccount(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account %s: %w", id, err)
	}
	return account, nil
}

// GetByUsername retrieves an account by username
func (r *AccountRepository) GetByUsername(ctx context.Context, username string) (*entities.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE username = $1`

	account, err := scanAccount(r.q.QueryRow(ctx, query, username))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account by username %q: %w", username, err)
	}
	return account, nil
}

// Create registers a new account
func (r *AccountRepository) Create(ctx context.Context, username string, initialBalance decimal.Decimal) (*entities.Account, error) {
	query := `
		INSERT INTO accounts (username, balance)
		VALUES ($1, $2)
		RETURNING ` + accountColumns

	account, err := scanAccount(r.q.QueryRow(ctx, query, username, entities.RoundMoney(initialBalance)))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, fmt.Errorf("%w: username %q is taken", entities.ErrInvalidInput, username)
		}
		return nil, fmt.Errorf("failed to create account %q: %w", username, err)
	}
	return account, nil
}

// Debit subtracts from the balance in one conditional statement
func (r *AccountRepository) Debit(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	query := `
		UPDATE accounts
		SET balance = balance - $2, updated_at = NOW()
		WHERE id = $1 AND balance >= $2
	`
	result, err := r.q.Exec(ctx, query, id, entities.RoundMoney(amount))
	if err != nil {
		return fmt.Errorf("failed to debit account %s: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return r.explainMiss(ctx, id)
	}
	return nil
}

// Credit adds to the balance
func (r *AccountRepository) Credit(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	query := `
		UPDATE accounts
		SET balance = balance + $2, updated_at = NOW()
		WHERE id = $1
	`
	result, err := r.q.Exec(ctx, query, id, entities.RoundMoney(amount))
	if err != nil {
		return fmt.Errorf("failed to credit account %s: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: account %s", entities.ErrNotFound, id)
	}
	return nil
}

// CreditWinnings adds a payout to the balance and the winnings to the lifetime counter
func (r *AccountRepository) CreditWinnings(ctx context.Context, id uuid.UUID, totalPayout, winnings decimal.Decimal) error {
	query := `
		UPDATE accounts
		SET balance = balance + $2,
		    lifetime_winnings = lifetime_winnings + $3,
		    updated_at = NOW()
		WHERE id = $1
	`
	result, err := r.q.Exec(ctx, query, id, entities.RoundMoney(totalPayout), entities.RoundMoney(winnings))
	if err != nil {
		return fmt.Errorf("failed to credit winnings to account %s: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: account %s", entities.ErrNotFound, id)
	}
	return nil
}

// ApplyDeposit adds a captured deposit to the balance and lifetime deposits
func (r *AccountRepository) ApplyDeposit(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (*entities.Account, error) {
	query := `
		UPDATE accounts
		SET balance = balance + $2,
		    lifetime_deposits = lifetime_deposits + $2,
		    updated_at = NOW()
		WHERE id = $1
		RETURNING ` + accountColumns

	account, err := scanAccount(r.q.QueryRow(ctx, query, id, entities.RoundMoney(amount)))
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("%w: account %s", entities.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to apply deposit to account %s: %w", id, err)
	}
	return account, nil
}

// ReserveWithdrawal moves funds from the balance into the pending withdrawal balance
func (r *AccountRepository) ReserveWithdrawal(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (*entities.Account, error) {
	query := `
		UPDATE accounts
		SET balance = balance - $2,
		    pending_withdrawal = pending_withdrawal + $2,
		    updated_at = NOW()
		WHERE id = $1 AND balance >= $2
		RETURNING ` + accountColumns

	account, err := scanAccount(r.q.QueryRow(ctx, query, id, entities.RoundMoney(amount)))
	if err == pgx.ErrNoRows {
		return nil, r.explainMiss(ctx, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to reserve withdrawal on account %s: %w", id, err)
	}
	return account, nil
}

// explainMiss tells a missing account apart from one that could not cover a debit
func (r *AccountRepository) explainMiss(ctx context.Context, id uuid.UUID) error {
	var exists bool
	err := r.q.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check account %s: %w", id, err)
	}
	if !exists {
		return fmt.Errorf("%w: account %s", entities.ErrNotFound, id)
	}
	return entities.ErrInsufficientFunds
}

func scanAccount(row pgx.Row) (*entities.Account, error) {
	var a entities.Account
	err := row.Scan(
		&a.ID,
		&a.Username,
		&a.Balance,
		&a.PendingWithdrawal,
		&a.LifetimeDeposits,
		&a.LifetimeWinnings,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

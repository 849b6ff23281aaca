package application

import (
	"context"

	"gambler/challenge-service/domain/interfaces"
)

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Repository getters
	AccountRepository() interfaces.AccountRepository
	WithdrawalRepository() interfaces.WithdrawalRepository
	LedgerRepository() interfaces.LedgerRepository
	EventBus() interfaces.EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	// Create creates a new UnitOfWork instance
	Create() UnitOfWork
}

// TransactionalEventPublisher holds published events until the owning transaction ends
type TransactionalEventPublisher interface {
	interfaces.EventPublisher

	// Flush publishes every held event
	Flush(ctx context.Context) error

	// Discard drops every held event
	Discard()
}

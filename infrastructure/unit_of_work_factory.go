package infrastructure

import (
	"gambler/challenge-service/application"
	"gambler/challenge-service/database"
	"gambler/challenge-service/domain/interfaces"
	"gambler/challenge-service/repository"
)

type repositoryUnitOfWorkFactory interface {
	CreateWithPublisher(transactionalPublisher application.TransactionalEventPublisher) application.UnitOfWork
}

// UnitOfWorkFactory implements the application.UnitOfWorkFactory interface.
// Each unit of work gets its own transactional publisher that flushes on commit.
type UnitOfWorkFactory struct {
	repoFactory    repositoryUnitOfWorkFactory
	eventPublisher interfaces.EventPublisher
}

// NewUnitOfWorkFactory creates a new UnitOfWorkFactory
func NewUnitOfWorkFactory(db *database.DB, eventPublisher interfaces.EventPublisher) *UnitOfWorkFactory {
	return &UnitOfWorkFactory{
		repoFactory:    repository.NewUnitOfWorkFactory(db),
		eventPublisher: eventPublisher,
	}
}

// Create creates a new UnitOfWork with a transactional event publisher
func (f *UnitOfWorkFactory) Create() application.UnitOfWork {
	return f.repoFactory.CreateWithPublisher(NewNATSTransactionalPublisher(f.eventPublisher))
}

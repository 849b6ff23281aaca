package application

import (
	"context"
	"testing"

	"gambler/challenge-service/config"
	"gambler/challenge-service/domain/events"
	"gambler/challenge-service/domain/interfaces"
	"gambler/challenge-service/domain/testhelpers"
)

func setupTestConfig(t *testing.T, mutate func(cfg *config.Config)) {
	t.Helper()
	cfg := config.NewTestConfig()
	if mutate != nil {
		mutate(cfg)
	}
	config.SetTestConfig(cfg)
	t.Cleanup(config.ResetConfig)
}

// fakeUnitOfWork shares in-memory repositories across units and buffers events until commit
type fakeUnitOfWork struct {
	factory   *fakeUnitOfWorkFactory
	begun      bool
	committed  bool
	rolledBack bool
	pending    []events.Event
}

type fakeUnitOfWorkFactory struct {
	accounts    *testhelpers.FakeAccountRepository
	ledger      *testhelpers.FakeLedgerRepository
	withdrawals *testhelpers.MockWithdrawalRepository
	published   *testhelpers.RecordingEventPublisher
	units       []*fakeUnitOfWork
	BeginErr    error
}

func newFakeUnitOfWorkFactory() *fakeUnitOfWorkFactory {
	return &fakeUnitOfWorkFactory{
		accounts:    testhelpers.NewFakeAccountRepository(),
		ledger:      &testhelpers.FakeLedgerRepository{},
		withdrawals: &testhelpers.MockWithdrawalRepository{},
		published:   &testhelpers.RecordingEventPublisher{},
	}
}

// openUnits counts units that have begun and not yet finished
func (f *fakeUnitOfWorkFactory) openUnits() int {
	open := 0
	for _, u := range f.units {
		if u.begun && !u.committed && !u.rolledBack {
			open++
		}
	}
	return open
}

// lastUnit returns the most recently created unit of work
func (f *fakeUnitOfWorkFactory) lastUnit() *fakeUnitOfWork {
	return f.units[len(f.units)-1]
}

func (f *fakeUnitOfWorkFactory) Create() UnitOfWork {
	uow := &fakeUnitOfWork{factory: f}
	f.units = append(f.units, uow)
	return uow
}

func (u *fakeUnitOfWork) Begin(ctx context.Context) error {
	if u.factory.BeginErr != nil {
		return u.factory.BeginErr
	}
	u.begun = true
	return nil
}

func (u *fakeUnitOfWork) Commit() error {
	u.committed = true
	for _, e := range u.pending {
		_ = u.factory.published.Publish(e)
	}
	u.pending = nil
	return nil
}

func (u *fakeUnitOfWork) Rollback() error {
	if !u.committed {
		u.rolledBack = true
	}
	u.pending = nil
	return nil
}

func (u *fakeUnitOfWork) Publish(event events.Event) error {
	u.pending = append(u.pending, event)
	return nil
}

func (u *fakeUnitOfWork) AccountRepository() interfaces.AccountRepository {
	return u.factory.accounts
}

func (u *fakeUnitOfWork) WithdrawalRepository() interfaces.WithdrawalRepository {
	return u.factory.withdrawals
}

func (u *fakeUnitOfWork) LedgerRepository() interfaces.LedgerRepository {
	return u.factory.ledger
}

func (u *fakeUnitOfWork) EventBus() interfaces.EventPublisher {
	return u
}

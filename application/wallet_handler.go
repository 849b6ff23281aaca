package application

import (
	"context"
	"errors"
	"fmt"

	"gambler/challenge-service/config"
	"gambler/challenge-service/domain/entities"
	"gambler/challenge-service/domain/interfaces"
	"gambler/challenge-service/domain/services"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// WalletHandler runs each wallet operation inside its own unit of work.
// It satisfies interfaces.WalletService so transports can depend on the interface.
type WalletHandler struct {
	uowFactory       UnitOfWorkFactory
	paymentProcessor interfaces.PaymentProcessor
}

// NewWalletHandler creates a new wallet handler
func NewWalletHandler(uowFactory UnitOfWorkFactory, paymentProcessor interfaces.PaymentProcessor) *WalletHandler {
	return &WalletHandler{
		uowFactory:       uowFactory,
		paymentProcessor: paymentProcessor,
	}
}

// RegisterAccount creates an account with the starting balance
func (h *WalletHandler) RegisterAccount(ctx context.Context, username string) (*entities.Account, error) {
	var account *entities.Account
	err := h.withWallet(ctx, h.paymentProcessor, func(wallet interfaces.WalletService) error {
		var err error
		account, err = wallet.RegisterAccount(ctx, username)
		return err
	})
	return account, err
}

// GetAccount retrieves an account
func (h *WalletHandler) GetAccount(ctx context.Context, userID uuid.UUID) (*entities.Account, error) {
	var account *entities.Account
	err := h.withWallet(ctx, h.paymentProcessor, func(wallet interfaces.WalletService) error {
		var err error
		account, err = wallet.GetAccount(ctx, userID)
		return err
	})
	return account, err
}

// Deposit captures a payment and credits the balance. The processor runs before the
// unit of work begins.
func (h *WalletHandler) Deposit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, method string) (*entities.Account, error) {
	amount, method, err := services.ValidateDeposit(config.Get(), amount, method)
	if err != nil {
		return nil, err
	}
	if _, err := h.GetAccount(ctx, userID); err != nil {
		return nil, err
	}

	approved, err := h.paymentProcessor.Process(ctx, userID, amount, method)
	if err != nil {
		return nil, fmt.Errorf("failed to process payment: %w", err)
	}

	var account *entities.Account
	err = h.withWallet(ctx, capturedPayment{approved: approved}, func(wallet interfaces.WalletService) error {
		var err error
		account, err = wallet.Deposit(ctx, userID, amount, method)
		return err
	})
	return account, err
}

// Withdraw moves funds to the pending withdrawal balance and queues a payout request
func (h *WalletHandler) Withdraw(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, method string) (*entities.PendingWithdrawal, error) {
	var withdrawal *entities.PendingWithdrawal
	err := h.withWallet(ctx, h.paymentProcessor, func(wallet interfaces.WalletService) error {
		var err error
		withdrawal, err = wallet.Withdraw(ctx, userID, amount, method)
		return err
	})
	return withdrawal, err
}

// GetLedger returns the user's most recent ledger entries
func (h *WalletHandler) GetLedger(ctx context.Context, userID uuid.UUID, limit int) ([]*entities.LedgerEntry, error) {
	var entries []*entities.LedgerEntry
	err := h.withWallet(ctx, h.paymentProcessor, func(wallet interfaces.WalletService) error {
		var err error
		entries, err = wallet.GetLedger(ctx, userID, limit)
		return err
	})
	return entries, err
}

// withWallet builds a wallet service over a fresh unit of work and commits it when fn succeeds.
// A declined payment still commits so its failed ledger entry is kept.
func (h *WalletHandler) withWallet(ctx context.Context, payments interfaces.PaymentProcessor, fn func(wallet interfaces.WalletService) error) error {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %w", entities.ErrPersistenceFailure, err)
	}
	defer func() {
		if err := uow.Rollback(); err != nil {
			log.WithError(err).Warn("Failed to roll back wallet transaction")
		}
	}()

	wallet := services.NewWalletService(
		uow.AccountRepository(),
		uow.WithdrawalRepository(),
		uow.LedgerRepository(),
		uow.EventBus(),
		payments,
	)

	opErr := fn(wallet)
	if opErr != nil && !errors.Is(opErr, entities.ErrPaymentDeclined) {
		return opErr
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("%w: failed to commit wallet transaction: %w", entities.ErrPersistenceFailure, err)
	}
	return opErr
}

// capturedPayment replays a payment outcome that was settled before the transaction began
type capturedPayment struct {
	approved bool
}

func (p capturedPayment) Process(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, method string) (bool, error) {
	return p.approved, nil
}

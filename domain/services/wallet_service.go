package services

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"gambler/challenge-service/config"
	"gambler/challenge-service/domain/entities"
	"gambler/challenge-service/domain/interfaces"
	"gambler/challenge-service/domain/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

const (
	minUsernameLength  = 3
	maxUsernameLength  = 32
	defaultLedgerLimit = 50
	maxLedgerLimit     = 500
)

type walletService struct {
	config           *config.Config
	accountRepo      interfaces.AccountRepository
	withdrawalRepo   interfaces.WithdrawalRepository
	ledgerRepo       interfaces.LedgerRepository
	eventPublisher   interfaces.EventPublisher
	paymentProcessor interfaces.PaymentProcessor
}

// NewWalletService creates a new wallet service
func NewWalletService(
	accountRepo interfaces.AccountRepository,
	withdrawalRepo interfaces.WithdrawalRepository,
	ledgerRepo interfaces.LedgerRepository,
	eventPublisher interfaces.EventPublisher,
	paymentProcessor interfaces.PaymentProcessor,
) interfaces.WalletService {
	return &walletService{
		config:           config.Get(),
		accountRepo:      accountRepo,
		withdrawalRepo:   withdrawalRepo,
		ledgerRepo:       ledgerRepo,
		eventPublisher:   eventPublisher,
		paymentProcessor: paymentProcessor,
	}
}

// RegisterAccount creates an account with the starting balance
func (s *walletService) RegisterAccount(ctx context.Context, username string) (*entities.Account, error) {
	username = strings.TrimSpace(username)
	if err := validateUsername(username); err != nil {
		return nil, err
	}

	existing, err := s.accountRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, persistenceError("check username", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: username %q is taken", entities.ErrInvalidInput, username)
	}

	account, err := s.accountRepo.Create(ctx, username, s.config.StartingBalance)
	if err != nil {
		return nil, persistenceError("create account", err)
	}

	log.WithFields(log.Fields{
		"userID":   account.ID,
		"username": account.Username,
		"balance":  account.Balance.StringFixed(entities.MoneyPlaces),
	}).Info("Account registered")

	if s.config.StartingBalance.IsPositive() {
		utils.RecordLedgerEntry(ctx, s.ledgerRepo, s.eventPublisher, &entities.LedgerEntry{
			UserID:      account.ID,
			Type:        entities.TransactionTypeDeposit,
			Amount:      s.config.StartingBalance,
			Description: "Starting balance",
		})
	}

	return account, nil
}

// GetAccount retrieves an account
func (s *walletService) GetAccount(ctx context.Context, userID uuid.UUID) (*entities.Account, error) {
	account, err := s.accountRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, persistenceError("get account", err)
	}
	if account == nil {
		return nil, fmt.Errorf("%w: account %s", entities.ErrNotFound, userID)
	}
	return account, nil
}

// Deposit captures a payment and credits the balance
func (s *walletService) Deposit(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, method string) (*entities.Account, error) {
	amount, method, err := ValidateDeposit(s.config, amount, method)
	if err != nil {
		return nil, err
	}

	if _, err := s.GetAccount(ctx, userID); err != nil {
		return nil, err
	}

	reference := "dep_" + uuid.NewString()
	approved, err := s.paymentProcessor.Process(ctx, userID, amount, method)
	if err != nil {
		return nil, fmt.Errorf("failed to process payment: %w", err)
	}
	if !approved {
		log.WithFields(log.Fields{
			"userID": userID,
			"amount": amount.StringFixed(entities.MoneyPlaces),
			"method": method,
		}).Warn("Deposit payment declined")
		utils.RecordLedgerEntry(ctx, s.ledgerRepo, s.eventPublisher, &entities.LedgerEntry{
			UserID:      userID,
			Type:        entities.TransactionTypeDeposit,
			Amount:      amount,
			Description: fmt.Sprintf("Deposit via %s declined", method),
			ReferenceID: &reference,
			Status:      entities.LedgerStatusFailed,
		})
		return nil, entities.ErrPaymentDeclined
	}

	account, err := s.accountRepo.ApplyDeposit(ctx, userID, amount)
	if err != nil {
		return nil, persistenceError("apply deposit", err)
	}

	utils.RecordLedgerEntry(ctx, s.ledgerRepo, s.eventPublisher, &entities.LedgerEntry{
		UserID:      userID,
		Type:        entities.TransactionTypeDeposit,
		Amount:      amount,
		Description: fmt.Sprintf("Deposit via %s", method),
		ReferenceID: &reference,
	})

	log.WithFields(log.Fields{
		"userID":  userID,
		"amount":  amount.StringFixed(entities.MoneyPlaces),
		"balance": account.Balance.StringFixed(entities.MoneyPlaces),
	}).Info("Deposit completed")

	return account, nil
}

// ValidateDeposit rounds the amount and trims the method, rejecting anything outside the deposit bounds
func ValidateDeposit(cfg *config.Config, amount decimal.Decimal, method string) (decimal.Decimal, string, error) {
	amount = entities.RoundMoney(amount)
	if !amount.IsPositive() || amount.GreaterThan(cfg.MaxDeposit) {
		return decimal.Zero, "", fmt.Errorf("%w: deposit must be between 0.01 and %s", entities.ErrInvalidAmount, cfg.MaxDeposit.StringFixed(entities.MoneyPlaces))
	}
	method = strings.TrimSpace(method)
	if method == "" {
		return decimal.Zero, "", fmt.Errorf("%w: payment method is required", entities.ErrInvalidInput)
	}
	return amount, method, nil
}

// Withdraw moves funds to the pending withdrawal balance and queues a payout request
func (s *walletService) Withdraw(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, method string) (*entities.PendingWithdrawal, error) {
	amount = entities.RoundMoney(amount)
	if amount.LessThan(s.config.MinWithdrawal) {
		return nil, fmt.Errorf("%w: minimum withdrawal is %s", entities.ErrInvalidAmount, s.config.MinWithdrawal.StringFixed(entities.MoneyPlaces))
	}
	method = strings.TrimSpace(method)
	if method == "" {
		return nil, fmt.Errorf("%w: payment method is required", entities.ErrInvalidInput)
	}

	account, err := s.accountRepo.ReserveWithdrawal(ctx, userID, amount)
	if err != nil {
		return nil, persistenceError("reserve withdrawal", err)
	}

	withdrawal := &entities.PendingWithdrawal{
		UserID:        userID,
		Amount:        amount,
		PaymentMethod: method,
		Status:        entities.WithdrawalStatusPending,
	}
	if err := s.withdrawalRepo.Create(ctx, withdrawal); err != nil {
		return nil, persistenceError("queue withdrawal", err)
	}

	reference := fmt.Sprintf("wd_%d", withdrawal.ID)
	utils.RecordLedgerEntry(ctx, s.ledgerRepo, s.eventPublisher, &entities.LedgerEntry{
		UserID:      userID,
		Type:        entities.TransactionTypeWithdrawal,
		Amount:      amount,
		Description: fmt.Sprintf("Withdrawal to %s", method),
		ReferenceID: &reference,
		Status:      entities.LedgerStatusPending,
	})

	log.WithFields(log.Fields{
		"userID":            userID,
		"amount":            amount.StringFixed(entities.MoneyPlaces),
		"balance":           account.Balance.StringFixed(entities.MoneyPlaces),
		"pendingWithdrawal": account.PendingWithdrawal.StringFixed(entities.MoneyPlaces),
	}).Info("Withdrawal queued")

	return withdrawal, nil
}

// GetLedger returns the user's most recent ledger entries
func (s *walletService) GetLedger(ctx context.Context, userID uuid.UUID, limit int) ([]*entities.LedgerEntry, error) {
	if limit <= 0 {
		limit = defaultLedgerLimit
	}
	if limit > maxLedgerLimit {
		limit = maxLedgerLimit
	}

	entries, err := s.ledgerRepo.GetByUser(ctx, userID, limit)
	if err != nil {
		return nil, persistenceError("get ledger", err)
	}
	return entries, nil
}

func validateUsername(username string) error {
	if len(username) < minUsernameLength || len(username) > maxUsernameLength {
		return fmt.Errorf("%w: username must be %d to %d characters", entities.ErrInvalidInput, minUsernameLength, maxUsernameLength)
	}
	for _, r := range username {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '-' {
			return fmt.Errorf("%w: username may only contain letters, digits, '_' and '-'", entities.ErrInvalidInput)
		}
	}
	return nil
}

package services

import (
	"context"
	"errors"
	"fmt"

	"gambler/challenge-service/domain/entities"
	"gambler/challenge-service/domain/interfaces"
	"gambler/challenge-service/domain/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type escrowService struct {
	accountRepo    interfaces.AccountRepository
	ledgerRepo     interfaces.LedgerRepository
	eventPublisher interfaces.EventPublisher
}

// NewEscrowService creates a new escrow service
func NewEscrowService(
	accountRepo interfaces.AccountRepository,
	ledgerRepo interfaces.LedgerRepository,
	eventPublisher interfaces.EventPublisher,
) interfaces.EscrowService {
	return &escrowService{
		accountRepo:    accountRepo,
		ledgerRepo:     ledgerRepo,
		eventPublisher: eventPublisher,
	}
}

// HoldChallengerStake debits the challenger's stake when a challenge is created
func (s *escrowService) HoldChallengerStake(ctx context.Context, challenge *entities.Challenge) error {
	stake := entities.RoundMoney(challenge.StakeAmount)
	if err := s.accountRepo.Debit(ctx, challenge.ChallengerID, stake); err != nil {
		return persistenceError("hold challenger stake", err)
	}
	challenge.ChallengerEscrow = stake

	s.record(ctx, challenge.ChallengerID, entities.TransactionTypeStake, stake, challenge.ID, "Stake held for challenge")
	return nil
}

// ReleaseChallengerStake refunds whatever is held from the challenger
func (s *escrowService) ReleaseChallengerStake(ctx context.Context, challenge *entities.Challenge) error {
	held := challenge.ChallengerEscrow
	if !held.IsPositive() {
		return nil
	}

	if err := s.accountRepo.Credit(ctx, challenge.ChallengerID, held); err != nil {
		return persistenceError("release challenger stake", err)
	}
	challenge.ChallengerEscrow = decimal.Zero

	s.record(ctx, challenge.ChallengerID, entities.TransactionTypeRefund, held, challenge.ID, "Stake returned")
	return nil
}

// CollectAcceptanceStakes tops up the challenger then debits the challenged party,
// always in that order. A failed second debit reverses the top-up.
func (s *escrowService) CollectAcceptanceStakes(ctx context.Context, challenge *entities.Challenge) (*interfaces.EscrowReceipt, error) {
	stake := entities.RoundMoney(challenge.StakeAmount)
	delta := stake.Sub(challenge.ChallengerEscrow)

	receipt := &interfaces.EscrowReceipt{
		ChallengerTopUp:  decimal.Zero,
		ChallengerExcess: decimal.Zero,
		ChallengedDebit:  decimal.Zero,
	}

	if delta.IsPositive() {
		if err := s.accountRepo.Debit(ctx, challenge.ChallengerID, delta); err != nil {
			return nil, persistenceError("collect challenger top-up", err)
		}
		receipt.ChallengerTopUp = delta
		s.record(ctx, challenge.ChallengerID, entities.TransactionTypeStake, delta, challenge.ID, "Stake increased by counter-offer")
	} else if delta.IsNegative() {
		receipt.ChallengerExcess = delta.Neg()
	}

	if err := s.accountRepo.Debit(ctx, challenge.ChallengedID, stake); err != nil {
		debitErr := persistenceError("collect challenged stake", err)
		if receipt.ChallengerTopUp.IsPositive() {
			if cerr := s.reverse(ctx, challenge, challenge.ChallengerID, receipt.ChallengerTopUp); cerr != nil {
				return nil, errors.Join(debitErr, cerr)
			}
		}
		return nil, debitErr
	}
	receipt.ChallengedDebit = stake
	s.record(ctx, challenge.ChallengedID, entities.TransactionTypeStake, stake, challenge.ID, "Stake held for accepted challenge")

	return receipt, nil
}

// ReverseAcceptanceStakes undoes CollectAcceptanceStakes in reverse order
func (s *escrowService) ReverseAcceptanceStakes(ctx context.Context, challenge *entities.Challenge, receipt *interfaces.EscrowReceipt) error {
	if receipt == nil {
		return nil
	}

	var errs []error
	if receipt.ChallengedDebit.IsPositive() {
		if err := s.reverse(ctx, challenge, challenge.ChallengedID, receipt.ChallengedDebit); err != nil {
			errs = append(errs, err)
		}
	}
	if receipt.ChallengerTopUp.IsPositive() {
		if err := s.reverse(ctx, challenge, challenge.ChallengerID, receipt.ChallengerTopUp); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RefundExcess returns stake the challenger over-escrowed before a lower counter-offer.
// Runs after the challenge is accepted, so a failure leaves funds owed to the challenger.
func (s *escrowService) RefundExcess(ctx context.Context, challenge *entities.Challenge, receipt *interfaces.EscrowReceipt) error {
	if receipt == nil || !receipt.ChallengerExcess.IsPositive() {
		return nil
	}

	if err := s.accountRepo.Credit(ctx, challenge.ChallengerID, receipt.ChallengerExcess); err != nil {
		log.WithFields(log.Fields{
			"challengeID":  challenge.ID,
			"challengerID": challenge.ChallengerID,
			"excess":       receipt.ChallengerExcess.StringFixed(entities.MoneyPlaces),
			"error":        err,
		}).Error("INCONSISTENCY: challenge accepted but excess escrow was not refunded")
		return fmt.Errorf("%w: failed to refund excess escrow: %w", entities.ErrPersistenceFailure, err)
	}

	s.record(ctx, challenge.ChallengerID, entities.TransactionTypeRefund, receipt.ChallengerExcess, challenge.ID, "Stake reduced by counter-offer")
	return nil
}

// PayWinner credits the winner's stake plus winnings at the winner's own odds
func (s *escrowService) PayWinner(ctx context.Context, challenge *entities.Challenge, winnerID uuid.UUID) (*entities.Payout, error) {
	odds, ok := challenge.OddsFor(winnerID)
	if !ok {
		if winnerID != challenge.ChallengedID {
			return nil, fmt.Errorf("%w: %s is not a party to challenge %s", entities.ErrInvalidInput, winnerID, challenge.ID)
		}
		odds = MirrorOdds(challenge.ChallengerOdds)
	}

	payout, err := CalculatePayout(odds, challenge.StakeAmount)
	if err != nil {
		return nil, fmt.Errorf("failed to price payout: %w", err)
	}

	if err := s.accountRepo.CreditWinnings(ctx, winnerID, payout.TotalReturn, payout.Winnings); err != nil {
		log.WithFields(log.Fields{
			"challengeID": challenge.ID,
			"winnerID":    winnerID,
			"odds":        odds,
			"totalPayout": payout.TotalReturn.StringFixed(entities.MoneyPlaces),
			"error":       err,
		}).Error("INCONSISTENCY: challenge completed but winner was not credited")
		return nil, fmt.Errorf("%w: failed to credit winner: %w", entities.ErrPersistenceFailure, err)
	}

	s.record(ctx, winnerID, entities.TransactionTypePayout, payout.TotalReturn, challenge.ID,
		fmt.Sprintf("Won challenge at %s", FormatAmericanOdds(odds)))
	return payout, nil
}

// RefundBoth returns each party's full stake, challenger first
func (s *escrowService) RefundBoth(ctx context.Context, challenge *entities.Challenge) error {
	stake := entities.RoundMoney(challenge.StakeAmount)

	var errs []error
	for _, userID := range []uuid.UUID{challenge.ChallengerID, challenge.ChallengedID} {
		if err := s.accountRepo.Credit(ctx, userID, stake); err != nil {
			log.WithFields(log.Fields{
				"challengeID": challenge.ID,
				"userID":      userID,
				"stake":       stake.StringFixed(entities.MoneyPlaces),
				"error":       err,
			}).Error("INCONSISTENCY: challenge voided but stake was not refunded")
			errs = append(errs, fmt.Errorf("%w: failed to refund %s: %w", entities.ErrPersistenceFailure, userID, err))
			continue
		}
		s.record(ctx, userID, entities.TransactionTypeRefund, stake, challenge.ID, "Stake refunded after disputed result")
	}
	return errors.Join(errs...)
}

// reverse credits back a debit taken during acceptance. A failure here is a compensation failure.
func (s *escrowService) reverse(ctx context.Context, challenge *entities.Challenge, userID uuid.UUID, amount decimal.Decimal) error {
	if err := s.accountRepo.Credit(ctx, userID, amount); err != nil {
		log.WithFields(log.Fields{
			"challengeID":      challenge.ID,
			"userID":           userID,
			"amount":           amount.StringFixed(entities.MoneyPlaces),
			"stake":            challenge.StakeAmount.StringFixed(entities.MoneyPlaces),
			"challengerEscrow": challenge.ChallengerEscrow.StringFixed(entities.MoneyPlaces),
			"error":            err,
		}).Error("Compensating credit failed")
		return fmt.Errorf("%w: failed to return %s to %s: %w", entities.ErrCompensationFailure, amount.StringFixed(entities.MoneyPlaces), userID, err)
	}

	s.record(ctx, userID, entities.TransactionTypeRefund, amount, challenge.ID, "Stake returned after failed acceptance")
	return nil
}

func (s *escrowService) record(ctx context.Context, userID uuid.UUID, txType entities.TransactionType, amount decimal.Decimal, challengeID uuid.UUID, description string) {
	utils.RecordLedgerEntry(ctx, s.ledgerRepo, s.eventPublisher,
		utils.NewChallengeLedgerEntry(userID, txType, amount, challengeID, description))
}

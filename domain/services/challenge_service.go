package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gambler/challenge-service/config"
	"gambler/challenge-service/domain/entities"
	"gambler/challenge-service/domain/events"
	"gambler/challenge-service/domain/interfaces"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// challengeListLimit bounds how many challenges feed a user's projections
const challengeListLimit = 200

type challengeService struct {
	config         *config.Config
	challengeRepo  interfaces.ChallengeRepository
	accountRepo    interfaces.AccountRepository
	escrow         interfaces.EscrowService
	ratings        interfaces.RatingService
	eventPublisher interfaces.EventPublisher
}

// NewChallengeService creates a new challenge service
func NewChallengeService(
	challengeRepo interfaces.ChallengeRepository,
	accountRepo interfaces.AccountRepository,
	escrow interfaces.EscrowService,
	ratings interfaces.RatingService,
	eventPublisher interfaces.EventPublisher,
) interfaces.ChallengeService {
	return &challengeService{
		config:         config.Get(),
		challengeRepo:  challengeRepo,
		accountRepo:    accountRepo,
		escrow:         escrow,
		ratings:        ratings,
		eventPublisher: eventPublisher,
	}
}

// CreateChallenge escrows the challenger's stake and opens the negotiation
func (s *challengeService) CreateChallenge(ctx context.Context, params interfaces.CreateChallengeParams) (*entities.Challenge, error) {
	if params.ChallengerID == params.ChallengedID {
		return nil, fmt.Errorf("%w: cannot challenge yourself", entities.ErrInvalidInput)
	}
	if !params.GameType.IsValid() {
		return nil, fmt.Errorf("%w: unknown game type %q", entities.ErrInvalidInput, params.GameType)
	}
	stake, err := s.validateStake(params.Stake)
	if err != nil {
		return nil, err
	}

	odds := params.Odds
	if odds == 0 {
		quote, err := s.QuoteOdds(ctx, params.ChallengerID, params.ChallengedID, params.GameType)
		if err != nil {
			return nil, fmt.Errorf("failed to quote odds: %w", err)
		}
		odds = quote.ChallengerOdds
	} else if err := ValidateOdds(odds, s.config.MaxOddsMagnitude); err != nil {
		return nil, err
	}

	challenged, err := s.accountRepo.GetByID(ctx, params.ChallengedID)
	if err != nil {
		return nil, persistenceError("get challenged account", err)
	}
	if challenged == nil {
		return nil, fmt.Errorf("%w: account %s", entities.ErrNotFound, params.ChallengedID)
	}

	now := time.Now()
	challenge := &entities.Challenge{
		ID:               uuid.New(),
		ChallengerID:     params.ChallengerID,
		ChallengedID:     params.ChallengedID,
		GameType:         params.GameType,
		StakeAmount:      stake,
		ChallengerOdds:   odds,
		Status:           entities.ChallengeStatusNegotiating,
		Turn:             entities.TurnAwaitingChallenged,
		ChallengerEscrow: decimal.Zero,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.escrow.HoldChallengerStake(ctx, challenge); err != nil {
		return nil, err
	}

	if err := s.challengeRepo.Create(ctx, challenge); err != nil {
		createErr := persistenceError("create challenge", err)
		if rerr := s.escrow.ReleaseChallengerStake(ctx, challenge); rerr != nil {
			log.WithFields(log.Fields{
				"challengeID":  challenge.ID,
				"challengerID": challenge.ChallengerID,
				"stake":        stake.StringFixed(entities.MoneyPlaces),
				"error":        rerr,
			}).Error("Compensating refund failed after challenge insert failed")
			return nil, errors.Join(createErr, fmt.Errorf("%w: %w", entities.ErrCompensationFailure, rerr))
		}
		return nil, createErr
	}

	log.WithFields(log.Fields{
		"challengeID":  challenge.ID,
		"challengerID": challenge.ChallengerID,
		"challengedID": challenge.ChallengedID,
		"gameType":     challenge.GameType,
		"stake":        stake.StringFixed(entities.MoneyPlaces),
		"odds":         odds,
	}).Info("Challenge created")

	s.publish(events.EventTypeChallengeCreated, challenge, "", &params.ChallengerID)
	return challenge, nil
}

// CounterOffer re-prices the challenge and hands the turn to the other party. No money moves.
func (s *challengeService) CounterOffer(ctx context.Context, challengeID, actorID uuid.UUID, stake decimal.Decimal, odds int) (*entities.Challenge, error) {
	challenge, err := s.loadForNegotiation(ctx, challengeID, actorID, true)
	if err != nil {
		return nil, err
	}

	stake, err = s.validateStake(stake)
	if err != nil {
		return nil, err
	}
	if err := ValidateOdds(odds, s.config.MaxOddsMagnitude); err != nil {
		return nil, err
	}

	updated := *challenge
	updated.StakeAmount = stake
	updated.ChallengedOdds = &odds
	updated.Status = entities.ChallengeStatusCounterOffer
	updated.Turn = challenge.TurnAfter(actorID)
	updated.UpdatedAt = time.Now()

	if err := s.writeIfStatus(ctx, &updated, challenge.Status); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"challengeID": challengeID,
		"actorID":     actorID,
		"stake":       stake.StringFixed(entities.MoneyPlaces),
		"odds":        odds,
		"turn":        updated.Turn,
	}).Info("Counter-offer made")

	s.publish(events.EventTypeChallengeCountered, &updated, challenge.Status, &actorID)
	return &updated, nil
}

// AcceptChallenge collects the remaining stakes and locks the challenge.
// If the excess refund fails after acceptance, the accepted challenge is returned with the error.
func (s *challengeService) AcceptChallenge(ctx context.Context, challengeID, actorID uuid.UUID) (*entities.Challenge, error) {
	challenge, err := s.loadForNegotiation(ctx, challengeID, actorID, true)
	if err != nil {
		return nil, err
	}

	receipt, err := s.escrow.CollectAcceptanceStakes(ctx, challenge)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	updated := *challenge
	updated.Status = entities.ChallengeStatusAccepted
	updated.Turn = entities.TurnAccepted
	updated.ChallengerEscrow = challenge.StakeAmount
	updated.SetResultStatus(entities.ResultStatusAwaitingFirstReport)
	updated.AcceptedAt = &now
	updated.UpdatedAt = now
	if updated.ChallengedOdds == nil {
		mirrored := MirrorOdds(challenge.ChallengerOdds)
		updated.ChallengedOdds = &mirrored
	}

	if err := s.writeIfStatus(ctx, &updated, challenge.Status); err != nil {
		if rerr := s.escrow.ReverseAcceptanceStakes(ctx, challenge, receipt); rerr != nil {
			return nil, errors.Join(err, rerr)
		}
		return nil, err
	}

	log.WithFields(log.Fields{
		"challengeID":    challengeID,
		"actorID":        actorID,
		"stake":          updated.StakeAmount.StringFixed(entities.MoneyPlaces),
		"challengerOdds": updated.ChallengerOdds,
		"challengedOdds": *updated.ChallengedOdds,
	}).Info("Challenge accepted")

	s.publish(events.EventTypeChallengeAccepted, &updated, challenge.Status, &actorID)

	if err := s.escrow.RefundExcess(ctx, challenge, receipt); err != nil {
		return &updated, err
	}
	return &updated, nil
}

// DeclineChallenge closes the negotiation and refunds the challenger. Either party may decline.
func (s *challengeService) DeclineChallenge(ctx context.Context, challengeID, actorID uuid.UUID) (*entities.Challenge, error) {
	challenge, err := s.loadForNegotiation(ctx, challengeID, actorID, false)
	if err != nil {
		return nil, err
	}
	return s.closeNegotiation(ctx, challenge, events.EventTypeChallengeDeclined, &actorID)
}

// ExpireChallenge declines a stale negotiation on behalf of the system
func (s *challengeService) ExpireChallenge(ctx context.Context, challengeID uuid.UUID) (*entities.Challenge, error) {
	challenge, err := s.load(ctx, challengeID)
	if err != nil {
		return nil, err
	}
	if challenge.IsTerminal() {
		return nil, entities.ErrAlreadySettled
	}
	if !challenge.Status.IsNegotiating() {
		return nil, fmt.Errorf("%w: challenge %s is %s", entities.ErrInvalidTransition, challengeID, challenge.Status)
	}
	return s.closeNegotiation(ctx, challenge, events.EventTypeChallengeExpired, nil)
}

// GetChallenge retrieves a challenge by ID
func (s *challengeService) GetChallenge(ctx context.Context, challengeID uuid.UUID) (*entities.Challenge, error) {
	return s.load(ctx, challengeID)
}

// ListForUser returns the challenges the user is party to, newest first
func (s *challengeService) ListForUser(ctx context.Context, userID uuid.UUID) ([]*entities.Challenge, error) {
	challenges, err := s.challengeRepo.ListByUser(ctx, userID, challengeListLimit)
	if err != nil {
		return nil, persistenceError("list challenges", err)
	}
	return challenges, nil
}

// QuoteOdds prices a potential challenge from both players' ratings
func (s *challengeService) QuoteOdds(ctx context.Context, challengerID, challengedID uuid.UUID, gameType entities.GameType) (*interfaces.OddsQuote, error) {
	challengerRating, err := s.ratings.GetRating(ctx, challengerID, gameType)
	if err != nil {
		return nil, err
	}
	challengedRating, err := s.ratings.GetRating(ctx, challengedID, gameType)
	if err != nil {
		return nil, err
	}

	challengerOdds, challengedOdds := QuoteOdds(challengerRating.EloRating, challengedRating.EloRating)
	return &interfaces.OddsQuote{
		GameType:          gameType,
		ChallengerRating:  challengerRating.EloRating,
		ChallengedRating:  challengedRating.EloRating,
		ChallengerWinProb: WinProbability(challengerRating.EloRating, challengedRating.EloRating),
		ChallengerOdds:    ClampOdds(challengerOdds, s.config.MaxOddsMagnitude),
		ChallengedOdds:    ClampOdds(challengedOdds, s.config.MaxOddsMagnitude),
	}, nil
}

// closeNegotiation moves a negotiating challenge to declined and returns the challenger's escrow
func (s *challengeService) closeNegotiation(ctx context.Context, challenge *entities.Challenge, kind events.EventType, actorID *uuid.UUID) (*entities.Challenge, error) {
	now := time.Now()
	updated := *challenge
	updated.Status = entities.ChallengeStatusDeclined
	updated.Turn = entities.TurnClosed
	updated.ChallengerEscrow = decimal.Zero
	updated.CompletedAt = &now
	updated.UpdatedAt = now

	if err := s.writeIfStatus(ctx, &updated, challenge.Status); err != nil {
		return nil, err
	}

	held := *challenge
	if err := s.escrow.ReleaseChallengerStake(ctx, &held); err != nil {
		log.WithFields(log.Fields{
			"challengeID":  challenge.ID,
			"challengerID": challenge.ChallengerID,
			"escrow":       challenge.ChallengerEscrow.StringFixed(entities.MoneyPlaces),
			"error":        err,
		}).Error("INCONSISTENCY: challenge closed but challenger escrow was not refunded")
		return nil, err
	}

	log.WithFields(log.Fields{
		"challengeID": challenge.ID,
		"reason":      kind,
		"refunded":    challenge.ChallengerEscrow.StringFixed(entities.MoneyPlaces),
	}).Info("Negotiation closed")

	s.publish(kind, &updated, challenge.Status, actorID)
	return &updated, nil
}

// loadForNegotiation loads a challenge that must still be negotiating and checks the actor may act on it
func (s *challengeService) loadForNegotiation(ctx context.Context, challengeID, actorID uuid.UUID, requireTurn bool) (*entities.Challenge, error) {
	challenge, err := s.load(ctx, challengeID)
	if err != nil {
		return nil, err
	}
	if challenge.IsTerminal() {
		return nil, entities.ErrAlreadySettled
	}
	if !challenge.IsParticipant(actorID) {
		return nil, fmt.Errorf("%w: %s is not a party to challenge %s", entities.ErrInvalidTransition, actorID, challengeID)
	}
	if !challenge.Status.IsNegotiating() {
		return nil, fmt.Errorf("%w: challenge %s is %s", entities.ErrInvalidTransition, challengeID, challenge.Status)
	}
	if requireTurn && !challenge.IsResponder(actorID) {
		return nil, fmt.Errorf("%w: it is not %s's turn", entities.ErrInvalidTransition, actorID)
	}
	return challenge, nil
}

func (s *challengeService) load(ctx context.Context, challengeID uuid.UUID) (*entities.Challenge, error) {
	challenge, err := s.challengeRepo.GetByID(ctx, challengeID)
	if err != nil {
		return nil, persistenceError("get challenge", err)
	}
	if challenge == nil {
		return nil, fmt.Errorf("%w: challenge %s", entities.ErrNotFound, challengeID)
	}
	return challenge, nil
}

// writeIfStatus performs the guarded write and explains a lost race
func (s *challengeService) writeIfStatus(ctx context.Context, challenge *entities.Challenge, expected entities.ChallengeStatus) error {
	ok, err := s.challengeRepo.UpdateIfStatus(ctx, challenge, expected)
	if err != nil {
		return persistenceError("update challenge", err)
	}
	if !ok {
		return lostRace(ctx, s.challengeRepo, challenge.ID)
	}
	return nil
}

func (s *challengeService) validateStake(stake decimal.Decimal) (decimal.Decimal, error) {
	stake = entities.RoundMoney(stake)
	if stake.LessThan(entities.MinStake) {
		return decimal.Zero, fmt.Errorf("%w: stake must be at least %s", entities.ErrInvalidAmount, entities.MinStake.StringFixed(entities.MoneyPlaces))
	}
	return stake, nil
}

func (s *challengeService) publish(kind events.EventType, challenge *entities.Challenge, oldStatus entities.ChallengeStatus, actorID *uuid.UUID) {
	event := events.NewChallengeStateChangeEvent(kind, challenge, oldStatus, actorID)
	if err := s.eventPublisher.Publish(event); err != nil {
		log.WithError(err).WithField("eventType", kind).Error("Failed to publish challenge event")
	}
}

// lostRace re-reads a challenge after a guarded write matched no row
func lostRace(ctx context.Context, repo interfaces.ChallengeRepository, challengeID uuid.UUID) error {
	current, err := repo.GetByID(ctx, challengeID)
	if err != nil {
		return persistenceError("re-read challenge", err)
	}
	if current == nil {
		return fmt.Errorf("%w: challenge %s", entities.ErrNotFound, challengeID)
	}
	if current.IsTerminal() {
		return entities.ErrAlreadySettled
	}
	return fmt.Errorf("%w: challenge %s changed concurrently", entities.ErrInvalidTransition, challengeID)
}

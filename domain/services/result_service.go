package services

import (
	"context"
	"fmt"
	"time"

	"gambler/challenge-service/domain/entities"
	"gambler/challenge-service/domain/events"
	"gambler/challenge-service/domain/interfaces"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// maxReportAttempts bounds retries of a report write that lost a race
const maxReportAttempts = 3

type resultService struct {
	challengeRepo  interfaces.ChallengeRepository
	escrow         interfaces.EscrowService
	ratings        interfaces.RatingService
	eventPublisher interfaces.EventPublisher
}

// NewResultService creates a new result service
func NewResultService(
	challengeRepo interfaces.ChallengeRepository,
	escrow interfaces.EscrowService,
	ratings interfaces.RatingService,
	eventPublisher interfaces.EventPublisher,
) interfaces.ResultService {
	return &resultService{
		challengeRepo:  challengeRepo,
		escrow:         escrow,
		ratings:        ratings,
		eventPublisher: eventPublisher,
	}
}

// ReportResult records who the reporter believes won and evaluates once both have reported
func (s *resultService) ReportResult(ctx context.Context, challengeID, reporterID, winnerID uuid.UUID) (*interfaces.ReportOutcome, error) {
	for attempt := 1; attempt <= maxReportAttempts; attempt++ {
		challenge, err := s.load(ctx, challengeID)
		if err != nil {
			return nil, err
		}
		if challenge.IsTerminal() {
			return nil, entities.ErrAlreadySettled
		}
		if !challenge.IsParticipant(reporterID) {
			return nil, fmt.Errorf("%w: %s is not a party to challenge %s", entities.ErrInvalidTransition, reporterID, challengeID)
		}
		if !challenge.IsParticipant(winnerID) {
			return nil, fmt.Errorf("%w: winner %s is not a party to challenge %s", entities.ErrInvalidInput, winnerID, challengeID)
		}
		if challenge.Status != entities.ChallengeStatusAccepted {
			return nil, fmt.Errorf("%w: challenge %s is %s", entities.ErrInvalidTransition, challengeID, challenge.Status)
		}
		if challenge.ReportOf(reporterID) != nil {
			return nil, fmt.Errorf("%w: result already reported", entities.ErrInvalidTransition)
		}

		updated := *challenge
		updated.SetReport(reporterID, winnerID)
		if !updated.BothReported() {
			updated.SetResultStatus(entities.ResultStatusAwaitingSecondReport)
		}
		updated.UpdatedAt = time.Now()

		ok, err := s.challengeRepo.UpdateIfStatus(ctx, &updated, entities.ChallengeStatusAccepted)
		if err != nil {
			return nil, persistenceError("record result", err)
		}
		if !ok {
			log.WithFields(log.Fields{
				"challengeID": challengeID,
				"reporterID":  reporterID,
				"attempt":     attempt,
			}).Debug("Result write lost a race, retrying")
			continue
		}

		log.WithFields(log.Fields{
			"challengeID": challengeID,
			"reporterID":  reporterID,
			"winnerID":    winnerID,
		}).Info("Result reported")

		event := events.ResultReportedEvent{
			ChallengeID: challengeID,
			ReporterID:  reporterID,
			OpponentID:  updated.GetOpponent(reporterID),
			WinnerID:    winnerID,
		}
		if err := s.eventPublisher.Publish(event); err != nil {
			log.WithError(err).Error("Failed to publish result reported event")
		}

		if !updated.BothReported() {
			return &interfaces.ReportOutcome{Kind: interfaces.ReportOutcomeRecorded, Challenge: &updated}, nil
		}
		return s.evaluate(ctx, &updated)
	}

	return nil, fmt.Errorf("%w: result for challenge %s kept conflicting after %d attempts",
		entities.ErrPersistenceFailure, challengeID, maxReportAttempts)
}

// SettleChallenge evaluates a challenge whose reports are both in. Safe to call repeatedly:
// once the challenge is terminal every call returns ErrAlreadySettled and moves no money.
func (s *resultService) SettleChallenge(ctx context.Context, challengeID uuid.UUID) (*interfaces.ReportOutcome, error) {
	challenge, err := s.load(ctx, challengeID)
	if err != nil {
		return nil, err
	}
	if challenge.IsTerminal() {
		return nil, entities.ErrAlreadySettled
	}
	if challenge.Status != entities.ChallengeStatusAccepted {
		return nil, fmt.Errorf("%w: challenge %s is %s", entities.ErrInvalidTransition, challengeID, challenge.Status)
	}
	if !challenge.BothReported() {
		return nil, fmt.Errorf("%w: challenge %s is still awaiting results", entities.ErrInvalidTransition, challengeID)
	}
	return s.evaluate(ctx, challenge)
}

// evaluate applies the dispute law to a challenge with both reports in
func (s *resultService) evaluate(ctx context.Context, challenge *entities.Challenge) (*interfaces.ReportOutcome, error) {
	if winnerID, agreed := challenge.AgreedWinner(); agreed {
		return s.settle(ctx, challenge, winnerID)
	}
	if challenge.DisputeCount+1 < entities.MaxDisputes {
		return s.retryAfterDispute(ctx, challenge)
	}
	return s.voidAfterDispute(ctx, challenge)
}

// settle applies ratings, completes the challenge and pays the winner, in that order
func (s *resultService) settle(ctx context.Context, challenge *entities.Challenge, winnerID uuid.UUID) (*interfaces.ReportOutcome, error) {
	loserID := challenge.GetOpponent(winnerID)

	ratings, err := s.ratings.ApplyMatchResult(ctx, challenge.ID, challenge.GameType, winnerID, loserID)
	if err != nil {
		log.WithFields(log.Fields{
			"challengeID": challenge.ID,
			"error":       err,
		}).Error("Rating update failed, settlement aborted")
		return nil, err
	}

	now := time.Now()
	updated := *challenge
	updated.Status = entities.ChallengeStatusCompleted
	updated.Turn = entities.TurnClosed
	updated.SetResultStatus(entities.ResultStatusAgreed)
	updated.FinalWinnerID = &winnerID
	updated.CompletedAt = &now
	updated.UpdatedAt = now

	if err := s.writeIfStatus(ctx, &updated); err != nil {
		return nil, err
	}

	payout, err := s.escrow.PayWinner(ctx, &updated, winnerID)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"challengeID": challenge.ID,
		"winnerID":    winnerID,
		"loserID":     loserID,
		"odds":        payout.Odds,
		"totalPayout": payout.TotalReturn.StringFixed(entities.MoneyPlaces),
	}).Info("Challenge settled")

	s.publish(events.NewChallengeStateChangeEvent(events.EventTypeChallengeSettled, &updated, challenge.Status, nil))
	s.publish(events.ChallengeSettledEvent{
		ChallengeID: challenge.ID,
		GameType:    challenge.GameType,
		WinnerID:    winnerID,
		LoserID:     loserID,
		StakeAmount: challenge.StakeAmount,
		Winnings:    payout.Winnings,
		TotalPayout: payout.TotalReturn,
	})

	return &interfaces.ReportOutcome{
		Kind:      interfaces.ReportOutcomeSettled,
		Challenge: &updated,
		Payout:    payout,
		Ratings:   ratings,
	}, nil
}

// retryAfterDispute clears both reports so the parties can report again
func (s *resultService) retryAfterDispute(ctx context.Context, challenge *entities.Challenge) (*interfaces.ReportOutcome, error) {
	updated := *challenge
	updated.ClearReports()
	updated.DisputeCount = challenge.DisputeCount + 1
	updated.SetResultStatus(entities.ResultStatusDisputedRetry)
	updated.UpdatedAt = time.Now()

	if err := s.writeIfStatus(ctx, &updated); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"challengeID":  challenge.ID,
		"disputeCount": updated.DisputeCount,
	}).Warn("Results disagree, asking both parties to report again")

	s.publish(events.NewChallengeStateChangeEvent(events.EventTypeChallengeDisputed, &updated, challenge.Status, nil))
	return &interfaces.ReportOutcome{Kind: interfaces.ReportOutcomeDisputeRetry, Challenge: &updated}, nil
}

// voidAfterDispute voids the challenge and returns both stakes
func (s *resultService) voidAfterDispute(ctx context.Context, challenge *entities.Challenge) (*interfaces.ReportOutcome, error) {
	now := time.Now()
	updated := *challenge
	updated.Status = entities.ChallengeStatusVoided
	updated.Turn = entities.TurnClosed
	updated.DisputeCount = entities.MaxDisputes
	updated.SetResultStatus(entities.ResultStatusDisputedVoid)
	updated.CompletedAt = &now
	updated.UpdatedAt = now

	if err := s.writeIfStatus(ctx, &updated); err != nil {
		return nil, err
	}

	if err := s.escrow.RefundBoth(ctx, &updated); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"challengeID": challenge.ID,
		"stake":       challenge.StakeAmount.StringFixed(entities.MoneyPlaces),
	}).Warn("Results disagreed twice, challenge voided and stakes refunded")

	s.publish(events.NewChallengeStateChangeEvent(events.EventTypeChallengeVoided, &updated, challenge.Status, nil))
	return &interfaces.ReportOutcome{Kind: interfaces.ReportOutcomeVoided, Challenge: &updated}, nil
}

func (s *resultService) load(ctx context.Context, challengeID uuid.UUID) (*entities.Challenge, error) {
	challenge, err := s.challengeRepo.GetByID(ctx, challengeID)
	if err != nil {
		return nil, persistenceError("get challenge", err)
	}
	if challenge == nil {
		return nil, fmt.Errorf("%w: challenge %s", entities.ErrNotFound, challengeID)
	}
	return challenge, nil
}

// writeIfStatus writes a challenge that must still be accepted
func (s *resultService) writeIfStatus(ctx context.Context, challenge *entities.Challenge) error {
	ok, err := s.challengeRepo.UpdateIfStatus(ctx, challenge, entities.ChallengeStatusAccepted)
	if err != nil {
		return persistenceError("update challenge", err)
	}
	if !ok {
		return lostRace(ctx, s.challengeRepo, challenge.ID)
	}
	return nil
}

func (s *resultService) publish(event events.Event) {
	if err := s.eventPublisher.Publish(event); err != nil {
		log.WithError(err).WithField("eventType", event.Type()).Error("Failed to publish challenge event")
	}
}

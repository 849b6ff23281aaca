package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gambler/challenge-service/domain/entities"
	"gambler/challenge-service/domain/events"
	"gambler/challenge-service/domain/interfaces"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	defaultLeaderboardLimit = 25
	maxLeaderboardLimit     = 100
	maxRatingAttempts       = 5
)

type ratingService struct {
	ratingRepo     interfaces.RatingRepository
	eventPublisher interfaces.EventPublisher
	calculator     *EloCalculator
}

// NewRatingService creates a new rating service
func NewRatingService(
	ratingRepo interfaces.RatingRepository,
	eventPublisher interfaces.EventPublisher,
) interfaces.RatingService {
	return &ratingService{
		ratingRepo:     ratingRepo,
		eventPublisher: eventPublisher,
		calculator:     NewEloCalculator(),
	}
}

// ApplyMatchResult updates both players' ratings for a decisive challenge.
// A replay for a challenge that was already applied returns nil without writing.
func (s *ratingService) ApplyMatchResult(ctx context.Context, challengeID uuid.UUID, gameType entities.GameType, winnerID, loserID uuid.UUID) (*entities.MatchRatingUpdate, error) {
	if winnerID == loserID {
		return nil, fmt.Errorf("%w: winner and loser must differ", entities.ErrRatingUpdateFailure)
	}

	var update *entities.MatchRatingUpdate
	var applied bool
	for attempt := 1; ; attempt++ {
		winner, err := s.getOrDefault(ctx, winnerID, gameType)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to load winner rating: %w", entities.ErrRatingUpdateFailure, err)
		}
		loser, err := s.getOrDefault(ctx, loserID, gameType)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to load loser rating: %w", entities.ErrRatingUpdateFailure, err)
		}

		update = s.computeUpdate(challengeID, winner, loser)
		applied, err = s.ratingRepo.ApplyMatchUpdate(ctx, update)
		if err == nil {
			break
		}
		if !errors.Is(err, entities.ErrStaleRating) || attempt == maxRatingAttempts {
			return nil, fmt.Errorf("%w: %w", entities.ErrRatingUpdateFailure, err)
		}
		log.WithFields(log.Fields{
			"challengeID": challengeID,
			"attempt":     attempt,
		}).Debug("Rating changed during update, re-reading")
	}
	if !applied {
		log.WithField("challengeID", challengeID).Info("Ratings already applied for challenge, skipping")
		return nil, nil
	}

	log.WithFields(log.Fields{
		"challengeID": challengeID,
		"gameType":    gameType,
		"winnerID":    winnerID,
		"winnerOld":   update.WinnerChange.OldRating,
		"winnerNew":   update.WinnerChange.NewRating,
		"loserID":     loserID,
		"loserOld":    update.LoserChange.OldRating,
		"loserNew":    update.LoserChange.NewRating,
	}).Info("Applied rating update")

	for _, change := range []*entities.RatingChange{update.WinnerChange, update.LoserChange} {
		event := events.RatingChangeEvent{
			ChallengeID: challengeID,
			UserID:      change.UserID,
			GameType:    gameType,
			OldRating:   change.OldRating,
			NewRating:   change.NewRating,
		}
		if err := s.eventPublisher.Publish(event); err != nil {
			log.WithError(err).Error("Failed to publish rating change event")
		}
	}

	return update, nil
}

// computeUpdate derives both new records from the pre-match records. Inputs are not modified.
func (s *ratingService) computeUpdate(challengeID uuid.UUID, winner, loser *entities.RatingRecord) *entities.MatchRatingUpdate {
	now := time.Now()

	newWinner := *winner
	newWinner.EloRating = s.calculator.WinnerRating(winner.EloRating, loser.EloRating, winner.GamesPlayed)
	newWinner.GamesPlayed++
	newWinner.Wins++
	newWinner.CurrentWinStreak++
	newWinner.UpdatedAt = now

	newLoser := *loser
	newLoser.EloRating = s.calculator.LoserRating(loser.EloRating, winner.EloRating, loser.GamesPlayed)
	newLoser.GamesPlayed++
	newLoser.Losses++
	newLoser.CurrentWinStreak = 0
	newLoser.UpdatedAt = now

	return &entities.MatchRatingUpdate{
		ChallengeID: challengeID,
		Winner:      &newWinner,
		Loser:       &newLoser,
		WinnerChange: &entities.RatingChange{
			ChallengeID: challengeID,
			UserID:      winner.UserID,
			GameType:    winner.GameType,
			OldRating:   winner.EloRating,
			NewRating:   newWinner.EloRating,
			CreatedAt:   now,
		},
		LoserChange: &entities.RatingChange{
			ChallengeID: challengeID,
			UserID:      loser.UserID,
			GameType:    loser.GameType,
			OldRating:   loser.EloRating,
			NewRating:   newLoser.EloRating,
			CreatedAt:   now,
		},
	}
}

// GetRating returns a player's rating, defaulting when they have none
func (s *ratingService) GetRating(ctx context.Context, userID uuid.UUID, gameType entities.GameType) (*entities.RatingRecord, error) {
	if !gameType.IsValid() {
		return nil, fmt.Errorf("%w: unknown game type %q", entities.ErrInvalidInput, gameType)
	}
	record, err := s.getOrDefault(ctx, userID, gameType)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get rating: %w", entities.ErrPersistenceFailure, err)
	}
	return record, nil
}

// GetLeaderboard returns the top rated players for a game type
func (s *ratingService) GetLeaderboard(ctx context.Context, gameType entities.GameType, limit int) ([]*entities.RatingRecord, error) {
	if !gameType.IsValid() {
		return nil, fmt.Errorf("%w: unknown game type %q", entities.ErrInvalidInput, gameType)
	}
	if limit <= 0 {
		limit = defaultLeaderboardLimit
	}
	if limit > maxLeaderboardLimit {
		limit = maxLeaderboardLimit
	}

	records, err := s.ratingRepo.GetLeaderboard(ctx, gameType, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get leaderboard: %w", entities.ErrPersistenceFailure, err)
	}
	return records, nil
}

func (s *ratingService) getOrDefault(ctx context.Context, userID uuid.UUID, gameType entities.GameType) (*entities.RatingRecord, error) {
	record, err := s.ratingRepo.Get(ctx, userID, gameType)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return entities.NewRatingRecord(userID, gameType), nil
	}
	return record, nil
}

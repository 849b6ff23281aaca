package repository

import (
	"context"
	"errors"
	"sync"
	"testing"

	"gambler/challenge-service/domain/entities"
	"gambler/challenge-service/domain/services"
	"gambler/challenge-service/domain/testhelpers"
	"gambler/challenge-service/repository/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func matchUpdate(challengeID, winnerID, loserID uuid.UUID, winnerNew, loserNew int) *entities.MatchRatingUpdate {
	return &entities.MatchRatingUpdate{
		ChallengeID: challengeID,
		Winner: &entities.RatingRecord{
			UserID: winnerID, GameType: entities.GameTypeFIFA, EloRating: winnerNew,
			GamesPlayed: 1, Wins: 1, CurrentWinStreak: 1,
		},
		Loser: &entities.RatingRecord{
			UserID: loserID, GameType: entities.GameTypeFIFA, EloRating: loserNew,
			GamesPlayed: 1, Losses: 1,
		},
		WinnerChange: &entities.RatingChange{
			ChallengeID: challengeID, UserID: winnerID, GameType: entities.GameTypeFIFA,
			OldRating: entities.DefaultRating, NewRating: winnerNew,
		},
		LoserChange: &entities.RatingChange{
			ChallengeID: challengeID, UserID: loserID, GameType: entities.GameTypeFIFA,
			OldRating: entities.DefaultRating, NewRating: loserNew,
		},
	}
}

func TestRatingRepository_ApplyMatchUpdate(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewRatingRepository(testDB.DB)
	challenges := NewChallengeRepository(testDB.DB)
	ctx := context.Background()
	winnerID, loserID := testutil.CreateTestAccountPair(t, testDB.DB, "100.00")

	challenge := testutil.NewTestChallenge(winnerID, loserID, "20.00")
	require.NoError(t, challenges.Create(ctx, challenge))

	none, err := repo.Get(ctx, winnerID, entities.GameTypeFIFA)
	require.NoError(t, err)
	assert.Nil(t, none)

	applied, err := repo.ApplyMatchUpdate(ctx, matchUpdate(challenge.ID, winnerID, loserID, 1216, 1184))
	require.NoError(t, err)
	assert.True(t, applied)

	winner, err := repo.Get(ctx, winnerID, entities.GameTypeFIFA)
	require.NoError(t, err)
	require.NotNil(t, winner)
	assert.Equal(t, 1216, winner.EloRating)
	assert.Equal(t, 1, winner.Wins)

	t.Run("replay writes nothing", func(t *testing.T) {
		applied, err := repo.ApplyMatchUpdate(ctx, matchUpdate(challenge.ID, winnerID, loserID, 1300, 1100))
		require.NoError(t, err)
		assert.False(t, applied)

		winner, err := repo.Get(ctx, winnerID, entities.GameTypeFIFA)
		require.NoError(t, err)
		assert.Equal(t, 1216, winner.EloRating)
	})

	t.Run("history and leaderboard", func(t *testing.T) {
		history, err := repo.GetHistory(ctx, loserID, entities.GameTypeFIFA, 10)
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, -16, history[0].Delta())

		board, err := repo.GetLeaderboard(ctx, entities.GameTypeFIFA, 10)
		require.NoError(t, err)
		require.Len(t, board, 2)
		assert.Equal(t, winnerID, board[0].UserID)

		empty, err := repo.GetLeaderboard(ctx, entities.GameTypeMadden, 10)
		require.NoError(t, err)
		assert.Empty(t, empty)
	})
}

func TestRatingRepository_ApplyMatchUpdateInsideTransaction(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	ctx := context.Background()
	winnerID, loserID := testutil.CreateTestAccountPair(t, testDB.DB, "100.00")
	challenge := testutil.NewTestChallenge(winnerID, loserID, "20.00")
	require.NoError(t, NewChallengeRepository(testDB.DB).Create(ctx, challenge))

	tx, err := testDB.DB.Begin(ctx)
	require.NoError(t, err)
	defer func() { _ = tx.Rollback(ctx) }()

	applied, err := NewRatingRepositoryScoped(tx).ApplyMatchUpdate(ctx, matchUpdate(challenge.ID, winnerID, loserID, 1216, 1184))
	require.NoError(t, err)
	assert.True(t, applied)
	require.NoError(t, tx.Rollback(ctx))

	record, err := NewRatingRepository(testDB.DB).Get(ctx, winnerID, entities.GameTypeFIFA)
	require.NoError(t, err)
	assert.Nil(t, record)
}

func TestRatingRepository_ApplyMatchUpdateRejectsStaleRecord(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewRatingRepository(testDB.DB)
	challenges := NewChallengeRepository(testDB.DB)
	ctx := context.Background()
	winnerID, loserID := testutil.CreateTestAccountPair(t, testDB.DB, "100.00")
	otherLoser := testutil.CreateTestAccount(t, testDB.DB, "stale_loser", "100.00")

	first := testutil.NewTestChallenge(winnerID, loserID, "20.00")
	second := testutil.NewTestChallenge(winnerID, otherLoser, "20.00")
	require.NoError(t, challenges.Create(ctx, first))
	require.NoError(t, challenges.Create(ctx, second))

	// Both updates were computed from the same empty record
	applied, err := repo.ApplyMatchUpdate(ctx, matchUpdate(first.ID, winnerID, loserID, 1216, 1184))
	require.NoError(t, err)
	require.True(t, applied)

	applied, err = repo.ApplyMatchUpdate(ctx, matchUpdate(second.ID, winnerID, otherLoser, 1216, 1184))
	assert.False(t, applied)
	assert.ErrorIs(t, err, entities.ErrStaleRating)

	// Nothing from the rejected update is kept
	history, err := repo.GetHistory(ctx, otherLoser, entities.GameTypeFIFA, 10)
	require.NoError(t, err)
	assert.Empty(t, history)
	none, err := repo.Get(ctx, otherLoser, entities.GameTypeFIFA)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestRatingRepository_ConcurrentSettlementsKeepEveryGame(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	ctx := context.Background()
	repo := NewRatingRepository(testDB.DB)
	challenges := NewChallengeRepository(testDB.DB)
	ratings := services.NewRatingService(repo, &testhelpers.RecordingEventPublisher{})
	winnerID := testutil.CreateTestAccount(t, testDB.DB, "busy_winner", "100.00")

	const matches = 4
	type match struct{ challengeID, loserID uuid.UUID }
	var pending []match
	for i := 0; i < matches; i++ {
		loserID := testutil.CreateTestAccount(t, testDB.DB, "busy_loser_"+string(rune('a'+i)), "100.00")
		challenge := testutil.NewTestChallenge(winnerID, loserID, "20.00")
		require.NoError(t, challenges.Create(ctx, challenge))
		pending = append(pending, match{challenge.ID, loserID})
	}

	var wg sync.WaitGroup
	errs := make(chan error, matches)
	for _, m := range pending {
		wg.Add(1)
		go func(m match) {
			defer wg.Done()
			_, err := ratings.ApplyMatchResult(ctx, m.challengeID, entities.GameTypeFIFA, winnerID, m.loserID)
			errs <- err
		}(m)
	}
	wg.Wait()
	close(errs)

	var failures []error
	for err := range errs {
		if err != nil {
			failures = append(failures, err)
		}
	}
	require.NoError(t, errors.Join(failures...))

	winner, err := repo.Get(ctx, winnerID, entities.GameTypeFIFA)
	require.NoError(t, err)
	require.NotNil(t, winner)
	assert.Equal(t, matches, winner.GamesPlayed)
	assert.Equal(t, matches, winner.Wins)
	assert.Equal(t, matches, winner.CurrentWinStreak)

	history, err := repo.GetHistory(ctx, winnerID, entities.GameTypeFIFA, 10)
	require.NoError(t, err)
	assert.Len(t, history, matches)
}

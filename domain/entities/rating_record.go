package entities

import (
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultRating is assigned to a player with no games for a game type
	DefaultRating = 1200

	// MinRating is the floor no update can go below
	MinRating = 100
)

// RatingRecord is a player's skill rating for a single game type
type RatingRecord struct {
	UserID           uuid.UUID `db:"user_id" json:"userId"`
	GameType         GameType  `db:"game_type" json:"gameType"`
	EloRating        int       `db:"elo_rating" json:"eloRating"`
	GamesPlayed      int       `db:"games_played" json:"gamesPlayed"`
	Wins             int       `db:"wins" json:"wins"`
	Losses           int       `db:"losses" json:"losses"`
	CurrentWinStreak int       `db:"current_win_streak" json:"currentWinStreak"`
	UpdatedAt        time.Time `db:"updated_at" json:"updatedAt"`
}

// NewRatingRecord returns the default record for a player with no history
func NewRatingRecord(userID uuid.UUID, gameType GameType) *RatingRecord {
	return &RatingRecord{
		UserID:    userID,
		GameType:  gameType,
		EloRating: DefaultRating,
	}
}

// RatingChange is one player's rating movement from a single challenge
type RatingChange struct {
	ChallengeID uuid.UUID `db:"challenge_id" json:"challengeId"`
	UserID      uuid.UUID `db:"user_id" json:"userId"`
	GameType    GameType  `db:"game_type" json:"gameType"`
	OldRating   int       `db:"old_rating" json:"oldRating"`
	NewRating   int       `db:"new_rating" json:"newRating"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// Delta returns the signed rating change
func (rc *RatingChange) Delta() int {
	return rc.NewRating - rc.OldRating
}

// MatchRatingUpdate holds both updated records and their history rows for one challenge.
// Winner and Loser each carry exactly one more game than the records they were computed from.
type MatchRatingUpdate struct {
	ChallengeID  uuid.UUID
	Winner       *RatingRecord
	Loser        *RatingRecord
	WinnerChange *RatingChange
	LoserChange  *RatingChange
}

// PriorGamesPlayed returns the games count the update was computed from
func (r *RatingRecord) PriorGamesPlayed() int {
	return r.GamesPlayed - 1
}

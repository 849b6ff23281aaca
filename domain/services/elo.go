package services

import (
	"math"

	"gambler/challenge-service/domain/entities"
)

const (
	// K-factors based on number of games played
	KFactorProvisional = 32 // < 30 games
	KFactorEstablished = 16
	ProvisionalGames   = 30
)

// EloCalculator computes rating movement for decisive matches
type EloCalculator struct{}

func NewEloCalculator() *EloCalculator {
	return &EloCalculator{}
}

// WinnerRating returns the winner's new rating, never below the floor
func (c *EloCalculator) WinnerRating(winnerRating, loserRating, winnerGames int) int {
	expected := c.expectedScore(winnerRating, loserRating)
	change := float64(c.kFactor(winnerGames)) * (1.0 - expected)
	return c.floor(int(math.Round(float64(winnerRating) + change)))
}

// LoserRating returns the loser's new rating, never below the floor
func (c *EloCalculator) LoserRating(loserRating, winnerRating, loserGames int) int {
	expected := c.expectedScore(loserRating, winnerRating)
	change := float64(c.kFactor(loserGames)) * expected
	return c.floor(int(math.Round(float64(loserRating) - change)))
}

// expectedScore uses the Elo formula E = 1 / (1 + 10^((opponent - player) / 400))
func (c *EloCalculator) expectedScore(playerRating, opponentRating int) float64 {
	return WinProbability(playerRating, opponentRating)
}

func (c *EloCalculator) kFactor(gamesPlayed int) int {
	if gamesPlayed < ProvisionalGames {
		return KFactorProvisional
	}
	return KFactorEstablished
}

func (c *EloCalculator) floor(rating int) int {
	if rating < entities.MinRating {
		return entities.MinRating
	}
	return rating
}

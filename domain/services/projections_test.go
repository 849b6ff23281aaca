package services

import (
	"testing"

	"gambler/challenge-service/domain/entities"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func challengeIDs(challenges []*entities.Challenge) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(challenges))
	for _, c := range challenges {
		ids = append(ids, c.ID)
	}
	return ids
}

func TestProjections(t *testing.T) {
	me, other := uuid.New(), uuid.New()

	build := func(challenger, challenged uuid.UUID, status entities.ChallengeStatus, turn entities.TurnState) *entities.Challenge {
		return &entities.Challenge{
			ID:           uuid.New(),
			ChallengerID: challenger,
			ChallengedID: challenged,
			GameType:     entities.GameTypeFIFA,
			StakeAmount:  entities.MustMoney("10"),
			Status:       status,
			Turn:         turn,
		}
	}

	sentOpen := build(me, other, entities.ChallengeStatusNegotiating, entities.TurnAwaitingChallenged)
	sentCountered := build(me, other, entities.ChallengeStatusCounterOffer, entities.TurnAwaitingChallenger)
	receivedOpen := build(other, me, entities.ChallengeStatusNegotiating, entities.TurnAwaitingChallenged)
	receivedWaiting := build(other, me, entities.ChallengeStatusCounterOffer, entities.TurnAwaitingChallenger)
	activeUnreported := build(me, other, entities.ChallengeStatusAccepted, entities.TurnAccepted)
	activeReported := build(other, me, entities.ChallengeStatusAccepted, entities.TurnAccepted)
	activeReported.SetReport(me, me)
	declined := build(me, other, entities.ChallengeStatusDeclined, entities.TurnClosed)
	strangers := build(other, uuid.New(), entities.ChallengeStatusAccepted, entities.TurnAccepted)

	all := []*entities.Challenge{
		sentOpen, sentCountered, receivedOpen, receivedWaiting,
		activeUnreported, activeReported, declined, strangers,
	}

	assert.ElementsMatch(t, []uuid.UUID{sentOpen.ID}, challengeIDs(Sent(all, me)))
	assert.ElementsMatch(t, []uuid.UUID{receivedOpen.ID}, challengeIDs(Received(all, me)))
	assert.ElementsMatch(t, []uuid.UUID{activeUnreported.ID, activeReported.ID}, challengeIDs(Active(all, me)))
	assert.ElementsMatch(t, []uuid.UUID{sentCountered.ID, receivedWaiting.ID}, challengeIDs(InNegotiation(all, me)))
	assert.ElementsMatch(t, []uuid.UUID{activeUnreported.ID}, challengeIDs(AwaitingMyReport(all, me)))

	projected := Project(all, me)
	assert.Len(t, projected.Sent, 1)
	assert.Len(t, projected.Received, 1)
	assert.Len(t, projected.Active, 2)
	assert.Len(t, projected.InNegotiation, 2)
	assert.Len(t, projected.AwaitingMyReport, 1)
}

func TestProjections_Empty(t *testing.T) {
	projected := Project(nil, uuid.New())
	assert.NotNil(t, projected.Sent)
	assert.Empty(t, projected.Sent)
	assert.Empty(t, projected.Active)
}

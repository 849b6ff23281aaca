package services

import (
	"gambler/challenge-service/domain/entities"

	"github.com/google/uuid"
)

// ChallengeProjections groups one user's challenges the way their dashboard shows them
type ChallengeProjections struct {
	Sent             []*entities.Challenge `json:"sent"`
	Received         []*entities.Challenge `json:"received"`
	Active           []*entities.Challenge `json:"active"`
	InNegotiation    []*entities.Challenge `json:"inNegotiation"`
	AwaitingMyReport []*entities.Challenge `json:"awaitingMyReport"`
}

// Project builds every projection over a snapshot of the user's challenges
func Project(challenges []*entities.Challenge, me uuid.UUID) *ChallengeProjections {
	return &ChallengeProjections{
		Sent:             Sent(challenges, me),
		Received:         Received(challenges, me),
		Active:           Active(challenges, me),
		InNegotiation:    InNegotiation(challenges, me),
		AwaitingMyReport: AwaitingMyReport(challenges, me),
	}
}

// Sent returns challenges I issued that are waiting on my opponent
func Sent(challenges []*entities.Challenge, me uuid.UUID) []*entities.Challenge {
	return filterChallenges(challenges, func(c *entities.Challenge) bool {
		return c.ChallengerID == me && c.Status.IsNegotiating() && c.Turn == entities.TurnAwaitingChallenged
	})
}

// Received returns challenges issued to me that are waiting on my response
func Received(challenges []*entities.Challenge, me uuid.UUID) []*entities.Challenge {
	return filterChallenges(challenges, func(c *entities.Challenge) bool {
		return c.ChallengedID == me && c.Status.IsNegotiating() && c.IsResponder(me)
	})
}

// Active returns my accepted challenges
func Active(challenges []*entities.Challenge, me uuid.UUID) []*entities.Challenge {
	return filterChallenges(challenges, func(c *entities.Challenge) bool {
		return c.IsParticipant(me) && c.Status == entities.ChallengeStatusAccepted
	})
}

// InNegotiation returns my challenges that have at least one counter-offer
func InNegotiation(challenges []*entities.Challenge, me uuid.UUID) []*entities.Challenge {
	return filterChallenges(challenges, func(c *entities.Challenge) bool {
		return c.IsParticipant(me) && c.Status == entities.ChallengeStatusCounterOffer
	})
}

// AwaitingMyReport returns accepted challenges where I have not reported a result
func AwaitingMyReport(challenges []*entities.Challenge, me uuid.UUID) []*entities.Challenge {
	return filterChallenges(challenges, func(c *entities.Challenge) bool {
		return c.IsParticipant(me) && c.Status == entities.ChallengeStatusAccepted && c.ReportOf(me) == nil
	})
}

func filterChallenges(challenges []*entities.Challenge, keep func(*entities.Challenge) bool) []*entities.Challenge {
	out := make([]*entities.Challenge, 0)
	for _, c := range challenges {
		if keep(c) {
			out = append(out, c)
		}
	}
	return out
}

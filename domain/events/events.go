package events

import (
	"gambler/challenge-service/domain/entities"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeChallengeCreated   EventType = "challenge_created"
	EventTypeChallengeCountered EventType = "challenge_countered"
	EventTypeChallengeAccepted  EventType = "challenge_accepted"
	EventTypeChallengeDeclined  EventType = "challenge_declined"
	EventTypeChallengeExpired   EventType = "challenge_expired"
	EventTypeResultReported     EventType = "result_reported"
	EventTypeChallengeDisputed  EventType = "challenge_disputed"
	EventTypeChallengeSettled   EventType = "challenge_settled"
	EventTypeChallengeVoided    EventType = "challenge_voided"
	EventTypeBalanceChange      EventType = "balance_changed"
	EventTypeRatingChange       EventType = "rating_changed"
)

// AllEventTypes lists every event type the service publishes
var AllEventTypes = []EventType{
	EventTypeChallengeCreated,
	EventTypeChallengeCountered,
	EventTypeChallengeAccepted,
	EventTypeChallengeDeclined,
	EventTypeChallengeExpired,
	EventTypeResultReported,
	EventTypeChallengeDisputed,
	EventTypeChallengeSettled,
	EventTypeChallengeVoided,
	EventTypeBalanceChange,
	EventTypeRatingChange,
}

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// Addressed is implemented by events that should reach specific users' inboxes
type Addressed interface {
	Recipients() []uuid.UUID
}

// ChallengeStateChangeEvent represents a lifecycle transition of a challenge
type ChallengeStateChangeEvent struct {
	Kind         EventType                `json:"kind"`
	ChallengeID  uuid.UUID                `json:"challengeId"`
	ChallengerID uuid.UUID                `json:"challengerId"`
	ChallengedID uuid.UUID                `json:"challengedId"`
	ActorID      *uuid.UUID               `json:"actorId,omitempty"`
	GameType     entities.GameType        `json:"gameType"`
	OldStatus    entities.ChallengeStatus `json:"oldStatus,omitempty"`
	NewStatus    entities.ChallengeStatus `json:"newStatus"`
	StakeAmount  decimal.Decimal          `json:"stakeAmount"`
	DisputeCount int                      `json:"disputeCount"`
}

func (e ChallengeStateChangeEvent) Type() EventType {
	return e.Kind
}

func (e ChallengeStateChangeEvent) Recipients() []uuid.UUID {
	return []uuid.UUID{e.ChallengerID, e.ChallengedID}
}

// NewChallengeStateChangeEvent builds a lifecycle event from the challenge's current state
func NewChallengeStateChangeEvent(kind EventType, challenge *entities.Challenge, oldStatus entities.ChallengeStatus, actorID *uuid.UUID) ChallengeStateChangeEvent {
	return ChallengeStateChangeEvent{
		Kind:         kind,
		ChallengeID:  challenge.ID,
		ChallengerID: challenge.ChallengerID,
		ChallengedID: challenge.ChallengedID,
		ActorID:      actorID,
		GameType:     challenge.GameType,
		OldStatus:    oldStatus,
		NewStatus:    challenge.Status,
		StakeAmount:  challenge.StakeAmount,
		DisputeCount: challenge.DisputeCount,
	}
}

// ResultReportedEvent represents one party submitting a result
type ResultReportedEvent struct {
	ChallengeID uuid.UUID `json:"challengeId"`
	ReporterID  uuid.UUID `json:"reporterId"`
	OpponentID  uuid.UUID `json:"opponentId"`
	WinnerID    uuid.UUID `json:"winnerId"`
}

func (e ResultReportedEvent) Type() EventType {
	return EventTypeResultReported
}

func (e ResultReportedEvent) Recipients() []uuid.UUID {
	return []uuid.UUID{e.OpponentID}
}

// ChallengeSettledEvent represents a completed challenge paying out its winner
type ChallengeSettledEvent struct {
	ChallengeID uuid.UUID         `json:"challengeId"`
	GameType    entities.GameType `json:"gameType"`
	WinnerID    uuid.UUID         `json:"winnerId"`
	LoserID     uuid.UUID         `json:"loserId"`
	StakeAmount decimal.Decimal   `json:"stakeAmount"`
	Winnings    decimal.Decimal   `json:"winnings"`
	TotalPayout decimal.Decimal   `json:"totalPayout"`
}

func (e ChallengeSettledEvent) Type() EventType {
	return EventTypeChallengeSettled
}

func (e ChallengeSettledEvent) Recipients() []uuid.UUID {
	return []uuid.UUID{e.WinnerID, e.LoserID}
}

// BalanceChangeEvent represents a balance change that occurred
type BalanceChangeEvent struct {
	UserID          uuid.UUID                `json:"userId"`
	TransactionType entities.TransactionType `json:"transactionType"`
	Amount          decimal.Decimal          `json:"amount"`
	ChallengeID     *uuid.UUID               `json:"challengeId,omitempty"`
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

func (e BalanceChangeEvent) Recipients() []uuid.UUID {
	return []uuid.UUID{e.UserID}
}

// RatingChangeEvent represents a player's rating moving after a decisive challenge
type RatingChangeEvent struct {
	ChallengeID uuid.UUID         `json:"challengeId"`
	UserID      uuid.UUID         `json:"userId"`
	GameType    entities.GameType `json:"gameType"`
	OldRating   int               `json:"oldRating"`
	NewRating   int               `json:"newRating"`
}

func (e RatingChangeEvent) Type() EventType {
	return EventTypeRatingChange
}

func (e RatingChangeEvent) Recipients() []uuid.UUID {
	return []uuid.UUID{e.UserID}
}

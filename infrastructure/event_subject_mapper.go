package infrastructure

import (
	"fmt"

	"gambler/challenge-service/domain/events"
)

const (
	// ChallengeEventStream is the JetStream stream every event is published to
	ChallengeEventStream = "challenge_events"

	challengeSubjectPrefix = "challenges"
	walletSubjectPrefix    = "wallet"
)

// EventSubjectMapper handles mapping between domain events and NATS subjects
type EventSubjectMapper struct{}

// NewEventSubjectMapper creates a new event subject mapper
func NewEventSubjectMapper() *EventSubjectMapper {
	return &EventSubjectMapper{}
}

// MapEventToSubject converts a domain event to its corresponding NATS subject
func (m *EventSubjectMapper) MapEventToSubject(event events.Event) string {
	switch event.Type() {
	case events.EventTypeBalanceChange:
		return fmt.Sprintf("%s.%s", walletSubjectPrefix, event.Type())
	default:
		return fmt.Sprintf("%s.%s", challengeSubjectPrefix, event.Type())
	}
}

// GetAllSubjects returns the subject filters the stream must capture
func (m *EventSubjectMapper) GetAllSubjects() []string {
	return []string{
		challengeSubjectPrefix + ".*",
		walletSubjectPrefix + ".*",
	}
}

package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"gambler/challenge-service/domain/entities"
	"gambler/challenge-service/domain/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedMessage struct {
	subject string
	data    []byte
	msgID   string
}

type fakeNATS struct {
	messages []capturedMessage
	err      error
}

func (f *fakeNATS) Publish(ctx context.Context, subject string, data []byte, msgID string) error {
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, capturedMessage{subject: subject, data: data, msgID: msgID})
	return nil
}

func TestEventSubjectMapper(t *testing.T) {
	mapper := NewEventSubjectMapper()

	assert.Equal(t, "wallet.balance_changed", mapper.MapEventToSubject(events.BalanceChangeEvent{}))
	assert.Equal(t, "challenges.challenge_settled", mapper.MapEventToSubject(events.ChallengeSettledEvent{}))
	assert.Equal(t, "challenges.rating_changed", mapper.MapEventToSubject(events.RatingChangeEvent{}))
	assert.Equal(t, []string{"challenges.*", "wallet.*"}, mapper.GetAllSubjects())
}

func TestNATSEventPublisher_PublishesEnvelope(t *testing.T) {
	client := &fakeNATS{}
	publisher := NewNATSEventPublisher(client, NewEventSubjectMapper())

	winnerID := uuid.New()
	event := events.ChallengeSettledEvent{
		ChallengeID: uuid.New(),
		GameType:    entities.GameTypeMadden,
		WinnerID:    winnerID,
		LoserID:     uuid.New(),
		StakeAmount: entities.MustMoney("20"),
		Winnings:    entities.MustMoney("20"),
		TotalPayout: entities.MustMoney("40"),
	}
	require.NoError(t, publisher.Publish(event))

	require.Len(t, client.messages, 1)
	assert.Equal(t, "challenges.challenge_settled", client.messages[0].subject)

	var envelope EventEnvelope
	require.NoError(t, json.Unmarshal(client.messages[0].data, &envelope))
	assert.Equal(t, "challenge_settled", envelope.EventType)
	assert.Equal(t, "challenge-service", envelope.SourceService)
	_, err := uuid.Parse(envelope.EventID)
	assert.NoError(t, err)
	assert.Equal(t, envelope.EventID, client.messages[0].msgID, "the event ID doubles as the JetStream dedup key")

	var payload map[string]any
	require.NoError(t, json.Unmarshal(envelope.Payload, &payload))
	assert.Equal(t, winnerID.String(), payload["winnerId"])
	assert.Equal(t, "40", payload["totalPayout"])
}

func TestNATSEventPublisher_LocalHandlers(t *testing.T) {
	client := &fakeNATS{err: errors.New("nats: no response from stream")}
	publisher := NewNATSEventPublisher(client, NewEventSubjectMapper())

	var seen []events.EventType
	publisher.RegisterLocalHandlerForAll(func(ctx context.Context, event events.Event) error {
		seen = append(seen, event.Type())
		return nil
	})
	publisher.RegisterLocalHandler(events.EventTypeBalanceChange, func(ctx context.Context, event events.Event) error {
		return errors.New("handler failed")
	})

	require.NoError(t, publisher.Publish(events.BalanceChangeEvent{UserID: uuid.New()}))
	require.NoError(t, publisher.Publish(events.RatingChangeEvent{UserID: uuid.New()}))

	assert.Equal(t, []events.EventType{events.EventTypeBalanceChange, events.EventTypeRatingChange}, seen)
}

func TestNATSEventPublisher_WithoutClient(t *testing.T) {
	publisher := NewNATSEventPublisher(nil, NewEventSubjectMapper())

	called := false
	publisher.RegisterLocalHandler(events.EventTypeChallengeCreated, func(ctx context.Context, event events.Event) error {
		called = true
		return nil
	})

	challenge := &entities.Challenge{ID: uuid.New(), Status: entities.ChallengeStatusNegotiating}
	require.NoError(t, publisher.Publish(events.NewChallengeStateChangeEvent(events.EventTypeChallengeCreated, challenge, "", nil)))
	assert.True(t, called)
}

func TestNATSEventPublisher_PropagatesTransportErrors(t *testing.T) {
	publisher := NewNATSEventPublisher(&fakeNATS{err: errors.New("connection closed")}, NewEventSubjectMapper())

	err := publisher.Publish(events.BalanceChangeEvent{UserID: uuid.New()})
	assert.ErrorContains(t, err, "connection closed")
}

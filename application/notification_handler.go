package application

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gambler/challenge-service/domain/events"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Inbox stores notifications for a user until they are drained
type Inbox interface {
	Push(ctx context.Context, userID uuid.UUID, payload []byte) error
	Drain(ctx context.Context, userID uuid.UUID) ([]json.RawMessage, error)
}

// Notification is the payload written to a user's inbox
type Notification struct {
	Type      events.EventType `json:"type"`
	CreatedAt time.Time        `json:"createdAt"`
	Data      events.Event     `json:"data"`
}

// NotificationHandler mirrors addressed events into each recipient's inbox
type NotificationHandler struct {
	inbox Inbox
}

// NewNotificationHandler creates a new notification handler
func NewNotificationHandler(inbox Inbox) *NotificationHandler {
	return &NotificationHandler{inbox: inbox}
}

// HandleEvent writes the event to the inbox of every recipient it names
func (h *NotificationHandler) HandleEvent(ctx context.Context, event events.Event) error {
	addressed, ok := event.(events.Addressed)
	if !ok {
		return nil
	}

	payload, err := json.Marshal(Notification{
		Type:      event.Type(),
		CreatedAt: time.Now().UTC(),
		Data:      event,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	var failed int
	for _, userID := range addressed.Recipients() {
		if err := h.inbox.Push(ctx, userID, payload); err != nil {
			failed++
			log.WithFields(log.Fields{
				"userID":    userID,
				"eventType": event.Type(),
				"error":     err,
			}).Warn("Failed to deliver notification")
		}
	}
	if failed > 0 {
		return fmt.Errorf("failed to deliver %s to %d recipients", event.Type(), failed)
	}
	return nil
}

// Notifications drains a user's inbox
func (h *NotificationHandler) Notifications(ctx context.Context, userID uuid.UUID) ([]json.RawMessage, error) {
	return h.inbox.Drain(ctx, userID)
}

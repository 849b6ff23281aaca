package application

import (
	"context"

	"gambler/challenge-service/domain/events"
)

// EventSubscriber accepts in-process handlers for published events
type EventSubscriber interface {
	RegisterLocalHandler(eventType events.EventType, handler func(context.Context, events.Event) error)
}

// RegisterApplicationSubscriptions registers all application-level event subscriptions
func RegisterApplicationSubscriptions(subscriber EventSubscriber, notifications *NotificationHandler) {
	for _, eventType := range events.AllEventTypes {
		subscriber.RegisterLocalHandler(eventType, notifications.HandleEvent)
	}
}

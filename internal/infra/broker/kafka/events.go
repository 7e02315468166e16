package kafka

import (
	"context"
	"encoding/json"
	"time"

	appbooking "stayflow/internal/app/booking"
	"stayflow/internal/domain/shared/events"
)

// EventPublisher maps booking domain events to JSON messages keyed by the
// aggregate id, so one booking's events land in order on one partition.
type EventPublisher struct {
	Producer *Producer
	Topic    string
}

type eventEnvelope struct {
	Name       string    `json:"name"`
	Aggregate  string    `json:"aggregate"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       any       `json:"data"`
}

func (p *EventPublisher) Publish(ctx context.Context, event events.DomainEvent) error {
	payload, err := json.Marshal(eventEnvelope{
		Name:       event.EventName(),
		Aggregate:  event.AggregateID(),
		OccurredAt: event.OccurredAt(),
		Data:       event,
	})
	if err != nil {
		return err
	}
	headers := map[string]string{"content-type": "application/json"}
	return p.Producer.Publish(ctx, p.topic(), event.AggregateID(), payload, headers)
}

func (p *EventPublisher) topic() string {
	if p.Topic != "" {
		return p.Topic
	}
	return "booking.events.v1"
}

var _ appbooking.EventPublisher = (*EventPublisher)(nil)

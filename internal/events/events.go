package events

//go:generate go run go.uber.org/mock/mockgen -source=./events.go -destination=./mocks/events_mock.go -package=mocks

import (
	"context"
	"kodesha/config"
	"kodesha/infras/kafka"
	"kodesha/infras/otel"
	"kodesha/shared/constant"
	"kodesha/shared/timezone"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	BookingCreated    = "booking.created"
	BookingConfirmed  = "booking.confirmed"
	BookingCancelled  = "booking.cancelled"
	BookingsCompleted = "bookings.completed"
	PaymentCompleted  = "payment.completed"
	PaymentFailed     = "payment.failed"
	PaymentCancelled  = "payment.cancelled"
	PaymentRefunded   = "payment.refunded"
)

// Event is the envelope written to the lifecycle topics.
type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Key        string    `json:"key"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       any       `json:"data"`
}

func New(eventType, key string, data any) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		Key:        key,
		OccurredAt: timezone.Now(),
		Data:       data,
	}
}

// Publisher emits lifecycle events after the state change has been committed.
// Delivery failures are logged and never undo the committed change.
type Publisher interface {
	PublishBooking(ctx context.Context, evt Event)
	PublishPayment(ctx context.Context, evt Event)
}

type publisherImpl struct {
	client kafka.Client
	cfg    *config.Config
	otel   otel.Otel
}

func NewPublisher(client kafka.Client, cfg *config.Config, otel otel.Otel) Publisher {
	return &publisherImpl{
		client: client,
		cfg:    cfg,
		otel:   otel,
	}
}

func (p *publisherImpl) PublishBooking(ctx context.Context, evt Event) {
	p.publish(ctx, p.cfg.Kafka.Topics.Booking, evt)
}

func (p *publisherImpl) PublishPayment(ctx context.Context, evt Event) {
	p.publish(ctx, p.cfg.Kafka.Topics.Payment, evt)
}

func (p *publisherImpl) publish(ctx context.Context, topic string, evt Event) {
	ctx, scope := p.otel.NewScope(ctx, constant.OtelEventScopeName, constant.OtelEventScopeName+"."+evt.Type)
	defer scope.End()

	scope.SetAttribute("event.key", evt.Key)

	err := p.client.SendMessages(context.WithoutCancel(ctx), topic, kafka.Message{Key: evt.Key, Value: evt})
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Str("type", evt.Type).Str("key", evt.Key).Msg("failed to publish event")
	}
}

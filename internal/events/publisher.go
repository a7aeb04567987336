package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"eduvibe/internal/config"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Routing keys for domain events published on the topic exchange.
const (
	SessionRequested = "session.requested"
	SessionConfirmed = "session.confirmed"
	SessionRejected  = "session.rejected"
	SessionCancelled = "session.cancelled"
	SessionCompleted = "session.completed"
	SessionExpired   = "session.expired"
	ReviewCreated    = "review.created"
	MentorApproved   = "mentor.approved"
	PaymentSucceeded = "payment.succeeded"
	PaymentFailed    = "payment.failed"
)

// Envelope is the JSON body of every published message.
type Envelope struct {
	Type       string      `json:"type"`
	OccurredAt time.Time   `json:"occurred_at"`
	Payload    interface{} `json:"payload"`
}

type Publisher interface {
	Publish(ctx context.Context, eventType string, payload interface{}) error
}

// AMQPPublisher publishes to a durable topic exchange. Without a URL it only logs.
type AMQPPublisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	logger   *zap.Logger
}

func NewPublisher(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) (Publisher, error) {
	p := &AMQPPublisher{exchange: cfg.RabbitMQ.Exchange, logger: logger}
	if cfg.RabbitMQ.URL == "" {
		logger.Info("rabbitmq disabled, domain events are logged only")
		return p, nil
	}

	conn, err := amqp.Dial(cfg.RabbitMQ.URL)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(p.exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", p.exchange, err)
	}

	p.conn = conn
	p.channel = ch

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			p.Close()
			return nil
		},
	})

	return p, nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, eventType string, payload interface{}) error {
	body, err := json.Marshal(Envelope{Type: eventType, OccurredAt: time.Now().UTC(), Payload: payload})
	if err != nil {
		return fmt.Errorf("marshal event %s: %w", eventType, err)
	}

	p.logger.Debug("publishing event", zap.String("type", eventType))

	if p.channel == nil {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	return p.channel.PublishWithContext(ctx,
		p.exchange,
		eventType,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
}

func (p *AMQPPublisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.channel != nil {
		_ = p.channel.Close()
		p.channel = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}

// PublishAsync fires an event without blocking the caller; failures are logged.
func PublishAsync(p Publisher, logger *zap.Logger, eventType string, payload interface{}) {
	if p == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := p.Publish(ctx, eventType, payload); err != nil {
			logger.Warn("failed to publish event", zap.String("type", eventType), zap.Error(err))
		}
	}()
}

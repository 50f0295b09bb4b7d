package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"mocktest-service/internal/logger"
)

const (
	SessionStarted   = "mocktest.session.started"
	SessionSubmitted = "mocktest.session.submitted"
	SessionTimedOut  = "mocktest.session.timed_out"
	GenerationFailed = "mocktest.generation.failed"
	ResultComputed   = "mocktest.result.computed"
	AttemptRestarted = "mocktest.attempt.restarted"
)

// Event is the JSON body of every published message.
type Event struct {
	Type      string    `json:"type"`
	Payload   any       `json:"payload"`
	Timestamp time.Time `json:"timestamp"`
}

type EventPublisher struct {
	conn     *amqp091.Connection
	channel  *amqp091.Channel
	exchange string
	enabled  bool
	log      *logger.Logger
}

// NewEventPublisher connects to RabbitMQ and declares a durable topic exchange.
// An empty URI yields a disabled publisher that drops every event.
func NewEventPublisher(rabbitURI, exchange string, log *logger.Logger) (*EventPublisher, error) {
	if log == nil {
		log = logger.Nop()
	}
	if rabbitURI == "" {
		log.Warn("RabbitMQ URI is empty, event publishing is disabled")
		return Disabled(log), nil
	}

	conn, err := amqp091.Dial(rabbitURI)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}
	err = channel.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		channel.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	return &EventPublisher{
		conn:     conn,
		channel:  channel,
		exchange: exchange,
		enabled:  true,
		log:      log,
	}, nil
}

func Disabled(log *logger.Logger) *EventPublisher {
	if log == nil {
		log = logger.Nop()
	}
	return &EventPublisher{log: log}
}

func (p *EventPublisher) Enabled() bool { return p.enabled }

// Encode builds the message body for an event.
func Encode(eventType string, payload any, at time.Time) ([]byte, error) {
	body, err := json.Marshal(Event{Type: eventType, Payload: payload, Timestamp: at.UTC()})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}
	return body, nil
}

// Publish sends payload with the event type as routing key.
func (p *EventPublisher) Publish(ctx context.Context, eventType string, payload any) error {
	if !p.enabled {
		p.log.Debug("event publishing disabled, skipping", "event", eventType)
		return nil
	}

	now := time.Now()
	body, err := Encode(eventType, payload, now)
	if err != nil {
		return err
	}

	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = p.channel.PublishWithContext(
		pubCtx,
		p.exchange,
		eventType,
		false,
		false,
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    now,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish event %s: %w", eventType, err)
	}
	p.log.Debug("published event", "event", eventType)
	return nil
}

func (p *EventPublisher) Close() error {
	if !p.enabled {
		return nil
	}
	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			return fmt.Errorf("failed to close channel: %w", err)
		}
	}
	if p.conn != nil {
		if err := p.conn.Close(); err != nil {
			return fmt.Errorf("failed to close connection: %w", err)
		}
	}
	return nil
}

// Package queue publishes vault events to RabbitMQ so downstream
// consumers (reconciliation, reporting) can observe ledger activity.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"

	"github.com/custodia-io/vault-ledger/internal/config"
	"github.com/custodia-io/vault-ledger/internal/vault"
)

// Publisher is a vault.EventSink backed by a RabbitMQ topic exchange.
// Events are routed by their type.
type Publisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

func NewPublisher(cfg *config.QueueConfig) (*Publisher, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to queue at %s: %w", cfg.URL, err)
	}

	channel, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open queue channel: %w", err)
	}

	if err := channel.ExchangeDeclare(
		cfg.Exchange,
		amqp.ExchangeTopic,
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return nil, fmt.Errorf("failed to declare exchange %s: %w", cfg.Exchange, err)
	}

	return &Publisher{
		conn:     conn,
		channel:  channel,
		exchange: cfg.Exchange,
	}, nil
}

type eventMessage struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	At         time.Time `json:"at"`
	Identity   string    `json:"identity,omitempty"`
	Asset      string    `json:"asset,omitempty"`
	Symbol     string    `json:"symbol,omitempty"`
	Amount     string    `json:"amount,omitempty"`
	Value      string    `json:"value,omitempty"`
	Balance    string    `json:"balance,omitempty"`
	Total      string    `json:"total,omitempty"`
	Cap        string    `json:"cap,omitempty"`
	Limit      string    `json:"limit,omitempty"`
	Capability string    `json:"capability,omitempty"`
	Source     string    `json:"source,omitempty"`
}

func (p *Publisher) Publish(ctx context.Context, event vault.Event) error {
	body, err := json.Marshal(messageFromEvent(event))
	if err != nil {
		return fmt.Errorf("failed to marshal event %s: %w", event.ID, err)
	}

	err = p.channel.PublishWithContext(ctx,
		p.exchange,
		event.Type.String(), // routing key
		false,               // mandatory
		false,               // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    event.ID,
			Timestamp:    event.At,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish event %s: %w", event.ID, err)
	}
	return nil
}

// Shutdown gracefully stops the interaction with the queue, ensuring all resources are properly released.
func (p *Publisher) Shutdown() {
	log.Info().Msg("Shutting down queue publisher")
	if err := p.channel.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close queue channel")
	}
	if err := p.conn.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close queue connection")
	}
}

func messageFromEvent(event vault.Event) eventMessage {
	msg := eventMessage{
		ID:         event.ID,
		Type:       event.Type.String(),
		At:         event.At,
		Identity:   event.Identity,
		Asset:      event.Asset,
		Symbol:     event.Symbol,
		Capability: event.Capability.String(),
		Source:     event.Source,
	}
	if !event.Amount.IsNil() {
		msg.Amount = event.Amount.String()
	}
	if !event.Value.IsNil() {
		msg.Value = event.Value.String()
	}
	if !event.Balance.IsNil() {
		msg.Balance = event.Balance.String()
	}
	if !event.Total.IsNil() {
		msg.Total = event.Total.String()
	}
	if !event.Cap.IsNil() {
		msg.Cap = event.Cap.String()
	}
	if !event.Limit.IsNil() {
		msg.Limit = event.Limit.String()
	}
	return msg
}

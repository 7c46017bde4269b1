// Package events publishes ledger domain events to RabbitMQ so downstream
// consumers (analytics, notifications) can observe committed operations.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/ledgerline/bankcore/internal/domain"
)

// Routing keys under the topic exchange.
const (
	RoutingKeyTransferCompleted = "bank.ledger.transfer.completed"
	RoutingKeyLoanApproved      = "bank.ledger.loan.approved"
)

// TransferCompletedEvent is the wire format for a committed transfer.
type TransferCompletedEvent struct {
	EventType   string `json:"eventType"`
	EventID     string `json:"eventId"`
	OperationID string `json:"operationId"`
	SenderID    int64  `json:"senderId"`
	ReceiverID  int64  `json:"receiverId"`
	Amount      string `json:"amount"`
	Timestamp   string `json:"timestamp"`
	Status      string `json:"status"`
}

// LoanApprovedEvent is the wire format for an admitted loan request.
type LoanApprovedEvent struct {
	EventType     string `json:"eventType"`
	EventID       string `json:"eventId"`
	RequestID     string `json:"requestId"`
	UserID        int64  `json:"userId"`
	Amount        string `json:"amount"`
	PriorityScore int64  `json:"priorityScore"`
	Timestamp     string `json:"timestamp"`
}

// RabbitMQPublisher implements domain.EventPublisher over a topic exchange.
type RabbitMQPublisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

// NewRabbitMQPublisher connects to RabbitMQ and declares the topic exchange.
func NewRabbitMQPublisher(url, exchange string) (*RabbitMQPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
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

	return &RabbitMQPublisher{
		conn:     conn,
		channel:  channel,
		exchange: exchange,
	}, nil
}

// PublishTransferCompleted emits a transfer.completed event.
func (p *RabbitMQPublisher) PublishTransferCompleted(ctx context.Context, transfer *domain.Transfer) error {
	event := TransferCompletedEvent{
		EventType:   "transfer.completed",
		EventID:     uuid.New().String(),
		OperationID: transfer.ID.String(),
		SenderID:    transfer.SenderID,
		ReceiverID:  transfer.ReceiverID,
		Amount:      transfer.Amount.String(),
		Timestamp:   transfer.CreatedAt.UTC().Format(time.RFC3339),
		Status:      "SUCCESS",
	}
	return p.publish(ctx, RoutingKeyTransferCompleted, event)
}

// PublishLoanApproved emits a loan.approved event.
func (p *RabbitMQPublisher) PublishLoanApproved(ctx context.Context, request *domain.LoanRequest) error {
	event := LoanApprovedEvent{
		EventType:     "loan.approved",
		EventID:       uuid.New().String(),
		RequestID:     request.ID.String(),
		UserID:        request.UserID,
		Amount:        request.Amount.String(),
		PriorityScore: request.PriorityScore,
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
	}
	return p.publish(ctx, RoutingKeyLoanApproved, event)
}

func (p *RabbitMQPublisher) publish(ctx context.Context, routingKey string, event any) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = p.channel.PublishWithContext(ctx,
		p.exchange,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// Close closes the RabbitMQ channel and connection.
func (p *RabbitMQPublisher) Close() error {
	if p.channel != nil {
		if err := p.channel.Close(); err != nil {
			return err
		}
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

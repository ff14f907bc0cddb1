package orders

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/example/farm-market/events"
	amqp "github.com/rabbitmq/amqp091-go"
)

// DefaultQueue is the queue confirmed orders are forwarded to.
const DefaultQueue = "orders"

// Publisher forwards confirmed orders to fulfilment.
type Publisher interface {
	Publish(ctx context.Context, order events.OrderPlacedEvent) error
	Close() error
}

// AMQPPublisher publishes orders as JSON to a durable RabbitMQ queue.
type AMQPPublisher struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
	mu    sync.Mutex
}

var _ Publisher = (*AMQPPublisher)(nil)

// DialAMQP connects to RabbitMQ and declares the durable queue.
func DialAMQP(uri, queue string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(uri)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open RabbitMQ channel: %w", err)
	}

	q, err := ch.QueueDeclare(
		queue,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare %s queue: %w", queue, err)
	}

	return &AMQPPublisher{conn: conn, ch: ch, queue: q.Name}, nil
}

// Publish sends the order as a persistent JSON message.
func (p *AMQPPublisher) Publish(ctx context.Context, order events.OrderPlacedEvent) error {
	body, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("failed to marshal order %s: %w", order.OrderNumber, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ch.PublishWithContext(ctx,
		"",
		p.queue,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    order.OrderNumber,
			Body:         body,
		},
	); err != nil {
		return fmt.Errorf("failed to publish order %s: %w", order.OrderNumber, err)
	}
	return nil
}

// Close closes the channel and the connection.
func (p *AMQPPublisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ch.Close(); err != nil {
		p.conn.Close()
		return err
	}
	return p.conn.Close()
}

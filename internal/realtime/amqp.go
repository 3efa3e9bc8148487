package realtime

import (
	"context"
	"fmt"
	"math"
	"time"

	"connection-travels/internal/utils"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// amqpChannel is the part of *amqp.Channel the bridge uses.
type amqpChannel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// amqpPublishTimeout bounds a publish so a blocked broker cannot hold up the HTTP response.
const amqpPublishTimeout = 2 * time.Second

// AMQPPublisher mirrors events onto a topic exchange for downstream consumers.
type AMQPPublisher struct {
	conn     *amqp.Connection
	ch       amqpChannel
	exchange string
	now      func() time.Time
	timeout  time.Duration
}

// DialAMQP connects with exponential backoff and declares the exchange once.
func DialAMQP(url, exchange string, attempts int) (*AMQPPublisher, error) {
	if attempts <= 0 {
		attempts = 1
	}
	var (
		conn *amqp.Connection
		err  error
	)
	for i := 1; i <= attempts; i++ {
		conn, err = amqp.Dial(url)
		if err == nil {
			break
		}
		utils.Logger().Warn("amqp dial failed", zap.Int("attempt", i), zap.Error(err))
		if i < attempts {
			time.Sleep(time.Second * time.Duration(math.Pow(2, float64(i))))
		}
	}
	if err != nil {
		return nil, fmt.Errorf("connect amqp after %d attempts: %w", attempts, err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open amqp channel: %w", err)
	}
	p, err := newAMQPPublisher(ch, exchange)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	p.conn = conn
	return p, nil
}

func newAMQPPublisher(ch amqpChannel, exchange string) (*AMQPPublisher, error) {
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	return &AMQPPublisher{ch: ch, exchange: exchange, now: time.Now, timeout: amqpPublishTimeout}, nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, audience Audience, event string, payload any) error {
	body, err := newMessage(audience, event, payload, p.now())
	if err != nil {
		return fmt.Errorf("marshal %s: %w", event, err)
	}
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if err := p.ch.PublishWithContext(ctx, p.exchange, routingKey(audience, event), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Transient,
		Timestamp:    p.now().UTC(),
		Type:         event,
		Body:         body,
	}); err != nil {
		return fmt.Errorf("publish %s: %w", event, err)
	}
	eventsPublished.WithLabelValues("amqp", event, audienceKind(audience)).Inc()
	return nil
}

func (p *AMQPPublisher) Close() {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}

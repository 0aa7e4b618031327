package queue

import (
	"context"
	"fmt"
	"net"
	"time"

	jsoniter "github.com/json-iterator/go"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/property-reservation/internal/booking"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Publisher sends reservation events to a durable queue, dialing the broker
// once per message.
type Publisher struct {
	url   string
	queue string
}

func NewPublisher(url, queue string) *Publisher {
	return &Publisher{url: url, queue: queue}
}

// Notify implements booking.Notifier.
func (p *Publisher) Notify(ctx context.Context, ev booking.Event) error {
	return p.Publish(ctx, FromBooking(ev))
}

// Publish marshals event and publishes it as a persistent message.
func (p *Publisher) Publish(ctx context.Context, event ReservationEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	conn, err := p.dial(ctx)
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("rabbitmq channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.EventID,
		Type:         event.Type,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", p.queue, false, false, pub); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

const dialTimeout = 30 * time.Second

// dial connects to the broker.  The TCP connect and the AMQP handshake are
// both bounded by the deadline of ctx, or by dialTimeout without one.
func (p *Publisher) dial(ctx context.Context) (*amqp.Connection, error) {
	return amqp.DialConfig(p.url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial: func(network, addr string) (net.Conn, error) {
			deadline, ok := ctx.Deadline()
			if !ok {
				deadline = time.Now().Add(dialTimeout)
			}
			d := net.Dialer{Deadline: deadline}
			conn, err := d.DialContext(ctx, network, addr)
			if err != nil {
				return nil, err
			}
			// cleared by amqp once the connection is open
			if err := conn.SetDeadline(deadline); err != nil {
				_ = conn.Close()
				return nil, err
			}
			return conn, nil
		},
	})
}

package kafka

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

var (
	ErrDisabled = errors.New("kafka disabled")
	ErrNoTopic  = errors.New("kafka topic is required")
)

type Client struct {
	Brokers []string
}

func NewClient(brokersCSV string) *Client {
	brokers := []string{}
	for _, b := range strings.Split(brokersCSV, ",") {
		b = strings.TrimSpace(b)
		if b != "" {
			brokers = append(brokers, b)
		}
	}
	return &Client{Brokers: brokers}
}

func (c *Client) Enabled() bool {
	return len(c.Brokers) > 0
}

// NewPublisher returns a publisher writing to topic, or ErrDisabled when no
// brokers are configured.
func (c *Client) NewPublisher(topic string) (*Publisher, error) {
	if !c.Enabled() {
		return nil, ErrDisabled
	}
	if strings.TrimSpace(topic) == "" {
		return nil, ErrNoTopic
	}
	return &Publisher{
		topic: topic,
		w: &kafka.Writer{
			Addr:         kafka.TCP(c.Brokers...),
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
		},
	}, nil
}

// Publisher adapts a kafka.Writer to outbox.Publisher. Messages are keyed by
// cart id so events of one cart stay on one partition.
type Publisher struct {
	topic string
	w     *kafka.Writer
}

// Publish sends payload to the configured topic; the outbox topic travels as
// the event type header.
func (p *Publisher) Publish(ctx context.Context, eventType, key string, payload []byte) error {
	return p.w.WriteMessages(ctx, kafka.Message{
		Topic:   p.topic,
		Key:     []byte(key),
		Value:   payload,
		Time:    time.Now().UTC(),
		Headers: []kafka.Header{{Key: "event_type", Value: []byte(eventType)}},
	})
}

func (p *Publisher) Close() error {
	return p.w.Close()
}

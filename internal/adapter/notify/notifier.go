package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/polkiloo/youwow/internal/domain/model"
)

// ResultEmail describes a finished gift that should be mailed to the customer.
type ResultEmail struct {
	OrderID     string            `json:"orderId"`
	To          string            `json:"to"`
	Name        string            `json:"name,omitempty"`
	ServiceType model.ServiceType `json:"serviceType"`
	ResultURL   string            `json:"resultUrl"`
}

// Notifier delivers result emails. Delivery failures never affect order state.
type Notifier interface {
	SendResult(ctx context.Context, email ResultEmail) error
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaNotifier publishes email jobs for the mailer service.
type KafkaNotifier struct {
	writer messageWriter
	logger *slog.Logger
}

// NewKafkaWriter builds a writer that keeps jobs of one order on one partition.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		BatchTimeout:           50 * time.Millisecond,
	}
}

func NewKafkaNotifier(writer messageWriter, logger *slog.Logger) *KafkaNotifier {
	return &KafkaNotifier{writer: writer, logger: logger}
}

// SendResult produces a JSON job keyed by order id.
func (n *KafkaNotifier) SendResult(ctx context.Context, email ResultEmail) error {
	if email.To == "" {
		return fmt.Errorf("result email for order %s has no recipient", email.OrderID)
	}
	payload, err := json.Marshal(email)
	if err != nil {
		return fmt.Errorf("marshal result email: %w", err)
	}

	err = n.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(email.OrderID),
		Value: payload,
		Time:  time.Now(),
	})
	if err != nil {
		return fmt.Errorf("produce result email: %w", err)
	}

	n.logger.Info("result email queued", slog.String("order_id", email.OrderID))
	return nil
}

// Close flushes pending jobs and closes the writer.
func (n *KafkaNotifier) Close() error {
	return n.writer.Close()
}

// LogNotifier only records the email. Used when no brokers are configured.
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) SendResult(_ context.Context, email ResultEmail) error {
	n.logger.Warn("email transport not configured, result email skipped",
		slog.String("order_id", email.OrderID),
		slog.String("result_url", email.ResultURL),
	)
	return nil
}

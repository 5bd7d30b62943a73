package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/sanspareilsmyn/powerlens/internal/config"
)

type kafkaZapLogger struct {
	log *zap.Logger
}

func (l kafkaZapLogger) Printf(msg string, args ...interface{}) {
	l.log.Debug(fmt.Sprintf(msg, args...))
}

type kafkaZapErrorLogger struct {
	log *zap.Logger
}

func (l kafkaZapErrorLogger) Printf(msg string, args ...interface{}) {
	l.log.Error(fmt.Sprintf(msg, args...))
}

// MessageWriter is the part of kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Envelope wraps one display record for publishing.
type Envelope struct {
	RunID       string      `json:"run_id"`
	Trace       string      `json:"trace"`
	Kind        string      `json:"kind"`
	GeneratedAt time.Time   `json:"generated_at"`
	Record      interface{} `json:"record"`
}

// Publisher sends the display records of a result to a Kafka topic, one message
// per record, keyed by trace and signal label.
type Publisher struct {
	writer MessageWriter
	runID  string
	now    func() time.Time
	logger *zap.Logger
}

// NewPublisher creates a Kafka-backed publisher.
func NewPublisher(cfg config.KafkaConfig, logger *zap.Logger) (*Publisher, error) {
	if len(cfg.Brokers) == 0 || cfg.Topic == "" {
		logger.Error("Kafka configuration validation failed",
			zap.Strings("brokers", cfg.Brokers),
			zap.String("topic", cfg.Topic),
		)
		return nil, ErrInvalidKafkaConfig
	}

	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Logger:       kafkaZapLogger{logger.Named("kafka-writer").WithOptions(zap.AddCallerSkip(1))},
		ErrorLogger:  kafkaZapErrorLogger{logger.Named("kafka-writer-error").WithOptions(zap.AddCallerSkip(1))},
	}

	logger.Info("Kafka publisher created",
		zap.String("topic", cfg.Topic),
		zap.Strings("brokers", cfg.Brokers),
	)
	return NewPublisherWithWriter(w, logger), nil
}

// NewPublisherWithWriter creates a publisher over an existing writer.
func NewPublisherWithWriter(w MessageWriter, logger *zap.Logger) *Publisher {
	return &Publisher{
		writer: w,
		runID:  uuid.NewString(),
		now:    time.Now,
		logger: logger,
	}
}

// RunID identifies every message published by this publisher.
func (p *Publisher) RunID() string {
	return p.runID
}

// Publish writes all records of res in a single batch.
func (p *Publisher) Publish(ctx context.Context, res *Result) error {
	generatedAt := p.now().UTC()
	var msgs []kafka.Message

	add := func(kind, label string, record interface{}) error {
		value, err := json.Marshal(Envelope{
			RunID:       p.runID,
			Trace:       res.Trace,
			Kind:        kind,
			GeneratedAt: generatedAt,
			Record:      record,
		})
		if err != nil {
			return fmt.Errorf("%w: %w", ErrPublishFailed, err)
		}
		msgs = append(msgs, kafka.Message{Key: []byte(res.Trace + "/" + label), Value: value})
		return nil
	}

	for _, b := range res.Battery {
		if err := add("battery", b.Label, b.Record()); err != nil {
			return err
		}
	}
	for _, r := range res.Rails {
		if err := add("rail", r.Label, r.Record()); err != nil {
			return err
		}
	}
	for _, f := range res.Frequency {
		if err := add("frequency", f.Label, f.Record()); err != nil {
			return err
		}
	}
	if err := add("totals", "", res.Totals.Record()); err != nil {
		return err
	}

	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		p.logger.Error("Failed to publish metric records", zap.Error(err), zap.Int("messages", len(msgs)))
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}
	p.logger.Info("Published metric records",
		zap.String("trace", res.Trace),
		zap.String("run_id", p.runID),
		zap.Int("messages", len(msgs)),
	)
	return nil
}

// Close closes the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

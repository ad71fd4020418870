package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmagro/coverchain/internal/logger"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type KafkaConfig struct {
	Brokers []string
	Topic   string
	// RequiredAcks is one of "none", "one" or "all". Empty means "all":
	// a record the system of record never sees cannot be reconciled.
	RequiredAcks string
	WriteTimeout time.Duration
}

// messageWriter is the part of *kafka.Writer the recorder uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaRecorder publishes records as JSON to a Kafka topic, keyed by
// transaction hash.
type KafkaRecorder struct {
	writer messageWriter
	topic  string
	logger *zap.Logger
}

func NewKafkaRecorder(cfg KafkaConfig, l *zap.Logger) (*KafkaRecorder, error) {
	if len(cfg.Brokers) == 0 || cfg.Topic == "" {
		return nil, errors.New("kafka ledger configuration incomplete: both brokers and topic are required")
	}
	acks, err := parseRequiredAcks(cfg.RequiredAcks)
	if err != nil {
		return nil, err
	}

	writeTimeout := cfg.WriteTimeout
	if writeTimeout == 0 {
		writeTimeout = 5 * time.Second
	}

	l = logger.OrNop(l)
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: acks,
		WriteTimeout: writeTimeout,
		BatchSize:    1,
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			l.Sugar().Errorf("kafka writer: "+msg, args...)
		}),
	}

	l.Sugar().Infow("kafka ledger recorder created",
		zap.Strings("brokers", cfg.Brokers),
		zap.String("topic", cfg.Topic),
	)
	return newKafkaRecorder(w, cfg.Topic, l), nil
}

func newKafkaRecorder(w messageWriter, topic string, l *zap.Logger) *KafkaRecorder {
	return &KafkaRecorder{writer: w, topic: topic, logger: logger.OrNop(l)}
}

func parseRequiredAcks(s string) (kafka.RequiredAcks, error) {
	switch s {
	case "", "all":
		return kafka.RequireAll, nil
	case "one":
		return kafka.RequireOne, nil
	case "none":
		return kafka.RequireNone, nil
	default:
		return 0, fmt.Errorf("invalid required_acks %q: must be none, one or all", s)
	}
}

func (r *KafkaRecorder) Record(ctx context.Context, rec Record) error {
	value, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to serialize ledger record %s: %w", rec.ID, err)
	}

	if err := r.writer.WriteMessages(ctx, kafka.Message{Key: rec.Key(), Value: value}); err != nil {
		return fmt.Errorf("failed to publish ledger record %s to %s: %w", rec.ID, r.topic, err)
	}

	r.logger.Sugar().Debugw("ledger record published",
		zap.String("recordId", rec.ID.String()),
		zap.String("txHash", rec.TxHash),
		zap.String("topic", r.topic),
	)
	return nil
}

// Close flushes pending messages.
func (r *KafkaRecorder) Close() error {
	return r.writer.Close()
}

var _ Recorder = (*KafkaRecorder)(nil)

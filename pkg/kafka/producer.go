package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Ramsey-B/primrose/pkg/metrics"
	"github.com/Ramsey-B/primrose/pkg/tracing"
)

// Config holds Kafka configuration
type Config struct {
	Brokers     []string
	EventsTopic string
}

// ParseConfig parses a comma-separated broker string
func ParseConfig(brokers string, eventsTopic string) Config {
	brokerList := strings.Split(brokers, ",")
	for i := range brokerList {
		brokerList[i] = strings.TrimSpace(brokerList[i])
	}

	return Config{
		Brokers:     brokerList,
		EventsTopic: eventsTopic,
	}
}

// RecordEvent is a change notification for a vendor/tour scoped record.
type RecordEvent struct {
	EventType string    `json:"event_type"`
	Kind      string    `json:"kind"`
	RecordID  string    `json:"record_id"`
	VendorID  string    `json:"vendor_id"`
	TourID    string    `json:"tour_id"`
	Data      any       `json:"data,omitempty"`
	Operator  string    `json:"operator,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	TraceID   string    `json:"trace_id,omitempty"`
	SpanID    string    `json:"span_id,omitempty"`
}

// Producer handles producing messages to Kafka
type Producer struct {
	writer *kafka.Writer
	logger ectologger.Logger
	topic  string
}

// NewProducer creates a new Kafka producer
func NewProducer(cfg Config, logger ectologger.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.EventsTopic,
		Balancer:               &kafka.Hash{},
		BatchSize:              100,
		BatchTimeout:           10 * time.Millisecond,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}

	return &Producer{
		writer: writer,
		logger: logger,
		topic:  cfg.EventsTopic,
	}
}

func (p *Producer) Close() error {
	return p.writer.Close()
}

// PublishRecordEvent writes evt keyed by <vendor>:<tour>, so events for a
// pair land on one partition in order.
func (p *Producer) PublishRecordEvent(ctx context.Context, evt *RecordEvent) error {
	ctx, span := tracing.StartSpan(ctx, "Kafka.PublishRecordEvent")
	defer span.End()

	if evt == nil {
		return fmt.Errorf("record event is nil")
	}
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now().UTC()
	}
	evt.TraceID = tracing.GetTraceID(ctx)
	evt.SpanID = tracing.GetSpanID(ctx)

	span.SetAttributes(
		attribute.String("messaging.system", "kafka"),
		attribute.String("messaging.destination", p.topic),
		attribute.String("event_type", evt.EventType),
	)

	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal record event: %w", err)
	}

	headers := []kafka.Header{
		{Key: "event_type", Value: []byte(evt.EventType)},
		{Key: "kind", Value: []byte(evt.Kind)},
	}
	traceHeaders := tracing.Propagation(ctx)
	for _, key := range tracing.PropagationHeaders {
		if value, ok := traceHeaders[key]; ok {
			headers = append(headers, kafka.Header{Key: key, Value: []byte(value)})
		}
	}

	start := time.Now()
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:     []byte(fmt.Sprintf("%s:%s", evt.VendorID, evt.TourID)),
		Value:   data,
		Headers: headers,
	})
	if err != nil {
		metrics.RecordKafkaPublish(p.topic, "error", time.Since(start).Seconds())
		tracing.RecordError(span, err)
		p.logger.WithContext(ctx).WithError(err).Errorf("Failed to publish %s event to Kafka topic %s", evt.EventType, p.topic)
		return err
	}

	metrics.RecordKafkaPublish(p.topic, "success", time.Since(start).Seconds())
	return nil
}

// Ping dials the first broker to confirm connectivity.
func (p *Producer) Ping(ctx context.Context) error {
	addr := p.writer.Addr.String()
	if i := strings.Index(addr, ","); i >= 0 {
		addr = addr[:i]
	}
	conn, err := kafka.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to reach kafka broker %s: %w", addr, err)
	}
	return conn.Close()
}

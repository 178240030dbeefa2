package kafka

import (
	"context"
	"time"

	kafkaGo "github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

type Config struct {
	Brokers []string
	Topic   string
}

// Publisher 操作日志中间件只依赖这个接口，测试里替换为内存实现
type Publisher interface {
	Publish(ctx context.Context, key, value []byte, headers map[string]string) error
}

// Producer kafka-go Writer + 发送 span
type Producer struct{ *kafkaGo.Writer }

func NewProducer(cfg Config) *Producer {
	w := &kafkaGo.Writer{
		Addr:                   kafkaGo.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafkaGo.Hash{},
		RequiredAcks:           kafkaGo.RequireOne,
		BatchTimeout:           10 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
	return &Producer{w}
}

func (p *Producer) startSpan(ctx context.Context) (context.Context, trace.Span) {
	tr := otel.GetTracerProvider().Tracer("kafka-producer")
	attrs := []attribute.KeyValue{
		semconv.MessagingSystem("kafka"),
		semconv.MessagingDestinationName(p.Topic),
		attribute.String("messaging.destination_kind", "topic"),
	}
	return tr.Start(ctx, "kafka.produce", trace.WithSpanKind(trace.SpanKindProducer), trace.WithAttributes(attrs...))
}

// toHeaders 自定义 header 优先，其余注入 W3C traceparent / baggage
func toHeaders(ctx context.Context, custom map[string]string) []kafkaGo.Header {
	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)
	for k, v := range custom {
		carrier[k] = v
	}
	hs := make([]kafkaGo.Header, 0, len(carrier))
	for k, v := range carrier {
		hs = append(hs, kafkaGo.Header{Key: k, Value: []byte(v)})
	}
	return hs
}

func (p *Producer) Publish(ctx context.Context, key, value []byte, headers map[string]string) error {
	ctx, span := p.startSpan(ctx)
	defer span.End()
	msg := kafkaGo.Message{Key: key, Value: value, Time: time.Now(), Headers: toHeaders(ctx, headers)}
	if err := p.Writer.WriteMessages(ctx, msg); err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
		return err
	}
	return nil
}

// Ping 空写探测 broker 连通性，readiness 使用
func (p *Producer) Ping(ctx context.Context) error { return p.Writer.WriteMessages(ctx) }

func (p *Producer) Close() error { return p.Writer.Close() }

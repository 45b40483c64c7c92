package service

import (
	"context"
	"errors"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/HANNAHCSP/AWS-Event-Driven-Order-Notification-System/internal/domain/order"
)

const tracerName = "github.com/HANNAHCSP/AWS-Event-Driven-Order-Notification-System/internal/service"

// CompleteBody is the JSON-encoded string returned for every batch.
const CompleteBody = `"Order processing complete"`

type OrderStore interface {
	// Put writes the record, fully replacing any item with the same orderId.
	Put(ctx context.Context, rec order.Record) (*order.PutAck, error)
}

// Response is the acknowledgment handed back to the invoking platform.
type Response struct {
	StatusCode int    `json:"statusCode"`
	Body       string `json:"body"`
}

// Result is the outcome of one message. Err is nil on success.
type Result struct {
	MessageID string
	OrderID   string
	Ack       *order.PutAck
	Err       error
}

func (r Result) OK() bool { return r.Err == nil }

type Processor struct {
	store  OrderStore
	log    *zap.Logger
	tracer trace.Tracer
	now    func() time.Time
}

type Option func(*Processor)

func WithClock(now func() time.Time) Option {
	return func(p *Processor) { p.now = now }
}

func WithTracer(t trace.Tracer) Option {
	return func(p *Processor) { p.tracer = t }
}

func NewProcessor(store OrderStore, log *zap.Logger, opts ...Option) *Processor {
	p := &Processor{
		store:  store,
		log:    log,
		tracer: otel.Tracer(tracerName),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// HandleSQSEvent is the Lambda entry point. It never returns an error:
// per-message failures are visible in the logs only.
func (p *Processor) HandleSQSEvent(ctx context.Context, event events.SQSEvent) (Response, error) {
	resp, _ := p.Process(ctx, event.Records)
	return resp, nil
}

// Process handles messages strictly in order. A failing message is logged
// and skipped; the batch always completes.
func (p *Processor) Process(ctx context.Context, msgs []events.SQSMessage) (Response, []Result) {
	log := p.log.With(zap.String("request_id", invocationID(ctx)))
	log.Info("received event", zap.Int("records", len(msgs)), zap.Any("event", msgs))

	ctx, span := p.tracer.Start(ctx, "orders.batch",
		trace.WithAttributes(attribute.Int("messaging.batch.message_count", len(msgs))))
	defer span.End()

	results := make([]Result, 0, len(msgs))
	failed := 0
	for _, msg := range msgs {
		res := p.processMessage(ctx, log, msg)
		if !res.OK() {
			failed++
			log.Error("error processing message",
				zap.String("message_id", res.MessageID),
				zap.String("order_id", res.OrderID),
				zap.Error(res.Err),
			)
		}
		results = append(results, res)
	}

	span.SetAttributes(attribute.Int("orders.failed", failed))
	log.Info("order processing complete",
		zap.Int("processed", len(msgs)-failed),
		zap.Int("failed", failed),
	)

	return Response{StatusCode: 200, Body: CompleteBody}, results
}

func (p *Processor) processMessage(ctx context.Context, log *zap.Logger, msg events.SQSMessage) Result {
	ctx, span := p.tracer.Start(ctx, "orders.message",
		trace.WithAttributes(attribute.String("messaging.message.id", msg.MessageId)))
	defer span.End()

	res := Result{MessageID: msg.MessageId}
	rec, err := p.buildRecord(log, msg)
	if err == nil {
		res.OrderID, _ = rec.OrderID()
		span.SetAttributes(attribute.String("order.id", res.OrderID))
		res.Ack, err = p.store.Put(ctx, rec)
	}
	if err != nil {
		res.Err = err
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return res
	}

	log.Info("successfully processed order",
		zap.String("order_id", res.OrderID),
		zap.Any("response", res.Ack),
	)
	return res
}

// buildRecord runs decode, validate and enrich for one message.
func (p *Processor) buildRecord(log *zap.Logger, msg events.SQSMessage) (order.Record, error) {
	now := p.now()

	var (
		rec       order.Record
		decodeErr *order.DecodeError
	)
	v, err := decodeBody(msg.Body)
	switch {
	case errors.As(err, &decodeErr):
		log.Warn("message is not valid JSON, using as-is",
			zap.String("message_id", msg.MessageId),
			zap.Error(err),
		)
		rec = order.NewErrorRecord(msg.Body, now)
	case err != nil:
		return nil, err
	default:
		if rec, err = order.FromValue(v); err != nil {
			return nil, err
		}
	}

	log.Info("processing order", zap.Any("order", rec))
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	rec.EnsureTimestamp(now)
	return rec, nil
}

func invocationID(ctx context.Context) string {
	if lc, ok := lambdacontext.FromContext(ctx); ok && lc.AwsRequestID != "" {
		return lc.AwsRequestID
	}
	return uuid.NewString()
}

package main

import (
	"context"
	"log"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"github.com/HANNAHCSP/AWS-Event-Driven-Order-Notification-System/internal/config"
	"github.com/HANNAHCSP/AWS-Event-Driven-Order-Notification-System/internal/repository/dynamo"
	"github.com/HANNAHCSP/AWS-Event-Driven-Order-Notification-System/internal/service"
	"github.com/HANNAHCSP/AWS-Event-Driven-Order-Notification-System/pkg/logger"
	"github.com/HANNAHCSP/AWS-Event-Driven-Order-Notification-System/pkg/tracer"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	zl, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("building logger: %v", err)
	}

	tp, err := tracer.Init(cfg.Tracing)
	if err != nil {
		zl.Fatal("initialising tracer", zap.Error(err))
	}

	// Built once per container and reused by every warm invocation.
	client, err := dynamo.NewClient(context.Background(), cfg.Dynamo)
	if err != nil {
		zl.Fatal("creating dynamodb client", zap.Error(err))
	}
	store := dynamo.NewOrderStore(client, cfg.Dynamo.Table)

	proc := service.NewProcessor(store, zl,
		service.WithTracer(tp.Tracer("order-ingest")),
	)

	handler := func(ctx context.Context, event events.SQSEvent) (service.Response, error) {
		resp, err := proc.HandleSQSEvent(ctx, event)
		if ferr := tp.ForceFlush(ctx); ferr != nil {
			zl.Warn("flushing spans", zap.Error(ferr))
		}
		_ = zl.Sync()
		return resp, err
	}

	zl.Info("order ingest handler starting",
		zap.String("table", cfg.Dynamo.Table),
		zap.String("env", cfg.App.Environment),
		zap.String("version", cfg.App.Version),
	)

	lambda.StartWithOptions(handler,
		lambda.WithEnableSIGTERM(func() {
			_ = tp.Shutdown(context.Background())
			_ = zl.Sync()
		}),
	)
}

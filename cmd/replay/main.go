// Command replay feeds a saved SQS event through the order processor
// against the configured table, outside of Lambda.
//
//	replay [-config file] [-verify] event.json
//	replay - < event.json
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	"github.com/HANNAHCSP/AWS-Event-Driven-Order-Notification-System/internal/config"
	"github.com/HANNAHCSP/AWS-Event-Driven-Order-Notification-System/internal/repository/dynamo"
	"github.com/HANNAHCSP/AWS-Event-Driven-Order-Notification-System/internal/service"
	"github.com/HANNAHCSP/AWS-Event-Driven-Order-Notification-System/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to a config file")
	verify := flag.Bool("verify", false, "read back every stored order and compare its orderId")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: replay [-config file] [-verify] <event.json | ->")
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	zl, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("building logger: %v", err)
	}
	defer zl.Sync()

	event, err := readEvent(flag.Arg(0))
	if err != nil {
		zl.Fatal("reading event", zap.Error(err))
	}

	ctx := context.Background()
	client, err := dynamo.NewClient(ctx, cfg.Dynamo)
	if err != nil {
		zl.Fatal("creating dynamodb client", zap.Error(err))
	}
	store := dynamo.NewOrderStore(client, cfg.Dynamo.Table)

	resp, results := service.NewProcessor(store, zl).Process(ctx, event.Records)

	out := json.NewEncoder(os.Stdout)
	out.SetIndent("", "  ")
	_ = out.Encode(resp)
	for _, r := range results {
		status := "ok"
		if !r.OK() {
			status = r.Err.Error()
		}
		fmt.Printf("%s\t%s\t%s\n", r.MessageID, r.OrderID, status)
	}

	if *verify {
		if n := verifyStored(ctx, store, results); n > 0 {
			zl.Error("verification failed", zap.Int("mismatches", n))
			_ = zl.Sync()
			os.Exit(1)
		}
	}
}

func readEvent(path string) (events.SQSEvent, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return events.SQSEvent{}, err
		}
		defer f.Close()
		r = f
	}

	var event events.SQSEvent
	if err := json.NewDecoder(r).Decode(&event); err != nil {
		return events.SQSEvent{}, fmt.Errorf("decoding SQS event: %w", err)
	}
	return event, nil
}

func verifyStored(ctx context.Context, store *dynamo.OrderStore, results []service.Result) int {
	mismatches := 0
	for _, r := range results {
		if !r.OK() {
			continue
		}
		rec, err := store.Get(ctx, r.OrderID)
		if err != nil {
			fmt.Printf("verify %s: %v\n", r.OrderID, err)
			mismatches++
			continue
		}
		if id, _ := rec.OrderID(); id != r.OrderID {
			fmt.Printf("verify %s: stored orderId is %q\n", r.OrderID, id)
			mismatches++
		}
	}
	return mismatches
}

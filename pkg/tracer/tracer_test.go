package tracer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/HANNAHCSP/AWS-Event-Driven-Order-Notification-System/internal/config"
)

func TestInit_Disabled(t *testing.T) {
	tp, err := Init(config.TracingConfig{Enabled: false})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	_, span := tp.Tracer("test").Start(context.Background(), "noop")
	defer span.End()
	if !span.SpanContext().IsValid() {
		t.Fatalf("expected a valid span from the provider")
	}
}

func TestInit_ExportsToCollectorURL(t *testing.T) {
	var hits atomic.Int32
	var path atomic.Value
	collector := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		path.Store(r.URL.Path)
		w.Header().Set("Content-Type", "application/x-protobuf")
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(collector.Close)

	tp, err := Init(config.TracingConfig{
		Enabled:     true,
		ServiceName: "order-ingest-test",
		Endpoint:    collector.URL,
		SampleRate:  1,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	_, span := tp.Tracer("test").Start(context.Background(), "orders.batch")
	span.End()

	if err := tp.ForceFlush(context.Background()); err != nil {
		t.Fatalf("flush failed: %v", err)
	}
	if hits.Load() != 1 {
		t.Fatalf("expected one export request, got %d", hits.Load())
	}
	if got := path.Load(); got != "/v1/traces" {
		t.Fatalf("expected export to /v1/traces, got %v", got)
	}
}

func TestTracesURL(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "http://localhost:4318", want: "http://localhost:4318/v1/traces"},
		{in: "https://otel.example.com/", want: "https://otel.example.com/v1/traces"},
		{in: "http://collector:4318/custom/traces", want: "http://collector:4318/custom/traces"},
		{in: "localhost:4318", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tc := range tests {
		got, err := tracesURL(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("%q: expected error, got %q", tc.in, got)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("%q: got %q, want %q", tc.in, got, tc.want)
		}
	}
}

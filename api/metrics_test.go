package api

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func setupTestTracer(t *testing.T) (*sdktrace.TracerProvider, *tracetest.InMemoryExporter, func()) {
	t.Helper()

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(sdktrace.NewSimpleSpanProcessor(exporter)),
	)
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)

	cleanup := func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			t.Logf("shutdown tracer provider: %v", err)
		}
		otel.SetTracerProvider(prev)
	}
	return tp, exporter, cleanup
}

func waitForLogEntry(t *testing.T, hook *test.Hook, timeout time.Duration) *log.Entry {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for {
		if entry := hook.LastEntry(); entry != nil {
			return entry
		}
		if time.Now().After(deadline) {
			t.Fatalf("expected log entry within %v", timeout)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func spanAttributesToMap(attrs []attribute.KeyValue) map[string]any {
	out := make(map[string]any, len(attrs))
	for _, kv := range attrs {
		out[string(kv.Key)] = kv.Value.AsInterface()
	}
	return out
}

func TestRequestMetricsLogProducesObservabilityEvent(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetFormatter(&log.JSONFormatter{})

	tp, exporter, restore := setupTestTracer(t)
	defer restore()

	metrics, _ := newRequestMetrics(context.Background(), "POST /projects", logger)
	metrics.start = metrics.start.Add(-50 * time.Millisecond)
	metrics.ObserveAuth(10 * time.Millisecond)
	metrics.ObserveLoad(15 * time.Millisecond)
	metrics.ObserveSave(20 * time.Millisecond)
	metrics.ObserveEncode(5 * time.Millisecond)

	metrics.Log(http.StatusCreated, nil)

	if err := tp.ForceFlush(context.Background()); err != nil {
		t.Fatalf("force flush spans: %v", err)
	}

	entry := waitForLogEntry(t, hook, time.Second)
	if entry.Message != "observability.event" {
		t.Fatalf("unexpected message: %s", entry.Message)
	}
	if got := entry.Data["event.name"]; got != requestEventName {
		t.Fatalf("unexpected event name: %v", got)
	}
	if got := entry.Data["event.domain"]; got != eventDomain {
		t.Fatalf("unexpected event domain: %v", got)
	}
	if got := entry.Data["severity_text"]; got != "INFO" {
		t.Fatalf("unexpected severity: %v", got)
	}
	if got := entry.Data["http.route"]; got != "POST /projects" {
		t.Fatalf("unexpected route: %v", got)
	}
	if _, ok := entry.Data["trace_id"]; !ok {
		t.Fatal("expected trace_id field")
	}
	if entry.Data["auth_ms"].(float64) <= 0 {
		t.Fatalf("expected positive auth_ms, got %v", entry.Data["auth_ms"])
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	span := spans[0]
	if span.Name != requestSpanName {
		t.Fatalf("unexpected span name: %s", span.Name)
	}
	if span.Status.Code != codes.Ok {
		t.Fatalf("expected span status ok, got %v", span.Status.Code)
	}
	attrs := spanAttributesToMap(span.Attributes)
	if attrs["http.route"] != "POST /projects" {
		t.Fatalf("unexpected route attribute: %#v", attrs["http.route"])
	}
	if attrs["http.status_code"].(int64) != int64(http.StatusCreated) {
		t.Fatalf("unexpected status attribute: %#v", attrs["http.status_code"])
	}
	if attrs["kanban.total_ms"].(float64) < 50 {
		t.Fatalf("expected total_ms to cover elapsed time, got %v", attrs["kanban.total_ms"])
	}
	if len(span.Events) != 1 || span.Events[0].Name != "observability.event" {
		t.Fatalf("unexpected span events: %#v", span.Events)
	}
}

func TestRequestMetricsLogError(t *testing.T) {
	logger, hook := test.NewNullLogger()

	tp, exporter, restore := setupTestTracer(t)
	defer restore()

	metrics, _ := newRequestMetrics(context.Background(), "PUT /issues/:issueId", logger)
	metrics.SetErrorStage("save")
	boom := errors.New("storage failure")

	metrics.Log(http.StatusInternalServerError, boom)

	if err := tp.ForceFlush(context.Background()); err != nil {
		t.Fatalf("force flush spans: %v", err)
	}

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	span := spans[0]
	if span.Status.Code != codes.Error {
		t.Fatalf("expected span status error, got %v", span.Status.Code)
	}
	if span.Status.Description != "storage failure" {
		t.Fatalf("unexpected status description: %q", span.Status.Description)
	}
	attrs := spanAttributesToMap(span.Attributes)
	if attrs["kanban.error_stage"] != "save" {
		t.Fatalf("unexpected error stage: %#v", attrs["kanban.error_stage"])
	}

	entry := waitForLogEntry(t, hook, time.Second)
	if got := entry.Data["severity_text"]; got != "ERROR" {
		t.Fatalf("unexpected severity: %v", got)
	}
	if got := entry.Data["severity_number"]; got != 17 {
		t.Fatalf("unexpected severity number: %v", got)
	}
	if got := entry.Data["error"]; got != "storage failure" {
		t.Fatalf("unexpected error field: %v", got)
	}
}

func TestSeverityForStatus(t *testing.T) {
	testCases := map[string]struct {
		status int
		err    error
		text   string
		number int
	}{
		"ok":           {http.StatusOK, nil, "INFO", 9},
		"client_error": {http.StatusNotFound, nil, "WARN", 13},
		"server_error": {http.StatusInternalServerError, nil, "ERROR", 17},
		"handler_err":  {http.StatusOK, errors.New("x"), "ERROR", 17},
	}
	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			text, number := severityForStatus(tc.status, tc.err)
			if text != tc.text || number != tc.number {
				t.Fatalf("expected %s/%d got %s/%d", tc.text, tc.number, text, number)
			}
		})
	}
}

// ABOUTME: OpenTelemetry instruments for tool dispatch.
// ABOUTME: Uses the global providers, which are no-ops until the process installs an SDK.

package tools

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/2389/concierge-gateway/internal/tools"

type instruments struct {
	tracer  trace.Tracer
	calls   metric.Int64Counter
	latency metric.Float64Histogram
}

func newInstruments() *instruments {
	meter := otel.Meter(instrumentationName)

	calls, err := meter.Int64Counter("concierge.tool_calls",
		metric.WithDescription("Tool calls handled, by tool, agent and outcome"),
	)
	if err != nil {
		calls = noop.Int64Counter{}
	}

	latency, err := meter.Float64Histogram("concierge.tool_call.duration",
		metric.WithDescription("Tool call duration"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		latency = noop.Float64Histogram{}
	}

	return &instruments{
		tracer:  otel.Tracer(instrumentationName),
		calls:   calls,
		latency: latency,
	}
}

func (in *instruments) start(ctx context.Context, agentType AgentType, ev Event) (context.Context, trace.Span) {
	return in.tracer.Start(ctx, "tools.HandleToolCall",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("tool.name", ev.Name),
			attribute.String("tool.call_id", ev.ToolCallID),
			attribute.String("agent.type", string(agentType)),
		),
	)
}

func (in *instruments) finish(ctx context.Context, span trace.Span, agentType AgentType, ev Event, out Outcome, elapsed time.Duration) {
	result := string(out.Kind)
	if out.IsError() {
		result = string(out.Category)
		span.SetStatus(codes.Error, out.Content)
	}
	span.SetAttributes(attribute.String("tool.outcome", result))

	attrs := metric.WithAttributes(
		attribute.String("tool", ev.Name),
		attribute.String("agent", string(agentType)),
		attribute.String("outcome", result),
	)
	in.calls.Add(ctx, 1, attrs)
	in.latency.Record(ctx, float64(elapsed)/float64(time.Millisecond), attrs)
}

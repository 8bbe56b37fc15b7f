// Package observability provides OpenTelemetry tracing for gframe.
//
// Until Init is called the package hands out no-op tracers, so library
// code can create spans unconditionally.
package observability

import (
	"context"
	"fmt"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/gframe-dev/gframe"

var (
	initOnce sync.Once
	provider *sdktrace.TracerProvider
)

// TracingConfig contains tracing configuration.
type TracingConfig struct {
	ServiceName  string
	SamplingRate float64
	PrettyPrint  bool
}

// Init sets up the global tracer provider with a stdout exporter. It is
// safe to call more than once; only the first call takes effect.
func Init(cfg TracingConfig) error {
	var err error
	initOnce.Do(func() {
		var exporter *stdouttrace.Exporter
		opts := []stdouttrace.Option{}
		if cfg.PrettyPrint {
			opts = append(opts, stdouttrace.WithPrettyPrint())
		}
		exporter, err = stdouttrace.New(opts...)
		if err != nil {
			err = fmt.Errorf("failed to create trace exporter: %w", err)
			return
		}

		sampler := sdktrace.AlwaysSample()
		if cfg.SamplingRate > 0 && cfg.SamplingRate < 1 {
			sampler = sdktrace.TraceIDRatioBased(cfg.SamplingRate)
		}

		provider = sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(exporter),
			sdktrace.WithSampler(sampler),
		)
		otel.SetTracerProvider(provider)
	})
	return err
}

// Shutdown flushes and stops the tracer provider.
func Shutdown(ctx context.Context) error {
	if provider == nil {
		return nil
	}
	return provider.Shutdown(ctx)
}

// Tracer returns the library tracer.
func Tracer() trace.Tracer {
	return otel.Tracer(tracerName)
}

// StartSpan starts a span for a device-boundary crossing. The returned
// end function records the error, if any, and closes the span.
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	ctx, span := Tracer().Start(ctx, name, trace.WithAttributes(attrs...))
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
		}
		span.End()
	}
}

// Int64Attr builds an int64 span attribute.
func Int64Attr(key string, v int64) attribute.KeyValue {
	return attribute.Int64(key, v)
}

// IntAttr builds an int span attribute.
func IntAttr(key string, v int) attribute.KeyValue {
	return attribute.Int(key, v)
}

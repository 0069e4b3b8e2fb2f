// Package tracing は OpenTelemetry の TracerProvider を構築します。
// 終了したスパンは slog に出力します。
package tracing

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"user_service/internal/platform/config"
)

const serviceName = "user_service"

// LogExporter は終了したスパンを Debug レベルでログに書き出す SpanExporter です。
type LogExporter struct {
	logger *slog.Logger
}

// NewLogExporter は l に出力する LogExporter を生成します。l が nil の場合はデフォルトロガーを使います。
func NewLogExporter(l *slog.Logger) *LogExporter {
	if l == nil {
		l = slog.Default()
	}
	return &LogExporter{logger: l}
}

// ExportSpans はスパンごとに 1 行のログを出力します。
func (e *LogExporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	for _, s := range spans {
		attrs := []any{
			"span", s.Name(),
			"trace_id", s.SpanContext().TraceID().String(),
			"span_id", s.SpanContext().SpanID().String(),
			"duration", s.EndTime().Sub(s.StartTime()),
			"status", s.Status().Code.String(),
		}
		if d := s.Status().Description; d != "" {
			attrs = append(attrs, "status_description", d)
		}
		e.logger.DebugContext(ctx, "span ended", attrs...)
	}
	return nil
}

func (e *LogExporter) Shutdown(context.Context) error {
	return nil
}

// NewProvider は設定に従って TracerProvider を生成します。
// 無効化されている場合でも Provider は返しますが、サンプラーはすべてのスパンを破棄します。
func NewProvider(cfg config.TracingConfig, l *slog.Logger) *sdktrace.TracerProvider {
	sampler := sdktrace.NeverSample()
	if cfg.Enabled {
		sampler = sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))
	}
	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(NewLogExporter(l)),
		sdktrace.WithSampler(sampler),
		sdktrace.WithResource(resource.NewSchemaless(attribute.String("service.name", serviceName))),
	)
}

// Setup は NewProvider で生成した Provider をグローバルに登録して返します。
// 呼び出し側は終了時に Shutdown を呼び、未送信のスパンを書き出す必要があります。
func Setup(cfg config.TracingConfig, l *slog.Logger) *sdktrace.TracerProvider {
	tp := NewProvider(cfg, l)
	otel.SetTracerProvider(tp)
	return tp
}

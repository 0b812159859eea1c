package observability

// https://opentelemetry.io/docs/languages/go/exporters/

import (
	"context"
	"net/http"
	"strings"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/sdk/metric"

	"github.com/benz9527/xtree/lib/infra"
)

type MetricsExporterType string

const (
	NoneMetricsExporter       MetricsExporterType = "none"
	ConsoleMetricsExporter    MetricsExporterType = "stdout"
	PrometheusMetricsExporter MetricsExporterType = "prometheus"
)

func ParseMetricsExporterType(typ string) (MetricsExporterType, error) {
	switch t := MetricsExporterType(strings.ToLower(strings.TrimSpace(typ))); t {
	case "", NoneMetricsExporter:
		return NoneMetricsExporter, nil
	case ConsoleMetricsExporter, PrometheusMetricsExporter:
		return t, nil
	default:
	}
	return NoneMetricsExporter, infra.NewErrorStack("[observability] unknown metrics exporter " + typ)
}

type ShutdownFunc func(ctx context.Context) error

// MetricsExporter owns the global meter provider it installs.
type MetricsExporter struct {
	shutdown ShutdownFunc
	handler  http.Handler
}

// Handler is nil unless the exporter is served by HTTP.
func (e *MetricsExporter) Handler() http.Handler {
	if e == nil {
		return nil
	}
	return e.handler
}

func (e *MetricsExporter) Shutdown(ctx context.Context) error {
	if e == nil || e.shutdown == nil {
		return nil
	}
	return e.shutdown(ctx)
}

// Serves for test/dev environment.
func NewConsoleMetricsExporter(interval, timeout time.Duration, opts ...stdoutmetric.Option) (*MetricsExporter, error) {
	exporter, err := stdoutmetric.New(opts...)
	if err != nil {
		return nil, infra.WrapErrorStackWithMessage(err, "[observability] stdout metrics exporter")
	}
	mp := metric.NewMeterProvider(metric.WithReader(metric.NewPeriodicReader(
		exporter,
		metric.WithInterval(interval),
		metric.WithTimeout(timeout),
	)))
	otel.SetMeterProvider(mp)
	return &MetricsExporter{shutdown: mp.Shutdown}, nil
}

// Serves for the product environment and fetch stats metrics by HTTP.
// A nil registry uses a new one.
func NewPrometheusMetricsExporter(registry *promclient.Registry) (*MetricsExporter, error) {
	if registry == nil {
		registry = promclient.NewRegistry()
	}
	exporter, err := prometheus.New(prometheus.WithRegisterer(registry))
	if err != nil {
		return nil, infra.WrapErrorStackWithMessage(err, "[observability] prometheus metrics exporter")
	}
	mp := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(mp)
	return &MetricsExporter{
		shutdown: mp.Shutdown,
		handler:  promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}, nil
}

// NewMetricsExporter keeps the global meter provider untouched
// for the none type.
func NewMetricsExporter(typ MetricsExporterType, interval time.Duration) (*MetricsExporter, error) {
	switch typ {
	case ConsoleMetricsExporter:
		return NewConsoleMetricsExporter(interval, interval, stdoutmetric.WithPrettyPrint())
	case PrometheusMetricsExporter:
		return NewPrometheusMetricsExporter(nil)
	case NoneMetricsExporter:
		return &MetricsExporter{}, nil
	default:
	}
	return nil, infra.NewErrorStack("[observability] unknown metrics exporter " + string(typ))
}

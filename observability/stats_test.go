package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestAppStatsMeterName(t *testing.T) {
	require.Equal(t, "xboot/app/default", AppStatsMeterName(" "))
	require.Equal(t, "xboot/app/xtree", AppStatsMeterName("xtree"))
}

func TestProcessRSS(t *testing.T) {
	rss, err := ProcessRSS()
	require.NoError(t, err)
	require.Positive(t, rss)
}

func TestInitAppStats(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(mp)
	defer func() {
		_ = mp.Shutdown(context.Background())
	}()

	require.NoError(t, InitAppStats(context.Background(), "stats-test"))
	require.NoError(t, InitAppStats(context.Background(), "ignored"))

	rm := metricdata.ResourceMetrics{}
	require.NoError(t, reader.Collect(context.Background(), &rm))

	names := make(map[string]struct{})
	for _, sm := range rm.ScopeMetrics {
		if sm.Scope.Name != AppStatsMeterName("stats-test") {
			continue
		}
		for _, m := range sm.Metrics {
			names[m.Name] = struct{}{}
		}
	}
	require.Contains(t, names, "app.core.goroutines")
	require.Contains(t, names, "app.core.processes")
	require.Contains(t, names, "app.process.rss")
}

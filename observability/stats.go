package observability

import (
	"context"
	"os"
	"runtime"
	"strings"
	"sync"

	"github.com/samber/lo"
	"github.com/shirou/gopsutil/v3/process"
	otelruntime "go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/benz9527/xtree/lib/infra"
)

const (
	AppStatsName = "xboot/app"
)

var (
	once sync.Once
)

type appStats struct {
	proc       *process.Process
	goroutines metric.Int64ObservableUpDownCounter
	processes  metric.Int64ObservableUpDownCounter
	rss        metric.Int64ObservableGauge
}

func AppStatsMeterName(name string) string {
	builder := &strings.Builder{}
	builder.WriteString(AppStatsName)
	builder.WriteString("/")
	if len(strings.TrimSpace(name)) > 0 {
		builder.WriteString(name)
	} else {
		builder.WriteString("default")
	}
	return builder.String()
}

// ProcessRSS is the resident set size of the current process in bytes.
func ProcessRSS() (uint64, error) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return 0, infra.WrapErrorStack(err)
	}
	mem, err := proc.MemoryInfo()
	if err != nil {
		return 0, infra.WrapErrorStack(err)
	}
	return mem.RSS, nil
}

// InitAppStats registers the process instruments on the global meter
// provider once. The later calls are no-op.
func InitAppStats(ctx context.Context, name string) (err error) {
	once.Do(func() {
		meter := otel.Meter(
			AppStatsMeterName(name),
			metric.WithInstrumentationVersion(otelruntime.Version()),
		)
		stats := &appStats{}
		if stats.proc, err = process.NewProcessWithContext(ctx, int32(os.Getpid())); err != nil {
			err = infra.WrapErrorStack(err)
			return
		}
		stats.goroutines = lo.Must[metric.Int64ObservableUpDownCounter](meter.
			Int64ObservableUpDownCounter(
				"app.core.goroutines",
				metric.WithDescription(`The application goroutines' info.`),
				metric.WithInt64Callback(func(ctx context.Context, ob metric.Int64Observer) error {
					ob.Observe(int64(runtime.NumGoroutine()))
					return nil
				}),
			),
		)
		stats.processes = lo.Must[metric.Int64ObservableUpDownCounter](meter.
			Int64ObservableUpDownCounter(
				"app.core.processes",
				metric.WithDescription(`The application processes' info.`),
				metric.WithInt64Callback(func(ctx context.Context, ob metric.Int64Observer) error {
					ob.Observe(int64(runtime.GOMAXPROCS(0)))
					return nil
				}),
			),
		)
		stats.rss = lo.Must[metric.Int64ObservableGauge](meter.
			Int64ObservableGauge(
				"app.process.rss",
				metric.WithDescription(`The resident set size of the application process.`),
				metric.WithUnit("By"),
				metric.WithInt64Callback(func(ctx context.Context, ob metric.Int64Observer) error {
					mem, err := stats.proc.MemoryInfoWithContext(ctx)
					if err != nil {
						return err
					}
					ob.Observe(int64(mem.RSS))
					return nil
				}),
			),
		)
		if err = otelruntime.Start(); err != nil {
			err = infra.WrapErrorStack(err)
		}
	})
	return err
}

package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/benz9527/xtree/internal/bench"
	"github.com/benz9527/xtree/lib/infra"
	"github.com/benz9527/xtree/lib/xlog"
	"github.com/benz9527/xtree/observability"
)

type benchFlags struct {
	cfg         bench.Config
	workers     int
	metrics     string
	metricsAddr string
	interval    time.Duration
	linger      time.Duration
}

func newMetricsExporter(lc fx.Lifecycle, flags benchFlags) (*observability.MetricsExporter, error) {
	typ, err := observability.ParseMetricsExporterType(flags.metrics)
	if err != nil {
		return nil, err
	}
	exporter, err := observability.NewMetricsExporter(typ, flags.interval)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.StopHook(exporter.Shutdown))
	return exporter, nil
}

func newBenchRunner(lc fx.Lifecycle, flags benchFlags, logger xlog.XLogger) (*bench.Runner, error) {
	r, err := bench.NewRunner(flags.workers, logger)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.StopHook(r.Release))
	return r, nil
}

// registerMetricsServer serves the exporter handler, if there is one,
// on the metrics address.
func registerMetricsServer(lc fx.Lifecycle, flags benchFlags, exporter *observability.MetricsExporter, logger xlog.XLogger) {
	handler := exporter.Handler()
	if handler == nil {
		return
	}
	if flags.metricsAddr == "" {
		logger.Warn("prometheus metrics exporter without address, nothing is served")
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", flags.metricsAddr)
			if err != nil {
				return infra.WrapErrorStackWithMessage(err, "[app] metrics listen")
			}
			logger.Info("metrics served", zap.String("addr", ln.Addr().String()))
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.ErrorStack(infra.WrapErrorStack(err), "metrics server stopped")
				}
			}()
			return nil
		},
		OnStop: srv.Shutdown,
	})
}

func registerAppStats(lc fx.Lifecycle, _ *observability.MetricsExporter) {
	lc.Append(fx.StartHook(func(ctx context.Context) error {
		return observability.InitAppStats(ctx, appName)
	}))
}

func newBenchApp(flags benchFlags, logger xlog.XLogger, runner **bench.Runner) *fx.App {
	return fx.New(
		fx.WithLogger(func() fxevent.Logger {
			return xlog.NewFxXLogger(logger)
		}),
		fx.Supply(flags),
		fx.Provide(
			func() xlog.XLogger { return logger },
			newMetricsExporter,
			newBenchRunner,
		),
		fx.Invoke(registerAppStats, registerMetricsServer),
		fx.Populate(runner),
	)
}

func newBenchCommand(root *rootCmd) *cobra.Command {
	flags := benchFlags{
		cfg: bench.Config{
			Jobs:        8,
			Size:        100_000,
			RemoveRatio: 0.5,
			Seed:        uint64(time.Now().UnixNano()),
		},
		workers:  4,
		metrics:  string(observability.NoneMetricsExporter),
		interval: defaultMetricsInterval,
	}
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Run independent random tree jobs on a goroutine pool",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var runner *bench.Runner
			app := newBenchApp(flags, root.logger, &runner)
			if err := app.Err(); err != nil {
				return err
			}
			ctx := cmd.Context()
			if err := app.Start(ctx); err != nil {
				return err
			}
			defer func() {
				stopCtx, cancel := context.WithTimeout(context.Background(), app.StopTimeout())
				defer cancel()
				if err := app.Stop(stopCtx); err != nil {
					root.logger.ErrorStack(err, "bench app stop failed")
				}
			}()

			report, err := runner.Run(ctx, flags.cfg)
			if report != nil {
				report.Print(cmd.OutOrStdout())
			}
			if flags.linger > 0 {
				select {
				case <-ctx.Done():
				case <-time.After(flags.linger):
				}
			}
			return err
		},
	}
	fs := cmd.Flags()
	fs.IntVar(&flags.cfg.Jobs, "jobs", flags.cfg.Jobs, "number of independent tree jobs")
	fs.IntVar(&flags.cfg.Size, "size", flags.cfg.Size, "values inserted by each job")
	fs.Float64Var(&flags.cfg.RemoveRatio, "remove-ratio", flags.cfg.RemoveRatio, "share of the values removed again, in [0, 1]")
	fs.Uint64Var(&flags.cfg.Seed, "seed", flags.cfg.Seed, "random seed, each job derives its own stream")
	fs.BoolVar(&flags.cfg.Stats, "tree-stats", false, "record the per tree rotation and fixup stats")
	fs.IntVar(&flags.workers, "workers", flags.workers, "goroutine pool size")
	fs.StringVar(&flags.metrics, "metrics", flags.metrics, "metrics exporter: none, stdout or prometheus")
	fs.StringVar(&flags.metricsAddr, "metrics-addr", "", "address serving /metrics for the prometheus exporter")
	fs.DurationVar(&flags.interval, "metrics-interval", flags.interval, "stdout metrics export interval")
	fs.DurationVar(&flags.linger, "linger", 0, "keep the metrics served after the bench finished")
	return cmd
}

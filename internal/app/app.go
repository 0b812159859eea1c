package app

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/zap/zapcore"

	"github.com/benz9527/xtree/lib/infra"
	"github.com/benz9527/xtree/lib/xlog"
)

const appName = "xtree"

var ErrAppUnknownLogFormat = errors.New("[app] unknown log format")

type xtreeBanner struct{}

func (b xtreeBanner) JSON() string {
	return `{"app":"xtree","desc":"red-black tree workloads and benchmarks"}`
}

func (b xtreeBanner) PlainText() string {
	return `
__  _______ ____  _____ _____
\ \/ /_   _|  _ \| ____| ____|
 \  /  | | | |_) |  _| |  _|
 /  \  | | |  _ <| |___| |___
/_/\_\ |_| |_| \_\_____|_____|
`
}

type globalFlags struct {
	logLevel  string
	logFormat string
	banner    bool
}

func (f *globalFlags) newLogger() (xlog.XLogger, error) {
	var enc = xlog.JSON
	switch strings.ToLower(strings.TrimSpace(f.logFormat)) {
	case "", "json":
	case "text", "plain":
		enc = xlog.PlainText
	default:
		return nil, infra.WrapErrorStackWithMessage(ErrAppUnknownLogFormat, f.logFormat)
	}
	opts := []xlog.XLoggerOption{
		xlog.WithXLoggerWriter(xlog.StdErr),
		xlog.WithXLoggerEncoder(enc),
		xlog.WithXLoggerContextFieldExtract("command", xlog.ContextKeyMapToOmitempty),
	}
	// Empty level leaves it to the XLOG_LVL env.
	if strings.TrimSpace(f.logLevel) != "" {
		opts = append(opts, xlog.WithXLoggerLevel(xlog.ParseLogLevel(f.logLevel)))
	}
	return xlog.NewXLogger(opts...), nil
}

type rootCmd struct {
	flags       globalFlags
	logger      xlog.XLogger
	undo        func()
	setMaxProcs func(opts ...maxprocs.Option) (func(), error)
}

func newRootCmd() *rootCmd {
	return &rootCmd{setMaxProcs: maxprocs.Set}
}

// cleanup restores GOMAXPROCS and flushes the logger. It runs whether
// the command failed or not.
func (root *rootCmd) cleanup() {
	if root.undo != nil {
		root.undo()
		root.undo = nil
	}
	if root.logger != nil {
		_ = root.logger.Sync()
	}
}

// newRootCommand builds the xtree command tree. The logs go to the
// standard error and the reports to the command output.
func newRootCommand(root *rootCmd) *cobra.Command {
	cmd := &cobra.Command{
		Use:           appName,
		Short:         "Replay the red-black tree workloads and run the concurrent benchmarks",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := root.flags.newLogger()
			if err != nil {
				return err
			}
			root.logger = logger
			if root.flags.banner {
				logger.Banner(xtreeBanner{})
			}
			undo, err := root.setMaxProcs(maxprocs.Logger(func(format string, args ...any) {
				logger.Logf(zapcore.DebugLevel, format, args...)
			}))
			if err != nil {
				logger.Warn("unable to set GOMAXPROCS by the cgroup quota")
			}
			root.undo = undo
			cmd.SetContext(xlog.ContextWithField(cmd.Context(), "command", cmd.Name()))
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&root.flags.logLevel, "log-level", "", "log level: debug, info, warn or error, defaults to $XLOG_LVL")
	cmd.PersistentFlags().StringVar(&root.flags.logFormat, "log-format", "json", "log format: json or text")
	cmd.PersistentFlags().BoolVar(&root.flags.banner, "banner", false, "print the banner on start")
	cmd.AddCommand(
		newRunCommand(root),
		newBenchCommand(root),
	)
	return cmd
}

func execute(ctx context.Context, root *rootCmd, out io.Writer, args ...string) error {
	defer root.cleanup()
	cmd := newRootCommand(root)
	cmd.SetOut(out)
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}

// Execute runs the root command with ctx and the given arguments.
func Execute(ctx context.Context, out io.Writer, args ...string) error {
	return execute(ctx, newRootCmd(), out, args...)
}

const defaultMetricsInterval = 10 * time.Second

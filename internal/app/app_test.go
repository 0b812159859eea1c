package app

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/benz9527/xtree/internal/workload"
)

func TestGlobalFlags_NewLogger(t *testing.T) {
	testcases := []struct {
		format  string
		wantErr bool
	}{
		{"", false},
		{"json", false},
		{"TEXT", false},
		{"xml", true},
	}
	for _, tc := range testcases {
		t.Run(tc.format, func(tt *testing.T) {
			f := &globalFlags{logLevel: "error", logFormat: tc.format}
			logger, err := f.newLogger()
			if tc.wantErr {
				require.ErrorIs(tt, err, ErrAppUnknownLogFormat)
				return
			}
			require.NoError(tt, err)
			require.Equal(tt, "error", logger.Level())
		})
	}
}

func TestExecute_Run(t *testing.T) {
	out := &bytes.Buffer{}
	err := Execute(context.Background(), out,
		"run", "basic.yaml",
		"--dir", filepath.Join("..", "workload", "testdata"),
		"--log-level", "error",
	)
	require.NoError(t, err)
	require.Contains(t, out.String(), `workload "basic"`)
	require.Contains(t, out.String(), "out=[4 5]")

	out.Reset()
	err = Execute(context.Background(), out,
		"run", "../app/app.go",
		"--dir", filepath.Join("..", "workload", "testdata"),
		"--log-level", "error",
	)
	require.Error(t, err)
	require.Empty(t, out.String())

	err = Execute(context.Background(), out, "run", "--log-level", "error")
	require.Error(t, err)

	err = Execute(context.Background(), out, "run", "basic.yaml", "--log-format", "xml")
	require.ErrorIs(t, err, ErrAppUnknownLogFormat)
}

func TestExecute_RunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Execute(ctx, &bytes.Buffer{},
		"run", "basic.yaml",
		"--dir", filepath.Join("..", "workload", "testdata"),
		"--log-level", "error",
	)
	require.ErrorIs(t, err, context.Canceled)
}

func TestExecute_Bench(t *testing.T) {
	testcases := []struct {
		name string
		args []string
	}{
		{"none", []string{"--metrics", "none"}},
		{"stdout", []string{"--metrics", "stdout", "--metrics-interval", "1h"}},
		{"prometheus", []string{"--metrics", "prometheus", "--metrics-addr", "127.0.0.1:0", "--tree-stats"}},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			out := &bytes.Buffer{}
			args := append([]string{
				"bench",
				"--jobs", "4",
				"--size", "256",
				"--workers", "2",
				"--seed", "11",
				"--log-level", "error",
			}, tc.args...)
			require.NoError(tt, Execute(context.Background(), out, args...))
			require.Contains(tt, out.String(), "bench: 4 jobs")
			require.Contains(tt, out.String(), "failed 0")
		})
	}
}

func TestExecute_BenchInvalid(t *testing.T) {
	testcases := []struct {
		name string
		args []string
	}{
		{"unknown exporter", []string{"--metrics", "kafka"}},
		{"no workers", []string{"--workers", "0"}},
		{"no jobs", []string{"--jobs", "0"}},
		{"ratio", []string{"--remove-ratio", "2"}},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			args := append([]string{"bench", "--size", "8", "--log-level", "error"}, tc.args...)
			require.Error(tt, Execute(context.Background(), &bytes.Buffer{}, args...))
		})
	}
}

func TestExecute_CleanupOnFailure(t *testing.T) {
	testcases := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{"run ok", []string{"run", "basic.yaml", "--dir", filepath.Join("..", "workload", "testdata")}, false},
		{"run missing script", []string{"run", "missing.yaml", "--dir", filepath.Join("..", "workload", "testdata")}, true},
		{"bench invalid", []string{"bench", "--jobs", "0"}, true},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			undone := 0
			root := newRootCmd()
			root.setMaxProcs = func(opts ...maxprocs.Option) (func(), error) {
				return func() { undone++ }, nil
			}
			args := append(tc.args, "--log-level", "error")
			err := execute(context.Background(), root, &bytes.Buffer{}, args...)
			if tc.wantErr {
				require.Error(tt, err)
			} else {
				require.NoError(tt, err)
			}
			require.Equal(tt, 1, undone)
			require.Nil(tt, root.undo)
			require.NotNil(tt, root.logger)
		})
	}
}

func TestBasicScriptStaysValid(t *testing.T) {
	_, err := workload.Load(filepath.Join("..", "workload", "testdata"), "basic.yaml")
	require.NoError(t, err)
}

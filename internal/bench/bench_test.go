package bench

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/benz9527/xtree/lib/xlog"
)

func TestHeightBound(t *testing.T) {
	testcases := []struct {
		n        int64
		expected int
	}{
		{0, 0},
		{1, 2},
		{3, 4},
		{7, 6},
		{1023, 20},
	}
	for _, tc := range testcases {
		require.Equal(t, tc.expected, heightBound(tc.n))
	}
}

func TestConfigValidate(t *testing.T) {
	testcases := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"ok", Config{Jobs: 1, Size: 1}, false},
		{"no jobs", Config{Jobs: 0, Size: 1}, true},
		{"no size", Config{Jobs: 1, Size: 0}, true},
		{"ratio overflow", Config{Jobs: 1, Size: 1, RemoveRatio: 1.5}, true},
		{"ratio negative", Config{Jobs: 1, Size: 1, RemoveRatio: -0.1}, true},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			err := tc.cfg.validate()
			if tc.wantErr {
				require.ErrorIs(tt, err, ErrBenchInvalidConfig)
			} else {
				require.NoError(tt, err)
			}
		})
	}
}

func TestRunJob(t *testing.T) {
	res := runJob(context.Background(), 3, Config{Jobs: 1, Size: 2000, RemoveRatio: 0.25, Seed: 42})
	require.NoError(t, res.Err)
	require.Equal(t, 2000, res.Inserted)
	require.Equal(t, 500, res.Removed)
	require.Equal(t, int64(1500), res.Count)
	require.LessOrEqual(t, res.Height, heightBound(res.Count))

	again := runJob(context.Background(), 3, Config{Jobs: 1, Size: 2000, RemoveRatio: 0.25, Seed: 42})
	require.Equal(t, res.Height, again.Height)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	canceled := runJob(ctx, 0, Config{Jobs: 1, Size: 10})
	require.ErrorIs(t, canceled.Err, context.Canceled)
}

func TestRunner(t *testing.T) {
	_, err := NewRunner(0, nil)
	require.ErrorIs(t, err, ErrBenchInvalidConfig)

	logger := xlog.NewXLogger(xlog.WithXLoggerLevel(xlog.LogLevelError))
	r, err := NewRunner(4, logger)
	require.NoError(t, err)
	require.Equal(t, 4, r.Workers())

	report, err := r.Run(context.Background(), Config{Jobs: 16, Size: 512, RemoveRatio: 0.5, Seed: 7, Stats: true})
	require.NoError(t, err)
	require.Len(t, report.Results, 16)
	require.Empty(t, report.Failed())
	require.Equal(t, int64(16*256), report.TotalCount())
	require.LessOrEqual(t, report.MaxHeight(), heightBound(256))
	for i, res := range report.Results {
		require.Equal(t, i, res.Job)
	}

	buf := &bytes.Buffer{}
	report.Print(buf)
	require.Contains(t, buf.String(), "bench: 16 jobs")

	_, err = r.Run(context.Background(), Config{})
	require.ErrorIs(t, err, ErrBenchInvalidConfig)

	r.Release()
	_, err = r.Run(context.Background(), Config{Jobs: 1, Size: 1})
	require.ErrorIs(t, err, ErrBenchReleased)

	var nilRunner *Runner
	nilRunner.Release()
	require.Equal(t, 0, nilRunner.Workers())
}

package workload

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/benz9527/xtree/lib/tree"
	"github.com/benz9527/xtree/lib/xlog"
)

func TestParseRemoveBorrow(t *testing.T) {
	testcases := []struct {
		policy   string
		expected tree.RBRemoveBorrow
		wantErr  bool
	}{
		{"", tree.RemoveBorrowAuto, false},
		{"auto", tree.RemoveBorrowAuto, false},
		{" SUCC ", tree.RemoveBorrowSucc, false},
		{"pred", tree.RemoveBorrowPred, false},
		{"middle", tree.RemoveBorrowAuto, true},
	}
	for _, tc := range testcases {
		t.Run(tc.policy, func(tt *testing.T) {
			borrow, err := ParseRemoveBorrow(tc.policy)
			if tc.wantErr {
				require.ErrorIs(tt, err, ErrWorkloadUnknownBorrow)
				return
			}
			require.NoError(tt, err)
			require.Equal(tt, tc.expected, borrow)
		})
	}
}

func TestParse_Errors(t *testing.T) {
	testcases := []struct {
		name     string
		script   string
		expected error
	}{
		{
			name:     "empty ops",
			script:   "name: empty\nops: []\n",
			expected: ErrWorkloadEmptyScript,
		},
		{
			name:     "unknown op",
			script:   "name: bad\nops:\n  - op: rotate\n",
			expected: ErrWorkloadUnknownOp,
		},
		{
			name:     "missing values",
			script:   "name: bad\nops:\n  - op: add\n",
			expected: ErrWorkloadMissingValues,
		},
		{
			name:     "unknown borrow",
			script:   "name: bad\nremove_borrow: middle\nops:\n  - op: min\n",
			expected: ErrWorkloadUnknownBorrow,
		},
	}
	for _, tc := range testcases {
		t.Run(tc.name, func(tt *testing.T) {
			_, err := ParseBytes([]byte(tc.script))
			require.ErrorIs(tt, err, tc.expected)
		})
	}

	_, err := ParseBytes([]byte("name: bad\ncolour: red\nops:\n  - op: min\n"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "colour")
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	data, err := os.ReadFile(filepath.Join("testdata", "basic.yaml"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "basic.yaml"), data, 0o600))

	script, err := Load(dir, "basic.yaml")
	require.NoError(t, err)
	require.Equal(t, "basic", script.Name)
	require.True(t, script.Stats)
	require.Len(t, script.Ops, 13)

	_, err = Load(dir, "../basic.yaml")
	require.Error(t, err)
	_, err = Load(dir, "missing.yaml")
	require.Error(t, err)
}

func TestRun_Basic(t *testing.T) {
	script, err := Load("testdata", "basic.yaml")
	require.NoError(t, err)

	report, err := Run(context.Background(), script, xlog.NewXLogger(xlog.WithXLoggerLevel(xlog.LogLevelError)))
	require.NoError(t, err)
	require.Equal(t, "basic", report.Name)
	require.Len(t, report.Results, len(script.Ops))
	require.Equal(t, int64(0), report.Count)
	require.Equal(t, 0, report.Height)

	res := report.Results
	require.Equal(t, []bool{true, true, true, true, true}, res[0].Hits)
	require.Equal(t, []bool{false}, res[1].Hits)
	require.Equal(t, int64(5), res[1].Count)
	require.Equal(t, []bool{true, false}, res[2].Hits)
	require.Equal(t, []int64{1, 3, 4, 5, 8}, res[3].Output)
	require.Equal(t, []int64{1}, res[4].Output)
	require.Equal(t, []int64{8}, res[5].Output)
	require.Equal(t, []bool{true, false}, res[6].Hits)
	require.Equal(t, []int64{1}, res[7].Output)
	require.Equal(t, []int64{8}, res[8].Output)
	require.Equal(t, []int64{4, 5}, res[9].Output)
	require.NoError(t, res[10].Err)
	require.Equal(t, int64(0), res[11].Count)
	require.ErrorIs(t, res[12].Err, tree.ErrRBTreeEmpty)

	require.NotNil(t, report.Stats)
	require.Equal(t, int64(5), report.Stats.Inserts)

	buf := &bytes.Buffer{}
	report.Print(buf)
	require.Contains(t, buf.String(), `workload "basic": 13 ops`)
	require.Contains(t, buf.String(), "out=[1 3 4 5 8]")
}

func TestRun_DescDuplicates(t *testing.T) {
	script := &Script{
		Name:       "desc-dup",
		Duplicates: true,
		Desc:       true,
		Ops: []Op{
			{Op: OpAdd, Values: []int64{2, 7, 2, 9, 7}},
			{Op: OpInOrder},
			{Op: OpMin},
			{Op: OpRemoveMin},
		},
	}
	report, err := Run(context.Background(), script, nil)
	require.NoError(t, err)
	require.Equal(t, []int64{9, 7, 7, 2, 2}, report.Results[1].Output)
	require.Equal(t, []int64{9}, report.Results[2].Output)
	require.Equal(t, []int64{9}, report.Results[3].Output)
	require.Equal(t, int64(4), report.Count)
	require.Nil(t, report.Stats)
}

func TestRun_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	script := &Script{Name: "canceled", Ops: []Op{{Op: OpAdd, Values: []int64{1}}}}
	report, err := Run(ctx, script, nil)
	require.True(t, errors.Is(err, context.Canceled))
	require.Empty(t, report.Results)

	_, err = Run(context.Background(), nil, nil)
	require.ErrorIs(t, err, ErrWorkloadEmptyScript)
}

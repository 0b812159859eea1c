package tree

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collectSums(t *testing.T, reader sdkmetric.Reader, scope string) map[string][]metricdata.DataPoint[int64] {
	t.Helper()
	rm := metricdata.ResourceMetrics{}
	require.NoError(t, reader.Collect(context.Background(), &rm))

	sums := make(map[string][]metricdata.DataPoint[int64])
	for _, sm := range rm.ScopeMetrics {
		if sm.Scope.Name != scope {
			continue
		}
		for _, m := range sm.Metrics {
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok {
				sums[m.Name] = sum.DataPoints
			}
		}
	}
	return sums
}

func total(points []metricdata.DataPoint[int64], kv ...attribute.KeyValue) int64 {
	res := int64(0)
	for _, p := range points {
		matched := true
		for _, attr := range kv {
			v, ok := p.Attributes.Value(attr.Key)
			if !ok || v != attr.Value {
				matched = false
				break
			}
		}
		if matched {
			res += p.Value
		}
	}
	return res
}

func TestRBTreeStats(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(mp)
	defer func() {
		_ = mp.Shutdown(context.Background())
	}()

	tree := NewOrderedRBTree[int](WithRBTreeStats[int]("stats-test"))
	// 1..7 sequential inserts rotate left only.
	for v := 1; v <= 7; v++ {
		require.True(t, tree.Add(v))
	}
	require.True(t, tree.Remove(1))
	require.True(t, tree.Remove(2))
	tree.Clear()

	snapshot, ok := StatsOf[int](tree)
	require.True(t, ok)
	require.Equal(t, int64(7), snapshot.Inserts)
	require.Equal(t, int64(2), snapshot.Removes)
	// The first insert and the recolor up to the root of the 4th.
	require.Equal(t, int64(2), snapshot.InsertFixups[0])

	sums := collectSums(t, reader, RBTreeStatsName+"/stats-test")
	require.Equal(t, int64(0), total(sums["rbtree.element.count"]))
	require.Equal(t, int64(7), total(sums["rbtree.insert.count"]))
	require.Equal(t, int64(2), total(sums["rbtree.remove.count"]))
	require.Equal(t, snapshot.LeftRotations,
		total(sums["rbtree.rotation.count"], attribute.String("rbtree.rotation.dir", "Left")))
	require.Equal(t, snapshot.RightRotations,
		total(sums["rbtree.rotation.count"], attribute.String("rbtree.rotation.dir", "Right")))
	require.Positive(t, snapshot.LeftRotations)

	for i, n := range snapshot.InsertFixups {
		require.Equal(t, n, total(sums["rbtree.fixup.count"],
			attribute.String("rbtree.fixup.phase", "insert"),
			attribute.String("rbtree.fixup.case", strconv.Itoa(i+1)),
		))
	}
	for i, n := range snapshot.RemoveFixups {
		require.Equal(t, n, total(sums["rbtree.fixup.count"],
			attribute.String("rbtree.fixup.phase", "remove"),
			attribute.String("rbtree.fixup.case", strconv.Itoa(i+1)),
		))
	}
}

func TestRBTreeStats_Disabled(t *testing.T) {
	tree := NewOrderedRBTree[int]()
	tree.Add(1)
	_, ok := StatsOf[int](tree)
	require.False(t, ok)

	var stats *rbtreeStats
	stats.recordInsert()
	stats.recordRemove()
	stats.recordClear()
	stats.recordRotation(Left)
	stats.recordFixup(insertFixup, 1)
}

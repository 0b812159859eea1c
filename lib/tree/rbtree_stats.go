package tree

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	RBTreeStatsName = "xboot/rbtree"
)

type fixupPhase uint8

const (
	insertFixup fixupPhase = iota
	removeFixup
)

func (p fixupPhase) String() string {
	if p == removeFixup {
		return "remove"
	}
	return "insert"
}

const (
	insertFixupCases = 5
	removeFixupCases = 6
)

// RBTreeStats is a snapshot of the local tallies.
// InsertFixups[i] counts the insertion fixup case i+1, the same
// for RemoveFixups.
type RBTreeStats struct {
	Inserts        int64
	Removes        int64
	LeftRotations  int64
	RightRotations int64
	InsertFixups   [insertFixupCases]int64
	RemoveFixups   [removeFixupCases]int64
}

type rbtreeStats struct {
	inserts         atomic.Int64
	removes         atomic.Int64
	leftRotations   atomic.Int64
	rightRotations  atomic.Int64
	insertFixups    [insertFixupCases]atomic.Int64
	removeFixups    [removeFixupCases]atomic.Int64
	rotationAttrs   [2]metric.AddOption
	insertAttrs     [insertFixupCases]metric.AddOption
	removeAttrs     [removeFixupCases]metric.AddOption
	elementCount    metric.Int64UpDownCounter
	insertCount     metric.Int64Counter
	removeCount     metric.Int64Counter
	rotationCount   metric.Int64Counter
	fixupCount      metric.Int64Counter
	rotationsPerOps metric.Float64ObservableGauge
}

func (stats *rbtreeStats) recordInsert() {
	if stats == nil {
		return
	}
	stats.inserts.Add(1)
	stats.elementCount.Add(context.Background(), 1)
	stats.insertCount.Add(context.Background(), 1)
}

func (stats *rbtreeStats) recordRemove() {
	if stats == nil {
		return
	}
	stats.removes.Add(1)
	stats.elementCount.Add(context.Background(), -1)
	stats.removeCount.Add(context.Background(), 1)
}

// Cleared nodes are not removals, only the element count drops.
func (stats *rbtreeStats) recordClear() {
	if stats == nil {
		return
	}
	stats.elementCount.Add(context.Background(), -1)
}

func (stats *rbtreeStats) recordRotation(dir RBDirection) {
	if stats == nil {
		return
	}
	idx := 0
	if dir == Left {
		stats.leftRotations.Add(1)
	} else {
		idx = 1
		stats.rightRotations.Add(1)
	}
	stats.rotationCount.Add(context.Background(), 1, stats.rotationAttrs[idx])
}

// The case is 1-based.
func (stats *rbtreeStats) recordFixup(phase fixupPhase, c int) {
	if stats == nil {
		return
	}
	switch phase {
	case insertFixup:
		if c < 1 || c > insertFixupCases {
			return
		}
		stats.insertFixups[c-1].Add(1)
		stats.fixupCount.Add(context.Background(), 1, stats.insertAttrs[c-1])
	case removeFixup:
		if c < 1 || c > removeFixupCases {
			return
		}
		stats.removeFixups[c-1].Add(1)
		stats.fixupCount.Add(context.Background(), 1, stats.removeAttrs[c-1])
	default:
	}
}

func (stats *rbtreeStats) snapshot() RBTreeStats {
	s := RBTreeStats{
		Inserts:        stats.inserts.Load(),
		Removes:        stats.removes.Load(),
		LeftRotations:  stats.leftRotations.Load(),
		RightRotations: stats.rightRotations.Load(),
	}
	for i := range stats.insertFixups {
		s.InsertFixups[i] = stats.insertFixups[i].Load()
	}
	for i := range stats.removeFixups {
		s.RemoveFixups[i] = stats.removeFixups[i].Load()
	}
	return s
}

// StatsOf returns false if the tree is built without WithRBTreeStats.
func StatsOf[T any](tree RBTree[T]) (RBTreeStats, bool) {
	t, ok := tree.(*rbTree[T])
	if !ok || t.stats == nil {
		return RBTreeStats{}, false
	}
	return t.stats.snapshot(), true
}

func fixupAttrs(phase fixupPhase, c int) metric.AddOption {
	return metric.WithAttributeSet(attribute.NewSet(
		attribute.String("rbtree.fixup.phase", phase.String()),
		attribute.String("rbtree.fixup.case", strconv.Itoa(c)),
	))
}

func newRBTreeStats(name string) *rbtreeStats {
	meterName := RBTreeStatsName
	if name != "" {
		meterName = fmt.Sprintf("%s/%s", RBTreeStatsName, name)
	}
	meter := otel.Meter(meterName)
	stats := &rbtreeStats{
		elementCount: lo.Must[metric.Int64UpDownCounter](meter.
			Int64UpDownCounter(
				"rbtree.element.count",
				metric.WithDescription("The number of elements in the red-black tree."),
			),
		),
		insertCount: lo.Must[metric.Int64Counter](meter.
			Int64Counter(
				"rbtree.insert.count",
				metric.WithDescription("The number of elements inserted into the red-black tree."),
			),
		),
		removeCount: lo.Must[metric.Int64Counter](meter.
			Int64Counter(
				"rbtree.remove.count",
				metric.WithDescription("The number of elements removed from the red-black tree."),
			),
		),
		rotationCount: lo.Must[metric.Int64Counter](meter.
			Int64Counter(
				"rbtree.rotation.count",
				metric.WithDescription("The number of rotations by rebalancing."),
			),
		),
		fixupCount: lo.Must[metric.Int64Counter](meter.
			Int64Counter(
				"rbtree.fixup.count",
				metric.WithDescription("The number of rebalancing cases hit by insertion and deletion."),
			),
		),
	}
	stats.rotationAttrs[0] = metric.WithAttributeSet(attribute.NewSet(
		attribute.String("rbtree.rotation.dir", Left.String()),
	))
	stats.rotationAttrs[1] = metric.WithAttributeSet(attribute.NewSet(
		attribute.String("rbtree.rotation.dir", Right.String()),
	))
	for i := range stats.insertAttrs {
		stats.insertAttrs[i] = fixupAttrs(insertFixup, i+1)
	}
	for i := range stats.removeAttrs {
		stats.removeAttrs[i] = fixupAttrs(removeFixup, i+1)
	}
	stats.rotationsPerOps = lo.Must[metric.Float64ObservableGauge](meter.
		Float64ObservableGauge(
			"rbtree.rotation.per.op",
			metric.WithDescription("The average rotations per insertion or deletion."),
			metric.WithFloat64Callback(func(ctx context.Context, ob metric.Float64Observer) error {
				ops := stats.inserts.Load() + stats.removes.Load()
				if ops <= 0 {
					ob.Observe(0)
					return nil
				}
				ob.Observe(float64(stats.leftRotations.Load()+stats.rightRotations.Load()) / float64(ops))
				return nil
			}),
		),
	)
	return stats
}

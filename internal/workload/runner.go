package workload

import (
	"context"
	"fmt"
	"io"
	"iter"
	"slices"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/benz9527/xtree/lib/infra"
	"github.com/benz9527/xtree/lib/tree"
	"github.com/benz9527/xtree/lib/xlog"
)

type OpResult struct {
	Op     OpType
	Values []int64
	// Hits is the per value result of add, remove and contains.
	Hits []bool
	// Output is the traversal, or the single value of min and max.
	Output []int64
	Count  int64
	Err    error
}

type Report struct {
	Name    string
	Results []OpResult
	Count   int64
	Height  int
	Stats   *tree.RBTreeStats
}

func (r *Report) Print(w io.Writer) {
	_, _ = fmt.Fprintf(w, "workload %q: %d ops, count %d, height %d\n", r.Name, len(r.Results), r.Count, r.Height)
	for i, res := range r.Results {
		builder := &strings.Builder{}
		_, _ = fmt.Fprintf(builder, "%3d %-10s", i, res.Op)
		if len(res.Values) > 0 {
			_, _ = fmt.Fprintf(builder, " values=%v", res.Values)
		}
		if len(res.Hits) > 0 {
			_, _ = fmt.Fprintf(builder, " hits=%v", res.Hits)
		}
		if res.Output != nil {
			_, _ = fmt.Fprintf(builder, " out=%v", res.Output)
		}
		_, _ = fmt.Fprintf(builder, " count=%d", res.Count)
		if res.Err != nil {
			_, _ = fmt.Fprintf(builder, " err=%q", res.Err.Error())
		}
		_, _ = fmt.Fprintln(w, builder.String())
	}
	if r.Stats != nil {
		_, _ = fmt.Fprintf(w, "rotations left=%d right=%d insert fixups=%v remove fixups=%v\n",
			r.Stats.LeftRotations, r.Stats.RightRotations, r.Stats.InsertFixups, r.Stats.RemoveFixups)
	}
}

func apply(rbtree tree.RBTree[int64], op Op) OpResult {
	res := OpResult{Op: op.Op, Values: op.Values}
	hits := func(fn func(int64) bool) {
		res.Hits = make([]bool, 0, len(op.Values))
		for _, v := range op.Values {
			res.Hits = append(res.Hits, fn(v))
		}
	}
	single := func(v int64, err error) {
		if err != nil {
			res.Err = err
			return
		}
		res.Output = []int64{v}
	}
	collect := func(seq iter.Seq[int64]) {
		res.Output = slices.AppendSeq(make([]int64, 0, rbtree.Count()), seq)
	}

	switch op.Op {
	case OpAdd:
		hits(rbtree.Add)
	case OpRemove:
		hits(rbtree.Remove)
	case OpContains:
		hits(rbtree.Contains)
	case OpMin:
		single(rbtree.MinValue())
	case OpMax:
		single(rbtree.MaxValue())
	case OpRemoveMin:
		single(rbtree.RemoveMin())
	case OpRemoveMax:
		single(rbtree.RemoveMax())
	case OpInOrder:
		collect(rbtree.InOrder())
	case OpPreOrder:
		collect(rbtree.PreOrder())
	case OpPostOrder:
		collect(rbtree.PostOrder())
	case OpLevelOrder:
		collect(rbtree.LevelOrder())
	case OpClear:
		rbtree.Clear()
	case OpValidate:
		res.Err = tree.Validate[int64](rbtree)
	default:
		res.Err = infra.WrapErrorStackWithMessage(ErrWorkloadUnknownOp, string(op.Op))
	}
	res.Count = rbtree.Count()
	return res
}

// Run replays the script on a new tree. The invariants are validated
// after each mutation, all violations are returned together with the
// report. The context is checked between ops.
func Run(ctx context.Context, script *Script, logger xlog.XLogger) (*Report, error) {
	if script == nil {
		return nil, infra.WrapErrorStack(ErrWorkloadEmptyScript)
	}
	if err := script.Validate(); err != nil {
		return nil, err
	}
	rbtree := tree.NewOrderedRBTree[int64](script.treeOptions()...)

	report := &Report{
		Name:    script.Name,
		Results: make([]OpResult, 0, len(script.Ops)),
	}
	var violations error
	for i, op := range script.Ops {
		if err := ctx.Err(); err != nil {
			return report, infra.WrapErrorStackWithMessage(err, fmt.Sprintf("[workload] canceled before ops[%d]", i))
		}
		res := apply(rbtree, op)
		report.Results = append(report.Results, res)
		if logger != nil {
			logger.DebugContext(ctx, "workload op",
				zap.String("workload", script.Name),
				zap.Int("index", i),
				zap.String("op", string(op.Op)),
				zap.Int64("count", res.Count),
				zap.Bool("failed", res.Err != nil),
			)
		}
		if op.Op.isMutation() {
			if err := tree.Validate[int64](rbtree); err != nil {
				violations = multierr.Append(violations,
					infra.WrapErrorStackWithMessage(err, fmt.Sprintf("[workload] after ops[%d] %s", i, op.Op)),
				)
			}
		}
	}

	report.Count = rbtree.Count()
	report.Height = rbtree.Height()
	if stats, ok := tree.StatsOf[int64](rbtree); ok {
		report.Stats = &stats
	}
	if logger != nil {
		if violations != nil {
			logger.ErrorStack(violations, "workload violated the tree invariants", zap.String("workload", script.Name))
		} else {
			logger.InfoContext(ctx, "workload finished",
				zap.String("workload", script.Name),
				zap.Int("ops", len(script.Ops)),
				zap.Int64("count", report.Count),
				zap.Int("height", report.Height),
			)
		}
	}
	return report, violations
}

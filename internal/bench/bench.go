package bench

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/samber/lo"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/benz9527/xtree/lib/infra"
	"github.com/benz9527/xtree/lib/tree"
	"github.com/benz9527/xtree/lib/xlog"
	"github.com/benz9527/xtree/observability"
)

var (
	ErrBenchInvalidConfig = errors.New("[bench] invalid config")
	ErrBenchHeightBound   = errors.New("[bench] height exceeds 2*log2(n+1)")
	ErrBenchReleased      = errors.New("[bench] runner released")
)

type Config struct {
	Jobs        int
	Size        int
	RemoveRatio float64
	Seed        uint64
	Stats       bool
}

func (cfg Config) validate() error {
	if cfg.Jobs <= 0 || cfg.Size <= 0 {
		return infra.WrapErrorStackWithMessage(ErrBenchInvalidConfig, "jobs and size must be positive")
	}
	if cfg.RemoveRatio < 0 || cfg.RemoveRatio > 1 {
		return infra.WrapErrorStackWithMessage(ErrBenchInvalidConfig, "remove ratio must be in [0, 1]")
	}
	return nil
}

type JobResult struct {
	Job      int
	Inserted int
	Removed  int
	Count    int64
	Height   int
	Duration time.Duration
	Err      error
}

type Report struct {
	Results   []JobResult
	Elapsed   time.Duration
	RSSBefore uint64
	RSSAfter  uint64
}

func (r *Report) MaxHeight() int {
	if len(r.Results) == 0 {
		return 0
	}
	return lo.MaxBy(r.Results, func(a, b JobResult) bool {
		return a.Height > b.Height
	}).Height
}

func (r *Report) TotalCount() int64 {
	return lo.SumBy(r.Results, func(res JobResult) int64 {
		return res.Count
	})
}

func (r *Report) Failed() []JobResult {
	return lo.Filter(r.Results, func(res JobResult, _ int) bool {
		return res.Err != nil
	})
}

func (r *Report) Print(w io.Writer) {
	_, _ = fmt.Fprintf(w, "bench: %d jobs in %s, total count %d, max height %d, failed %d\n",
		len(r.Results), r.Elapsed, r.TotalCount(), r.MaxHeight(), len(r.Failed()))
	if r.RSSBefore > 0 || r.RSSAfter > 0 {
		_, _ = fmt.Fprintf(w, "rss: %d -> %d bytes\n", r.RSSBefore, r.RSSAfter)
	}
	for _, res := range r.Results {
		_, _ = fmt.Fprintf(w, "job %3d inserted=%d removed=%d count=%d height=%d took=%s",
			res.Job, res.Inserted, res.Removed, res.Count, res.Height, res.Duration)
		if res.Err != nil {
			_, _ = fmt.Fprintf(w, " err=%q", res.Err.Error())
		}
		_, _ = fmt.Fprintln(w)
	}
}

// heightBound is the red-black tree height upper bound 2*log2(n+1).
func heightBound(n int64) int {
	return int(math.Floor(2 * math.Log2(float64(n+1))))
}

// Runner runs the independent tree jobs on a shared goroutine pool.
// Each job owns its tree.
type Runner struct {
	pool   *ants.Pool
	logger xlog.XLogger
}

func NewRunner(workers int, logger xlog.XLogger) (*Runner, error) {
	if workers <= 0 {
		return nil, infra.WrapErrorStackWithMessage(ErrBenchInvalidConfig, "workers must be positive")
	}
	p, err := ants.NewPool(workers,
		ants.WithPreAlloc(true),
		ants.WithLogger(xlog.NewAntsXLogger(logger)),
	)
	if err != nil {
		return nil, infra.WrapErrorStack(err)
	}
	return &Runner{pool: p, logger: logger}, nil
}

func (r *Runner) Workers() int {
	if r == nil || r.pool == nil {
		return 0
	}
	return r.pool.Cap()
}

func (r *Runner) Release() {
	if r == nil || r.pool == nil {
		return
	}
	r.pool.Release()
}

func runJob(ctx context.Context, job int, cfg Config) (res JobResult) {
	res.Job = job
	start := time.Now()
	defer func() {
		res.Duration = time.Since(start)
	}()

	opts := make([]tree.RBTreeOpt[int64], 0, 1)
	if cfg.Stats {
		opts = append(opts, tree.WithRBTreeStats[int64](fmt.Sprintf("bench-%d", job)))
	}
	rbtree := tree.NewOrderedRBTree[int64](opts...)

	rng := rand.New(rand.NewPCG(cfg.Seed, uint64(job)))
	values := lo.Map(rng.Perm(cfg.Size), func(v int, _ int) int64 {
		return int64(v)
	})
	for i, v := range values {
		if i%1024 == 0 && ctx.Err() != nil {
			res.Err = infra.WrapErrorStack(ctx.Err())
			return
		}
		if rbtree.Add(v) {
			res.Inserted++
		}
	}

	removals := lo.Subset(values, 0, uint(float64(len(values))*cfg.RemoveRatio))
	for _, v := range removals {
		if rbtree.Remove(v) {
			res.Removed++
		}
	}

	res.Count = rbtree.Count()
	res.Height = rbtree.Height()
	var err error
	if res.Count != int64(res.Inserted-res.Removed) {
		err = multierr.Append(err, infra.WrapErrorStackWithMessage(tree.ErrRBTreeCountViolation,
			fmt.Sprintf("count %d, expected %d", res.Count, res.Inserted-res.Removed)))
	}
	if bound := heightBound(res.Count); res.Height > bound {
		err = multierr.Append(err, infra.WrapErrorStackWithMessage(ErrBenchHeightBound,
			fmt.Sprintf("height %d, bound %d", res.Height, bound)))
	}
	err = multierr.Append(err, tree.Validate[int64](rbtree))
	res.Err = err
	return
}

// Run submits cfg.Jobs jobs and waits for all of them. The returned
// error combines the failed jobs.
func (r *Runner) Run(ctx context.Context, cfg Config) (*Report, error) {
	if r == nil || r.pool == nil || r.pool.IsClosed() {
		return nil, infra.WrapErrorStack(ErrBenchReleased)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	report := &Report{Results: make([]JobResult, cfg.Jobs)}
	if rss, err := observability.ProcessRSS(); err == nil {
		report.RSSBefore = rss
	}
	start := time.Now()
	wg := sync.WaitGroup{}
	for job := 0; job < cfg.Jobs; job++ {
		wg.Add(1)
		if err := r.pool.Submit(func() {
			defer wg.Done()
			report.Results[job] = runJob(ctx, job, cfg)
		}); err != nil {
			wg.Done()
			report.Results[job] = JobResult{Job: job, Err: infra.WrapErrorStack(err)}
		}
	}
	wg.Wait()
	report.Elapsed = time.Since(start)
	if rss, err := observability.ProcessRSS(); err == nil {
		report.RSSAfter = rss
	}

	var err error
	for _, res := range report.Failed() {
		err = multierr.Append(err, infra.WrapErrorStackWithMessage(res.Err, fmt.Sprintf("[bench] job %d", res.Job)))
	}
	if r.logger != nil {
		if err != nil {
			r.logger.ErrorStack(err, "bench failed", zap.Int("failed", len(report.Failed())))
		} else {
			r.logger.InfoContext(ctx, "bench finished",
				zap.Int("jobs", cfg.Jobs),
				zap.Int("size", cfg.Size),
				zap.Int("workers", r.pool.Cap()),
				zap.Int64("count", report.TotalCount()),
				zap.Int("maxHeight", report.MaxHeight()),
				zap.Duration("elapsed", report.Elapsed),
			)
		}
	}
	return report, err
}

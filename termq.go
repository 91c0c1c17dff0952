package termq

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/termq/idset"
	"github.com/hupe1980/termq/model"
	"github.com/hupe1980/termq/query"
	"github.com/hupe1980/termq/resource"
)

// Engine runs searches against a fixed search context.
// It is safe for concurrent use.
type Engine struct {
	qctx      query.Context
	evaluator *query.Evaluator
	resources *resource.Controller
	logger    *Logger
	metrics   MetricsCollector
	defaults  []query.SearchOption
}

// New creates an Engine bound to qctx, typically a *catalog.Site.
func New(qctx query.Context, optFns ...Option) (*Engine, error) {
	if qctx == nil {
		return nil, ErrNilContext
	}
	o := applyOptions(optFns)

	e := &Engine{
		qctx:      qctx,
		resources: o.resources,
		logger:    o.logger,
		metrics:   o.metricsCollector,
		defaults:  o.searchOptions,
	}
	e.evaluator = query.NewEvaluator(o.logger.Logger, query.OnTextRejected(e.textRejected))
	return e, nil
}

func (e *Engine) textRejected(ctx context.Context, ref model.IndexRef, q string, err error) {
	e.logger.LogTextRejected(ctx, ref, q, err)
	e.metrics.RecordTextRejected()
}

// Context returns the search context the engine is bound to.
func (e *Engine) Context() query.Context {
	return e.qctx
}

// Search evaluates t and assembles the result. It waits for a free search
// slot of the resource controller.
func (e *Engine) Search(ctx context.Context, t query.Term, opts ...query.SearchOption) (*query.Result, error) {
	if err := e.resources.AcquireSearch(ctx); err != nil {
		return nil, err
	}
	defer e.resources.ReleaseSearch()

	return e.search(ctx, t, opts)
}

func (e *Engine) search(ctx context.Context, t query.Term, opts []query.SearchOption) (*query.Result, error) {
	all := make([]query.SearchOption, 0, len(e.defaults)+len(opts)+1)
	all = append(all, query.WithEvaluator(e.evaluator))
	all = append(all, e.defaults...)
	all = append(all, opts...)

	start := time.Now()
	res, err := query.Search(ctx, t, e.qctx, all...)
	d := time.Since(start)

	total := 0
	if res != nil {
		total = res.Total()
	}
	e.metrics.RecordSearch(total, d, err)
	e.logger.LogSearch(ctx, t, total, d, err)

	return res, translateError(err)
}

// Evaluate returns the id set of t without sorting or materializing objects.
func (e *Engine) Evaluate(ctx context.Context, t query.Term) (*idset.Set, error) {
	start := time.Now()
	ids, err := e.evaluator.Evaluate(ctx, t, e.qctx)
	d := time.Since(start)

	e.metrics.RecordEvaluate(ids.Len(), d, err)
	e.logger.LogEvaluate(ctx, t, ids.Len(), d, err)

	return ids, translateError(err)
}

// Request is one search of a SearchAll batch.
type Request struct {
	Term    query.Term
	Options []query.SearchOption
}

// SearchAll runs independent searches concurrently, bounded by the resource
// controller. Results are returned in request order. The first failure
// cancels searches that have not started yet and is returned.
func (e *Engine) SearchAll(ctx context.Context, reqs []Request) ([]*query.Result, error) {
	start := time.Now()
	results := make([]*query.Result, len(reqs))
	errs := make([]error, len(reqs))

	g, gctx := errgroup.WithContext(ctx)
	if limit := e.resources.Config().MaxConcurrentSearches; limit > 0 {
		g.SetLimit(int(limit))
	}

	for i, r := range reqs {
		g.Go(func() error {
			if err := e.resources.AcquireSearch(gctx); err != nil {
				errs[i] = err
				return err
			}
			defer e.resources.ReleaseSearch()

			res, err := e.search(gctx, r.Term, r.Options)
			results[i], errs[i] = res, err
			return err
		})
	}
	err := g.Wait()

	failed := 0
	for _, err := range errs {
		if err != nil {
			failed++
		}
	}
	d := time.Since(start)
	e.metrics.RecordBatchSearch(len(reqs), failed, d)
	e.logger.LogBatchSearch(ctx, len(reqs), failed, d)

	if err != nil {
		return nil, err
	}
	return results, nil
}

package routing

import (
	"context"
	"runtime"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Query is one start/goal pair of a batch.
type Query struct {
	Start uint32
	Goal  uint32
}

// BatchResult is the outcome of one batch query. Exactly one of Result and
// Err is set.
type BatchResult struct {
	Query  Query
	Result *RouteResult
	Err    error
}

// RouteBatch runs independent queries on up to workers goroutines and returns
// the results in query order. workers <= 0 uses GOMAXPROCS. A cancelled ctx
// marks the remaining queries with the context error.
func (e *Engine) RouteBatch(ctx context.Context, queries []Query, workers int) []BatchResult {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	t0 := time.Now()
	results := make([]BatchResult, len(queries))

	var g errgroup.Group
	g.SetLimit(workers)
	for i, q := range queries {
		g.Go(func() error {
			res, err := e.Route(ctx, q.Start, q.Goal)
			results[i] = BatchResult{Query: q, Result: res, Err: err}
			return nil // per-query errors are reported in results
		})
	}
	_ = g.Wait()

	e.log.Info("batch finished",
		zap.Int("queries", len(queries)),
		zap.Int("workers", workers),
		zap.Duration("elapsed", time.Since(t0)),
	)
	return results
}

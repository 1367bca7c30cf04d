package kdtree

import (
	"context"

	"github.com/ar90n/kdtree/common"
	"github.com/ar90n/kdtree/pipeline"
	"github.com/sourcegraph/conc/pool"
)

const streamBufferSize = 64

// NearestBatch answers every query concurrently on up to maxGoroutines
// workers (one per CPU when zero). The tree must not be mutated until it
// returns.
func (t *Tree[P, K]) NearestBatch(ctx context.Context, queries []P, maxResults int, maxDistance float64, maxGoroutines uint) ([][]Candidate[P], error) {
	if maxResults < 1 {
		return nil, ErrInvalidMaxResults
	}
	if maxDistance < 0 {
		return nil, ErrInvalidMaxDistance
	}

	results := make([][]Candidate[P], len(queries))
	p := pool.New().
		WithMaxGoroutines(common.GetProcNum(maxGoroutines, len(queries))).
		WithContext(ctx).
		WithCancelOnError()
	for i := range queries {
		i := i
		p.Go(func(ctx context.Context) error {
			if err := ctx.Err(); err != nil {
				return err
			}

			candidates, err := t.Nearest(queries[i], maxResults, maxDistance)
			if err != nil {
				return err
			}
			results[i] = candidates
			return nil
		})
	}

	if err := p.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

type Result[P any] struct {
	Query      P
	Candidates []Candidate[P]
	Err        error
}

// NearestStream answers queries in arrival order until the input is closed
// or ctx is done.
func (t *Tree[P, K]) NearestStream(ctx context.Context, queries <-chan P, maxResults int, maxDistance float64) <-chan Result[P] {
	outputStream := make(chan Result[P], streamBufferSize)
	go func() {
		defer close(outputStream)

		for query := range pipeline.OrDone(ctx, queries) {
			candidates, err := t.Nearest(query, maxResults, maxDistance)
			select {
			case <-ctx.Done():
				return
			case outputStream <- Result[P]{
				Query:      query,
				Candidates: candidates,
				Err:        err,
			}:
			}
		}
	}()

	return outputStream
}

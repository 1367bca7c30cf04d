package kdtree

import (
	"context"
	"math"

	"github.com/ar90n/kdtree/collection"
	"github.com/ar90n/kdtree/common"
	"github.com/ar90n/kdtree/number"
	"github.com/sourcegraph/conc/pool"
)

type chunk struct {
	Begin int
	End   int
}

// Scan answers the same query as Tree.Nearest by measuring every point. The
// points are split into one chunk per worker.
func Scan[P any](ctx context.Context, points []P, metric Metric[P], q P, maxResults int, maxDistance float64, maxGoroutines uint) ([]Candidate[P], error) {
	if metric == nil {
		return nil, ErrNilMetric
	}
	if maxResults < 1 {
		return nil, ErrInvalidMaxResults
	}
	if maxDistance < 0 || math.IsNaN(maxDistance) {
		return nil, ErrInvalidMaxDistance
	}

	capacity := number.Min(maxResults, len(points))
	if capacity == 0 {
		return []Candidate[P]{}, nil
	}

	chunks := getChunks(len(points), common.GetProcNum(maxGoroutines, len(points)))
	partials := make([][]collection.WithPriority[int], len(chunks))
	p := pool.New().WithContext(ctx).WithCancelOnError()
	for i, c := range chunks {
		i, c := i, c
		p.Go(func(ctx context.Context) error {
			best := collection.NewBoundedQueue[int](capacity)
			for j := c.Begin; j < c.End; j++ {
				if j%1024 == 0 {
					if err := ctx.Err(); err != nil {
						return err
					}
				}

				distance := metric(q, points[j])
				if 0 < maxDistance && maxDistance <= distance {
					continue
				}
				best.Push(j, distance)
			}
			partials[i] = best.Drain()
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}

	best := collection.NewBoundedQueue[int](capacity)
	for _, partial := range partials {
		for _, item := range partial {
			best.Push(item.Item, item.Priority)
		}
	}

	items := best.Drain()
	results := make([]Candidate[P], len(items))
	for i, item := range items {
		results[i] = Candidate[P]{
			Item:     points[item.Item],
			Distance: item.Priority,
		}
	}
	return results, nil
}

func getChunks(n, procs int) []chunk {
	chunks := make([]chunk, 0, procs)
	bs := n / procs
	rem := n % procs
	bi := 0
	for i := 0; i < procs; i++ {
		ei := bi + bs
		if i < rem {
			ei += 1
		}

		chunks = append(chunks, chunk{Begin: bi, End: ei})
		bi = ei
	}

	return chunks
}

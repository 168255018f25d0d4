package sweep

import (
	"context"
	"sync"
)

// RunParallel executes the grid on a pool of workers. Points are
// independent, so any interleaving is valid; every worker obtains its
// own engine and sampler through RunPoint, and results keep grid order
// regardless of completion order.
func (r *Runner) RunParallel(ctx context.Context, grid Grid, workers int, obs Observer) ([]*Result, error) {
	if err := grid.Validate(); err != nil {
		return nil, err
	}
	if workers < 1 {
		workers = 1
	}
	points := grid.Points()
	results := make([]*Result, len(points))

	type job struct {
		idx   int
		point Point
	}
	jobs := make(chan job)

	var mu sync.Mutex
	done := 0

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				res := r.RunPoint(ctx, j.point)
				results[j.idx] = res
				if obs != nil {
					mu.Lock()
					obs(done, len(points), res)
					done++
					mu.Unlock()
				}
			}
		}()
	}

	for i, p := range points {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return compact(results), ctx.Err()
		case jobs <- job{idx: i, point: p}:
		}
	}
	close(jobs)
	wg.Wait()
	return results, nil
}

// compact drops the nil slots left by a canceled sweep.
func compact(results []*Result) []*Result {
	out := make([]*Result, 0, len(results))
	for _, r := range results {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}

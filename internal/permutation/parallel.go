package permutation

import (
	"context"
	"math/rand"
	"sync"

	"golang.org/x/sync/errgroup"
)

// chunkFunc processes shuffles [start, end) drawing from rng. It calls
// report with the number of shuffles finished since its last call.
type chunkFunc func(ctx context.Context, rng *rand.Rand, start, end int, report func(int)) error

// runChunks splits [0, opts.Shuffles) into one contiguous chunk per worker.
// A single worker runs inline on the caller's stream.
func runChunks(ctx context.Context, opts Options, fn chunkFunc) error {
	total := opts.Shuffles
	report := progressReporter(opts.Progress, total)

	workers := opts.workers()
	if workers == 1 {
		return fn(ctx, opts.source(), 0, total, report)
	}

	chunkSize := (total + workers - 1) / workers

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for w := 0; w < workers; w++ {
		start := w * chunkSize
		end := min(start+chunkSize, total)
		if start >= end {
			break
		}
		rng := rand.New(rand.NewSource(opts.Seed + int64(w)))
		g.Go(func() error {
			return fn(gctx, rng, start, end, report)
		})
	}
	return g.Wait()
}

func progressReporter(progress func(done, total int), total int) func(int) {
	if progress == nil {
		return func(int) {}
	}
	var (
		mu   sync.Mutex
		done int
	)
	return func(n int) {
		mu.Lock()
		defer mu.Unlock()
		done += n
		progress(done, total)
	}
}

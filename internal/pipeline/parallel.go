package pipeline

import (
	"context"
	"image"
	"runtime"
	"sort"
	"sync"
)

// ParallelConfig holds configuration for page-level parallel processing.
type ParallelConfig struct {
	MaxWorkers       int              // Number of parallel workers (0 = runtime.NumCPU())
	ProgressCallback ProgressCallback // Optional progress reporting
}

// DefaultParallelConfig returns sensible defaults for parallel processing.
func DefaultParallelConfig() ParallelConfig {
	return ParallelConfig{
		MaxWorkers: runtime.NumCPU(),
	}
}

// pageJob is a single page to process.
type pageJob struct {
	pageNumber int
	image      image.Image
}

// pageResult carries one processed page off a worker.
type pageResult struct {
	page Page
	err  error
}

// PageInput pairs a page image with its 1-based page number.
type PageInput struct {
	PageNumber int
	Image      image.Image
}

// ProcessPages runs the pipeline over multiple pages with a worker pool.
// Results come back sorted by page number. Individual page failures are
// recorded on the page; only context cancellation returns an error.
func (o *Orchestrator) ProcessPages(ctx context.Context, pages []PageInput, cfg ParallelConfig) ([]Page, error) {
	if len(pages) == 0 {
		return nil, nil
	}
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = runtime.NumCPU()
	}
	if cfg.MaxWorkers > len(pages) {
		cfg.MaxWorkers = len(pages)
	}

	if cfg.ProgressCallback != nil {
		cfg.ProgressCallback.OnStart(len(pages))
		defer cfg.ProgressCallback.OnComplete()
	}

	jobs := make(chan pageJob, len(pages))
	results := make(chan pageResult, len(pages))

	var wg sync.WaitGroup
	for w := 0; w < cfg.MaxWorkers; w++ {
		wg.Add(1)
		go o.pageWorker(ctx, jobs, results, &wg)
	}

	go func() {
		defer close(jobs)
		for _, p := range pages {
			select {
			case jobs <- pageJob{pageNumber: p.PageNumber, image: p.Image}:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	out := make([]Page, 0, len(pages))
	done := 0
	for res := range results {
		if res.err != nil {
			continue
		}
		out = append(out, res.page)
		done++
		if cfg.ProgressCallback != nil {
			cfg.ProgressCallback.OnProgress(done, len(pages))
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.Slice(out, func(i, j int) bool { return out[i].PageNumber < out[j].PageNumber })
	return out, nil
}

// pageWorker processes pages from the jobs channel.
func (o *Orchestrator) pageWorker(ctx context.Context, jobs <-chan pageJob, results chan<- pageResult, wg *sync.WaitGroup) {
	defer wg.Done()

	for {
		select {
		case job, ok := <-jobs:
			if !ok {
				return
			}
			page, err := o.ProcessPage(ctx, job.image, job.pageNumber)
			select {
			case results <- pageResult{page: page, err: err}:
			case <-ctx.Done():
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

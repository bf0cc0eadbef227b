// Package worker renders rasters in parallel to warm the raster cache.
package worker

import (
	"context"
	"sync"
	"time"

	"github.com/jsvensson/oklchstudio/internal/raster"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("oklch.worker")

// Renderer produces the encoded raster for a key. *raster.Memo and
// StoreRenderer satisfy it.
type Renderer interface {
	PNG(ctx context.Context, key raster.Key) ([]byte, error)
}

// Task is a single raster to render.
type Task struct {
	Key raster.Key
}

// Result is the outcome of a Task.
type Result struct {
	Task    Task
	Bytes   int
	Err     error
	Elapsed time.Duration
}

// ProgressFunc is called after each task completes.
type ProgressFunc func(completed, total, failed int)

// Config configures the worker pool.
type Config struct {
	Workers    int
	Renderer   Renderer
	OnProgress ProgressFunc
}

// Pool renders tasks on a fixed number of goroutines.
type Pool struct {
	workers    int
	renderer   Renderer
	onProgress ProgressFunc
}

// New creates a pool. Fewer than one worker means one.
func New(cfg Config) *Pool {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}

	return &Pool{
		workers:    workers,
		renderer:   cfg.Renderer,
		onProgress: cfg.OnProgress,
	}
}

// PlaneTasks returns one plane task per hue step around the circle, starting
// at 0. A step of zero or less yields a single task at hue 0. Hues are
// multiples of step so rounding error does not accumulate over the circle.
func PlaneTasks(step float64, width, height int) []Task {
	if step <= 0 || step >= 360 {
		return []Task{{Key: raster.PlaneKey(0, width, height)}}
	}

	var tasks []Task
	seen := make(map[raster.Key]bool)
	for i := 0; ; i++ {
		hue := float64(i) * step
		if hue >= 360 {
			break
		}
		key := raster.PlaneKey(hue, width, height)
		if seen[key] {
			continue
		}
		seen[key] = true
		tasks = append(tasks, Task{Key: key})
	}
	return tasks
}

// Run renders all tasks and blocks until they finish or ctx is cancelled.
// Tasks not started before cancellation report ctx.Err().
func (p *Pool) Run(ctx context.Context, tasks []Task) []Result {
	if len(tasks) == 0 {
		return nil
	}

	taskCh := make(chan Task, len(tasks))
	resultCh := make(chan Result, len(tasks))

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.worker(ctx, taskCh, resultCh)
		}()
	}

	go func() {
		defer close(taskCh)
		for _, task := range tasks {
			taskCh <- task
		}
	}()

	results := make([]Result, 0, len(tasks))
	done := make(chan struct{})

	go func() {
		var completed, failed int
		for result := range resultCh {
			results = append(results, result)

			completed++
			if result.Err != nil {
				failed++
				log.Warningf("render %s: %s", result.Task.Key, result.Err)
			}
			if p.onProgress != nil {
				p.onProgress(completed, len(tasks), failed)
			}
		}
		close(done)
	}()

	wg.Wait()
	close(resultCh)
	<-done

	return results
}

func (p *Pool) worker(ctx context.Context, tasks <-chan Task, results chan<- Result) {
	for task := range tasks {
		if err := ctx.Err(); err != nil {
			results <- Result{Task: task, Err: err}
			continue
		}

		start := time.Now()
		data, err := p.renderer.PNG(ctx, task.Key)
		results <- Result{
			Task:    task,
			Bytes:   len(data),
			Err:     err,
			Elapsed: time.Since(start),
		}
	}
}

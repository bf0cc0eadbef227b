package worker

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jsvensson/oklchstudio/internal/raster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRenderer struct {
	delay time.Duration
	fail  map[raster.Key]bool
	calls atomic.Int32
}

func (m *mockRenderer) PNG(ctx context.Context, key raster.Key) ([]byte, error) {
	m.calls.Add(1)

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(m.delay):
	}

	if m.fail[key] {
		return nil, errors.New("simulated failure")
	}
	return []byte(key.String()), nil
}

func TestPool_BasicExecution(t *testing.T) {
	r := &mockRenderer{delay: 5 * time.Millisecond}
	pool := New(Config{Workers: 2, Renderer: r})

	tasks := PlaneTasks(120, 4, 4)
	results := pool.Run(context.Background(), tasks)

	require.Len(t, results, len(tasks))
	for _, res := range results {
		assert.NoError(t, res.Err)
		assert.Equal(t, len(res.Task.Key.String()), res.Bytes)
	}
	assert.Equal(t, int32(len(tasks)), r.calls.Load())
}

func TestPool_ErrorHandling(t *testing.T) {
	bad := raster.PlaneKey(120, 4, 4)
	r := &mockRenderer{fail: map[raster.Key]bool{bad: true}}
	pool := New(Config{Workers: 2, Renderer: r})

	results := pool.Run(context.Background(), PlaneTasks(120, 4, 4))
	require.Len(t, results, 3)

	var failed int
	for _, res := range results {
		if res.Err != nil {
			failed++
			assert.Equal(t, bad, res.Task.Key)
		}
	}
	assert.Equal(t, 1, failed)
}

func TestPool_Cancelled(t *testing.T) {
	r := &mockRenderer{}
	pool := New(Config{Workers: 2, Renderer: r})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := pool.Run(ctx, PlaneTasks(30, 4, 4))
	require.Len(t, results, 12)
	for _, res := range results {
		assert.ErrorIs(t, res.Err, context.Canceled)
	}
	assert.Zero(t, r.calls.Load())
}

func TestPool_ProgressCallback(t *testing.T) {
	r := &mockRenderer{}

	var (
		mu            sync.Mutex
		calls         int
		lastCompleted int
		lastTotal     int
	)
	pool := New(Config{
		Workers:  3,
		Renderer: r,
		OnProgress: func(completed, total, failed int) {
			mu.Lock()
			defer mu.Unlock()
			calls++
			lastCompleted = completed
			lastTotal = total
		},
	})

	tasks := PlaneTasks(90, 4, 4)
	pool.Run(context.Background(), tasks)

	assert.Equal(t, len(tasks), calls)
	assert.Equal(t, len(tasks), lastCompleted)
	assert.Equal(t, len(tasks), lastTotal)
}

func TestPool_EmptyTasks(t *testing.T) {
	r := &mockRenderer{}
	pool := New(Config{Renderer: r})

	assert.Empty(t, pool.Run(context.Background(), nil))
	assert.Zero(t, r.calls.Load())
}

func TestPool_WarmsMemo(t *testing.T) {
	memo := raster.NewMemo(16, nil)
	pool := New(Config{Workers: 4, Renderer: memo})

	tasks := PlaneTasks(45, 8, 8)
	results := pool.Run(context.Background(), tasks)

	for _, res := range results {
		require.NoError(t, res.Err)
		assert.Positive(t, res.Bytes)
	}
	assert.Equal(t, len(tasks), memo.Len())
}

func TestPlaneTasks(t *testing.T) {
	tests := []struct {
		step float64
		want []float64
	}{
		{90, []float64{0, 90, 180, 270}},
		{100, []float64{0, 100, 200, 300}},
		{0, []float64{0}},
		{-5, []float64{0}},
		{360, []float64{0}},
	}
	for _, tt := range tests {
		tasks := PlaneTasks(tt.step, 16, 8)
		hues := make([]float64, len(tasks))
		for i, task := range tasks {
			assert.Equal(t, raster.KindPlane, task.Key.Kind)
			assert.Equal(t, 16, task.Key.Width)
			assert.Equal(t, 8, task.Key.Height)
			hues[i] = task.Key.Hue
		}
		assert.Equal(t, tt.want, hues, "step %v", tt.step)
	}
}

func TestPlaneTasks_FineSteps(t *testing.T) {
	tests := []struct {
		step     float64
		wantLen  int
		wantLast float64
	}{
		{0.1, 3600, 359.9},
		{7.5, 48, 352.5},
		{0.7, 515, 359.8},
	}
	for _, tt := range tests {
		tasks := PlaneTasks(tt.step, 4, 4)
		require.Len(t, tasks, tt.wantLen, "step %v", tt.step)
		assert.InDelta(t, tt.wantLast, tasks[len(tasks)-1].Key.Hue, 1e-9, "step %v", tt.step)
	}
}

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(&buf, 4)

	p.Callback()(2, 4, 1)
	assert.Contains(t, buf.String(), "2/4 rasters (1 failed)")

	p.Update(4, 4, 1)
	p.Done()
	assert.True(t, strings.HasSuffix(buf.String(), "\n"))
	assert.Contains(t, p.Summary(), "Rendered 3/4 rasters (1 failed)")
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "1.5s", formatDuration(1500*time.Millisecond))
	assert.Equal(t, "2m5s", formatDuration(125*time.Second))
	assert.Equal(t, "1h1m", formatDuration(61*time.Minute))
}

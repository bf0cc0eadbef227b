package worker

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// Progress renders a single-line progress bar for a warm run.
type Progress struct {
	output    io.Writer
	startTime time.Time
	total     int
	completed int
	failed    int
	mu        sync.Mutex
}

// NewProgress creates a progress bar writing to w.
func NewProgress(w io.Writer, total int) *Progress {
	return &Progress{
		output:    w,
		startTime: time.Now(),
		total:     total,
	}
}

// Callback returns a ProgressFunc suitable for Config.OnProgress.
func (p *Progress) Callback() ProgressFunc {
	return p.Update
}

// Update records progress and redraws the bar.
func (p *Progress) Update(completed, total, failed int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.completed = completed
	p.total = total
	p.failed = failed
	fmt.Fprint(p.output, "\r"+p.line())
}

// Done finishes the bar with a newline.
func (p *Progress) Done() {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.output, "\r"+p.line())
}

// Summary describes the finished run.
func (p *Progress) Summary() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	elapsed := time.Since(p.startTime)
	return fmt.Sprintf("Rendered %d/%d rasters (%d failed) in %s",
		p.completed-p.failed, p.total, p.failed, formatDuration(elapsed))
}

func (p *Progress) line() string {
	const barWidth = 30

	filled := 0
	if p.total > 0 {
		filled = p.completed * barWidth / p.total
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)

	line := fmt.Sprintf("[%s] %d/%d rasters", bar, p.completed, p.total)
	if p.failed > 0 {
		line += fmt.Sprintf(" (%d failed)", p.failed)
	}
	return line
}

func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}

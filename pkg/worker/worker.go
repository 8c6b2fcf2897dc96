// Package worker implements periodic background tasks for network functions.
package worker

import (
	"context"
	"sync"
	"time"

	"github.com/drcoopertbbt/BF3-5G-Demo/internal/logger"
)

// defaultInterval is used when a task is created without an explicit interval.
const defaultInterval = 60 * time.Second

// Task is one unit of periodic work. The context is cancelled on shutdown,
// so long-running tasks should honor it.
type Task func(ctx context.Context)

// Config holds configuration for a periodic task.
type Config struct {
	// Name identifies the task in logs (e.g., "heartbeat", "qos-monitor").
	Name string

	// Interval is the time between runs.
	// Default: 60 seconds.
	Interval time.Duration

	// Immediate runs the task once at Start before the first tick.
	// Used by tasks that announce presence, like registry heartbeats.
	Immediate bool
}

// Periodic runs a task at a fixed interval until stopped.
//
// Lifecycle:
//   - Created via NewPeriodic with a name, interval, and task
//   - Started via Start() which spawns the background goroutine
//   - Stopped via Stop() which signals the goroutine and waits with timeout
//
// Start and Stop are each safe to call more than once; extra calls return
// immediately.
type Periodic struct {
	name      string
	interval  time.Duration
	immediate bool
	task      Task

	mu        sync.Mutex
	started   bool
	stopping  bool
	stopCh    chan struct{}
	stoppedCh chan struct{}
}

// NewPeriodic creates a periodic task runner. It does not run until Start
// is called.
func NewPeriodic(cfg Config, task Task) *Periodic {
	if cfg.Interval <= 0 {
		cfg.Interval = defaultInterval
	}

	return &Periodic{
		name:      cfg.Name,
		interval:  cfg.Interval,
		immediate: cfg.Immediate,
		task:      task,
		stopCh:    make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
}

// Start begins running the task on its interval.
//
// The provided context is passed to every run and cancelling it stops the
// loop, equivalent to calling Stop.
func (p *Periodic) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	logger.Info("Starting background task", "task", p.name, "interval", p.interval.String())

	go p.run(ctx)
}

// Stop signals the task loop to exit and waits for it to finish.
// If the current run does not complete within timeout, Stop returns anyway.
func (p *Periodic) Stop(timeout time.Duration) {
	p.mu.Lock()
	if !p.started || p.stopping {
		p.mu.Unlock()
		return
	}
	p.stopping = true
	p.mu.Unlock()

	close(p.stopCh)

	select {
	case <-p.stoppedCh:
		logger.Debug("Background task stopped", "task", p.name)
	case <-time.After(timeout):
		logger.Warn("Background task stop timed out", "task", p.name)
	}
}

// run is the main task loop.
func (p *Periodic) run(ctx context.Context) {
	defer close(p.stoppedCh)

	if p.immediate {
		p.task(ctx)
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.task(ctx)
		}
	}
}

// Group manages a set of periodic tasks with a shared lifecycle.
type Group struct {
	tasks []*Periodic
}

// NewGroup creates an empty task group.
func NewGroup() *Group {
	return &Group{}
}

// Add registers a task with the group. Must be called before Start.
func (g *Group) Add(p *Periodic) {
	g.tasks = append(g.tasks, p)
}

// Start starts every task in the group.
func (g *Group) Start(ctx context.Context) {
	for _, p := range g.tasks {
		p.Start(ctx)
	}
}

// Stop stops every task, giving each the full timeout.
func (g *Group) Stop(timeout time.Duration) {
	for _, p := range g.tasks {
		p.Stop(timeout)
	}
}

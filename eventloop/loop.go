/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

// Package eventloop defines the injected event loop contract (§5) and a
// default single-goroutine implementation: the core never blocks or
// spawns its own worker pool, it posts closures to this loop and the loop
// runs them in FIFO order on one goroutine. When the queue is full, Post
// runs the task synchronously on the calling goroutine instead (see Post),
// so under overflow a task can run off the loop goroutine and out of FIFO
// order.
package eventloop

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/nabbar/taps-core/internal/atomicx"
	"github.com/nabbar/taps-core/tapserr"
)

// Task is a unit of work posted to the loop.
type Task func()

// Loop is the contract every package in this module depends on. It is
// satisfied by Default below, or by a host application's own reactor.
type Loop interface {
	// Post enqueues fn to run on the loop goroutine at the next iteration.
	// Safe to call from any goroutine.
	Post(fn Task)
	// PostDelayed enqueues fn to run no sooner than d from now.
	PostDelayed(d time.Duration, fn Task)
	// Start begins processing posted tasks. Mirrors the teacher's
	// runner/startStop lifecycle shape (Start(ctx) error / Stop(ctx)
	// error / IsRunning() bool).
	Start(ctx context.Context) error
	// Stop drains in-flight tasks and halts processing.
	Stop(ctx context.Context) error
	// IsRunning reports whether Start has been called without a matching
	// Stop.
	IsRunning() bool
}

// Default is a minimal single-goroutine dispatcher satisfying Loop,
// sufficient for tests and for a standalone binary embedding this module
// without its own reactor.
type Default struct {
	mu      sync.Mutex
	running bool
	tasks   chan Task
	quit    chan struct{}
	wg      sync.WaitGroup
	started time.Time

	processed atomicx.Counter
}

// New returns a Default loop with the given task queue depth.
func New(queueDepth int) *Default {
	if queueDepth <= 0 {
		queueDepth = 256
	}
	return &Default{
		tasks: make(chan Task, queueDepth),
	}
}

// Start implements Loop.
func (l *Default) Start(_ context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.running {
		return tapserr.New(tapserr.InvalidArgument, "event loop already running")
	}
	l.running = true
	l.quit = make(chan struct{})
	l.started = time.Now()

	l.wg.Add(1)
	go l.run(l.quit)
	return nil
}

// Stop implements Loop.
func (l *Default) Stop(_ context.Context) error {
	l.mu.Lock()
	if !l.running {
		l.mu.Unlock()
		return nil
	}
	l.running = false
	quit := l.quit
	l.mu.Unlock()

	close(quit)
	l.wg.Wait()
	return nil
}

// IsRunning implements Loop.
func (l *Default) IsRunning() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.running
}

// Uptime returns how long the loop has been running, or zero if stopped.
func (l *Default) Uptime() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.running {
		return 0
	}
	return time.Since(l.started)
}

// Post implements Loop.
func (l *Default) Post(fn Task) {
	if fn == nil {
		return
	}
	select {
	case l.tasks <- fn:
	default:
		// Queue full: run synchronously from the caller's goroutine rather
		// than drop the task, matching "no API call blocks" loosely —
		// this is the overflow valve, not the steady-state path.
		fn()
	}
}

// PostDelayed implements Loop.
func (l *Default) PostDelayed(d time.Duration, fn Task) {
	if d <= 0 {
		l.Post(fn)
		return
	}
	time.AfterFunc(d, func() { l.Post(fn) })
}

func (l *Default) run(quit chan struct{}) {
	defer l.wg.Done()
	for {
		select {
		case task := <-l.tasks:
			task()
			l.processed.Add(1)
		case <-quit:
			l.drain()
			return
		}
	}
}

func (l *Default) drain() {
	for {
		select {
		case task := <-l.tasks:
			task()
			l.processed.Add(1)
		default:
			return
		}
	}
}

var (
	descRunning = prometheus.NewDesc(
		"taps_eventloop_running",
		"Whether the event loop's dispatch goroutine is currently running (1) or stopped (0).",
		nil, nil,
	)
	descQueueDepth = prometheus.NewDesc(
		"taps_eventloop_queue_depth",
		"Number of tasks currently queued for dispatch on the event loop.",
		nil, nil,
	)
	descTasksTotal = prometheus.NewDesc(
		"taps_eventloop_tasks_processed_total",
		"Total number of tasks the event loop has run to completion.",
		nil, nil,
	)
	descUptime = prometheus.NewDesc(
		"taps_eventloop_uptime_seconds",
		"Seconds since the event loop was last started, or 0 if stopped.",
		nil, nil,
	)
)

// Describe implements prometheus.Collector, so a Default loop can be
// registered directly against a *prometheus.Registry alongside a host
// application's own collectors.
func (l *Default) Describe(ch chan<- *prometheus.Desc) {
	ch <- descRunning
	ch <- descQueueDepth
	ch <- descTasksTotal
	ch <- descUptime
}

// Collect implements prometheus.Collector.
func (l *Default) Collect(ch chan<- prometheus.Metric) {
	running := 0.0
	if l.IsRunning() {
		running = 1.0
	}
	ch <- prometheus.MustNewConstMetric(descRunning, prometheus.GaugeValue, running)
	ch <- prometheus.MustNewConstMetric(descQueueDepth, prometheus.GaugeValue, float64(len(l.tasks)))
	ch <- prometheus.MustNewConstMetric(descTasksTotal, prometheus.CounterValue, float64(l.processed.Load()))
	ch <- prometheus.MustNewConstMetric(descUptime, prometheus.GaugeValue, l.Uptime().Seconds())
}

// Package worker runs fire-and-forget side effects on a bounded queue drained
// by a fixed set of goroutines. Jobs are retried with exponential backoff.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

var (
	ErrQueueFull      = errors.New("worker queue is full")
	ErrPoolNotRunning = errors.New("worker pool is not running")
)

// Job is one unit of asynchronous work. Run is attempted up to MaxAttempts
// times; a value below 1 means a single attempt.
type Job struct {
	Name        string
	MaxAttempts int
	Run         func(ctx context.Context) error
}

// Submitter accepts jobs for asynchronous execution.
type Submitter interface {
	Submit(job Job) error
}

type Config struct {
	Workers   int
	QueueSize int
	// RetryBase is the delay before the second attempt; it doubles per attempt.
	RetryBase time.Duration
	// MaxRetryDelay caps the backoff (default: 30s)
	MaxRetryDelay time.Duration
}

func DefaultConfig() Config {
	return Config{
		Workers:       4,
		QueueSize:     256,
		RetryBase:     time.Second,
		MaxRetryDelay: 30 * time.Second,
	}
}

type Pool struct {
	config Config
	queue  chan Job

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	group   *errgroup.Group
}

func NewPool(config Config) *Pool {
	if config.Workers < 1 {
		config.Workers = 1
	}
	if config.QueueSize < 1 {
		config.QueueSize = 1
	}
	if config.MaxRetryDelay <= 0 {
		config.MaxRetryDelay = 30 * time.Second
	}
	return &Pool{config: config}
}

// Start launches the workers. Returns an error if already running.
func (p *Pool) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return fmt.Errorf("worker pool is already running")
	}

	p.queue = make(chan Job, p.config.QueueSize)
	p.stopCh = make(chan struct{})
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < p.config.Workers; i++ {
		g.Go(func() error {
			p.drain(gctx)
			return nil
		})
	}
	p.group = g
	p.running = true

	slog.InfoContext(ctx, "Worker pool started",
		"workers", p.config.Workers,
		"queue_size", p.config.QueueSize)
	return nil
}

// Submit enqueues job without blocking.
func (p *Pool) Submit(job Job) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running {
		return ErrPoolNotRunning
	}
	select {
	case p.queue <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

// Stop closes the queue and waits for queued jobs to finish or ctx to expire.
func (p *Pool) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = false
	close(p.queue)
	g := p.group
	stopCh := p.stopCh
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		_ = g.Wait()
		close(done)
	}()

	select {
	case <-done:
		slog.InfoContext(ctx, "Worker pool stopped gracefully")
		return nil
	case <-ctx.Done():
		// abort retry sleeps of jobs still in flight
		close(stopCh)
		slog.WarnContext(ctx, "Worker pool stop timed out")
		return ctx.Err()
	}
}

func (p *Pool) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *Pool) drain(ctx context.Context) {
	for job := range p.queue {
		if err := Execute(ctx, job, p.config.RetryBase, p.config.MaxRetryDelay, p.stopCh); err != nil {
			slog.ErrorContext(ctx, "Job failed",
				"job", job.Name,
				"attempts", attempts(job),
				"error", err)
		}
	}
}

func attempts(job Job) int {
	if job.MaxAttempts < 1 {
		return 1
	}
	return job.MaxAttempts
}

// Execute runs job with retries in the calling goroutine. A nil stop channel
// never fires.
func Execute(ctx context.Context, job Job, base, maxDelay time.Duration, stop <-chan struct{}) error {
	var err error
	limit := attempts(job)
	for attempt := 0; attempt < limit; attempt++ {
		if attempt > 0 {
			delay := Backoff(base, maxDelay, attempt-1)
			slog.WarnContext(ctx, "Retrying job",
				"job", job.Name,
				"attempt", attempt+1,
				"delay", delay,
				"error", err)
			timer := time.NewTimer(delay)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-stop:
				timer.Stop()
				return fmt.Errorf("job %s aborted: %w", job.Name, err)
			}
		}
		if err = job.Run(ctx); err == nil {
			return nil
		}
	}
	return fmt.Errorf("job %s failed after %d attempts: %w", job.Name, limit, err)
}

// Backoff returns base * 2^attempt capped at maxDelay.
func Backoff(base, maxDelay time.Duration, attempt int) time.Duration {
	if base <= 0 {
		return 0
	}
	d := base
	for i := 0; i < attempt; i++ {
		d *= 2
		if d >= maxDelay {
			return maxDelay
		}
	}
	if d > maxDelay {
		return maxDelay
	}
	return d
}

// Inline runs jobs synchronously in Submit. Used by one-shot tools and tests.
type Inline struct {
	RetryBase time.Duration
}

func (i Inline) Submit(job Job) error {
	if err := Execute(context.Background(), job, i.RetryBase, 30*time.Second, nil); err != nil {
		slog.Error("Job failed", "job", job.Name, "error", err)
	}
	return nil
}

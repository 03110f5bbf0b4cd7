package core

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"
)

// Runner is the subset of Executor the Scheduler depends on; tests supply
// a mock implementation to drive the end-to-end scenarios in spec.md §8.
type Runner interface {
	Run(ctx context.Context, args []string, deadline time.Duration) (ExecutionResult, error)
}

// Scheduler owns the bounded priority queue, the active-count limiter,
// queue-wait deadline enforcement, and orchestration of every request's
// lifecycle from submission through resolution.
type Scheduler struct {
	mu       sync.Mutex
	cfg      Config
	runner   Runner
	metrics  *Aggregator
	active   int
	queue    *priorityQueue
	nowFn    func() time.Time
}

// NewScheduler constructs a Scheduler bound to runner for child execution.
func NewScheduler(cfg Config, runner Runner) *Scheduler {
	return &Scheduler{
		cfg:     cfg,
		runner:  runner,
		metrics: NewAggregator(),
		queue:   newPriorityQueue(),
		nowFn:   time.Now,
	}
}

// Submit admits, enqueues, or rejects req per the admission policy, and
// returns a channel that receives exactly one Response once the item
// reaches a terminal state.
func (s *Scheduler) Submit(ctx context.Context, req Request) <-chan Response {
	s.mu.Lock()

	s.metrics.IncTotal()
	s.drainExpiredLocked()

	if s.active < s.cfg.MaxConcurrent {
		item := s.newItem(req)
		s.active++
		s.mu.Unlock()
		go s.dispatchItem(item)
		return item.resolveCh
	}

	if s.queue.Len() < s.cfg.MaxQueueDepth {
		item := s.newItem(req)
		s.queue.Insert(item)
		s.mu.Unlock()
		return item.resolveCh
	}

	s.metrics.RecordQueueRejected()
	ch := make(chan Response, 1)
	ch <- Response{
		Kind:  KindQueueFull,
		Error: fmt.Sprintf("Queue full (%d/%d)", s.queue.Len(), s.cfg.MaxQueueDepth),
	}
	s.mu.Unlock()
	return ch
}

func (s *Scheduler) newItem(req Request) *QueueItem {
	return &QueueItem{
		ReqID:       newReqID(),
		Request:     req,
		PriorityVal: req.Priority.rank(),
		EnqueuedAt:  s.nowFn(),
		resolveCh:   make(chan Response, 1),
	}
}

// resolve delivers response on item's channel exactly once. Caller must
// hold s.mu.
func (s *Scheduler) resolve(item *QueueItem, resp Response) {
	if item.resolved {
		return
	}
	item.resolved = true
	item.resolveCh <- resp
}

// runDispatchLoop drains expired queue items, then promotes ready items to
// dispatch while slots remain free. Caller must hold s.mu; it is called
// again, under the lock, each time a slot frees.
func (s *Scheduler) runDispatchLoop() {
	s.drainExpiredLocked()

	for s.active < s.cfg.MaxConcurrent && s.queue.Len() > 0 {
		item := s.queue.PopFront()
		if s.nowFn().Sub(item.EnqueuedAt) > queueTimeout(s.cfg) {
			s.timeoutItemLocked(item)
			continue
		}
		s.active++
		go s.dispatchItem(item)
	}
}

func (s *Scheduler) drainExpiredLocked() {
	expired := s.queue.DrainExpired(s.nowFn(), queueTimeout(s.cfg))
	for _, item := range expired {
		s.timeoutItemLocked(item)
	}
}

func (s *Scheduler) timeoutItemLocked(item *QueueItem) {
	s.metrics.RecordTimedOut()
	s.resolve(item, Response{
		Kind:  KindQueueTimeout,
		Error: fmt.Sprintf("Queued for too long (>%dms)", s.cfg.QueueTimeoutMs),
	})
}

func queueTimeout(cfg Config) time.Duration {
	return time.Duration(cfg.QueueTimeoutMs) * time.Millisecond
}

// dispatchItem runs the child process for item and resolves its outcome.
// It runs outside the scheduler mutex while the Executor blocks on child
// I/O, reacquiring the mutex only to record the outcome and advance the
// dispatch loop.
func (s *Scheduler) dispatchItem(item *QueueItem) {
	maxTurns := item.Request.MaxTurns
	if maxTurns <= 0 {
		maxTurns = s.cfg.DefaultMaxTurns
	}
	timeoutMs := item.Request.TimeoutMs
	if timeoutMs <= 0 {
		timeoutMs = s.cfg.DefaultTimeoutMs
	}

	args := BuildArgs(item.Request, maxTurns, s.cfg.PermissionMode)
	start := s.nowFn()
	resp, err := s.runOutcome(args, timeoutMs, maxTurns)
	elapsedMs := s.nowFn().Sub(start).Milliseconds()

	s.mu.Lock()
	if err != nil {
		s.metrics.RecordFailed()
		resp = Response{Kind: KindInternalError, Error: err.Error()}
	} else if resp.Kind == KindSuccess {
		s.metrics.RecordCompleted(elapsedMs, resp.InputTokens, resp.OutputTokens)
	} else if resp.Kind == KindExecTimeout {
		s.metrics.RecordTimedOut()
	} else {
		s.metrics.RecordFailed()
	}
	s.resolve(item, resp)
	s.active--
	s.runDispatchLoop()
	s.mu.Unlock()
}

// runOutcome calls the Executor and maps its ExecutionResult (or parsed
// output) onto the outcome table in spec.md §4.4.
func (s *Scheduler) runOutcome(args []string, timeoutMs int, maxTurns int) (Response, error) {
	result, err := s.runner.Run(context.Background(), args, time.Duration(timeoutMs)*time.Millisecond)
	if err != nil {
		return Response{}, err
	}

	if result.Killed {
		return Response{
			Kind:  KindExecTimeout,
			Error: fmt.Sprintf("Request timed out after %ds", timeoutMs/1000),
		}, nil
	}

	if result.ExitCode != 0 {
		return Response{Kind: KindProcessFailure, Error: processFailureMessage(result)}, nil
	}

	parsed := ParseOutput(result.Stdout)
	if parsed.MaxTurnsExhausted {
		return Response{
			Kind:  KindMaxTurns,
			Error: maxTurnsMessage(maxTurns),
		}, nil
	}

	return Response{
		Kind:         KindSuccess,
		Text:         parsed.Text,
		Model:        parsed.Model,
		InputTokens:  parsed.InputTokens,
		OutputTokens: parsed.OutputTokens,
	}, nil
}

func processFailureMessage(result ExecutionResult) string {
	stderr := result.Stderr
	if len(stderr) > 500 {
		stderr = stderr[:500]
	}
	if stderr != "" {
		return stderr
	}
	return fmt.Sprintf("exit code %d", result.ExitCode)
}

func maxTurnsMessage(maxTurns int) string {
	return fmt.Sprintf("Reached max turns (%d). Increase maxTurns for complex requests.", maxTurns)
}

// SnapshotMetrics returns a consistent point-in-time view across counters
// and gauges.
func (s *Scheduler) SnapshotMetrics() MetricsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.metrics.Snapshot(s.active, s.queue.Len())
}

// Active returns the current count of running child processes.
func (s *Scheduler) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Queued returns the current queue depth.
func (s *Scheduler) Queued() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Len()
}

func newReqID() string {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return "00000000"
	}
	return hex.EncodeToString(buf)
}

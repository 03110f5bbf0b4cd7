package core

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// latencyWindowCap bounds the ring of recent per-request elapsed-time
// samples used to derive min/avg/max/p95; older samples are evicted.
const latencyWindowCap = 1000

// Aggregator maintains cumulative counters, token sums, and a bounded
// latency window. All mutation and reads happen under mu so that a
// snapshot is consistent across every field.
type Aggregator struct {
	mu            sync.Mutex
	total         int64
	completed     int64
	failed        int64
	timedOut      int64
	queueRejected int64
	inputTokens   int64
	outputTokens  int64
	latency       []int64
	latencyHead   int
}

// NewAggregator returns an empty metrics aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{latency: make([]int64, 0, latencyWindowCap)}
}

// IncTotal counts one admitted-or-rejected submission.
func (a *Aggregator) IncTotal() {
	a.mu.Lock()
	a.total++
	a.mu.Unlock()
}

// RecordCompleted records a successful completion: latency, completed
// count, and non-zero token sums.
func (a *Aggregator) RecordCompleted(elapsedMs int64, inputTokens, outputTokens int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.completed++
	a.pushLatency(elapsedMs)
	if inputTokens != 0 {
		a.inputTokens += int64(inputTokens)
	}
	if outputTokens != 0 {
		a.outputTokens += int64(outputTokens)
	}
}

// RecordFailed records a process-failure, max-turns, or internal-error outcome.
func (a *Aggregator) RecordFailed() {
	a.mu.Lock()
	a.failed++
	a.mu.Unlock()
}

// RecordTimedOut records an execution-timeout or queue-timeout outcome.
func (a *Aggregator) RecordTimedOut() {
	a.mu.Lock()
	a.timedOut++
	a.mu.Unlock()
}

// RecordQueueRejected records a queue-full rejection.
func (a *Aggregator) RecordQueueRejected() {
	a.mu.Lock()
	a.queueRejected++
	a.mu.Unlock()
}

// pushLatency appends to the ring, evicting the oldest sample once the
// window is full. Caller must hold mu.
func (a *Aggregator) pushLatency(elapsedMs int64) {
	if len(a.latency) < latencyWindowCap {
		a.latency = append(a.latency, elapsedMs)
		return
	}
	a.latency[a.latencyHead] = elapsedMs
	a.latencyHead = (a.latencyHead + 1) % latencyWindowCap
}

// Snapshot derives a consistent point-in-time view, combining counters
// with the supplied live gauges (active/queued are owned by the Scheduler,
// not the Aggregator, so the Scheduler passes them in under its own lock).
func (a *Aggregator) Snapshot(active, queued int) MetricsSnapshot {
	a.mu.Lock()
	defer a.mu.Unlock()

	snap := MetricsSnapshot{
		Total:         a.total,
		Completed:     a.completed,
		Failed:        a.failed,
		TimedOut:      a.timedOut,
		QueueRejected: a.queueRejected,
		Active:        active,
		Queued:        queued,
		InputTokens:   a.inputTokens,
		OutputTokens:  a.outputTokens,
	}
	snap.LatencyMin, snap.LatencyAvg, snap.LatencyMax, snap.LatencyP95 = latencySummary(a.latency)
	return snap
}

// latencySummary sorts a copy of the window and derives min/avg/max/p95.
// An empty window reports all-zero.
func latencySummary(window []int64) (min, avg, max, p95 int64) {
	n := len(window)
	if n == 0 {
		return 0, 0, 0, 0
	}
	sorted := make([]int64, n)
	copy(sorted, window)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var sum int64
	for _, v := range sorted {
		sum += v
	}

	idx := int(float64(n) * 0.95)
	if idx >= n {
		idx = n - 1
	}
	return sorted[0], (sum + int64(n)/2) / int64(n), sorted[n-1], sorted[idx]
}

// RenderPrometheus renders the current snapshot in Prometheus text
// exposition format, hand-rolled in the same style the teacher uses for
// its own daemon metrics (no Prometheus client library appears anywhere
// in the retrieved example pack).
func (a *Aggregator) RenderPrometheus(active, queued int) string {
	snap := a.Snapshot(active, queued)
	lines := []string{
		"# TYPE agentgate_requests_total counter",
		fmt.Sprintf("agentgate_requests_total %d", snap.Total),
		"# TYPE agentgate_requests_completed_total counter",
		fmt.Sprintf("agentgate_requests_completed_total %d", snap.Completed),
		"# TYPE agentgate_requests_failed_total counter",
		fmt.Sprintf("agentgate_requests_failed_total %d", snap.Failed),
		"# TYPE agentgate_requests_timed_out_total counter",
		fmt.Sprintf("agentgate_requests_timed_out_total %d", snap.TimedOut),
		"# TYPE agentgate_requests_queue_rejected_total counter",
		fmt.Sprintf("agentgate_requests_queue_rejected_total %d", snap.QueueRejected),
		"# TYPE agentgate_tokens_input_total counter",
		fmt.Sprintf("agentgate_tokens_input_total %d", snap.InputTokens),
		"# TYPE agentgate_tokens_output_total counter",
		fmt.Sprintf("agentgate_tokens_output_total %d", snap.OutputTokens),
		"# TYPE agentgate_active gauge",
		fmt.Sprintf("agentgate_active %d", snap.Active),
		"# TYPE agentgate_queued gauge",
		fmt.Sprintf("agentgate_queued %d", snap.Queued),
		"# TYPE agentgate_latency_ms gauge",
		fmt.Sprintf(`agentgate_latency_ms{quantile="min"} %d`, snap.LatencyMin),
		fmt.Sprintf(`agentgate_latency_ms{quantile="avg"} %d`, snap.LatencyAvg),
		fmt.Sprintf(`agentgate_latency_ms{quantile="p95"} %d`, snap.LatencyP95),
		fmt.Sprintf(`agentgate_latency_ms{quantile="max"} %d`, snap.LatencyMax),
	}
	return strings.Join(lines, "\n") + "\n"
}

package core

import (
	"strings"
	"testing"
)

func TestAggregator_EmptySnapshotIsAllZero(t *testing.T) {
	a := NewAggregator()
	snap := a.Snapshot(0, 0)
	if snap != (MetricsSnapshot{}) {
		t.Fatalf("expected an all-zero snapshot, got %+v", snap)
	}
}

func TestAggregator_CountersAndTokens(t *testing.T) {
	a := NewAggregator()
	a.IncTotal()
	a.IncTotal()
	a.RecordCompleted(100, 10, 20)
	a.RecordFailed()
	a.RecordTimedOut()
	a.RecordQueueRejected()

	snap := a.Snapshot(1, 2)
	if snap.Total != 2 || snap.Completed != 1 || snap.Failed != 1 || snap.TimedOut != 1 || snap.QueueRejected != 1 {
		t.Fatalf("unexpected counters: %+v", snap)
	}
	if snap.InputTokens != 10 || snap.OutputTokens != 20 {
		t.Fatalf("unexpected token sums: %+v", snap)
	}
	if snap.Active != 1 || snap.Queued != 2 {
		t.Fatalf("expected live gauges to pass through, got %+v", snap)
	}
}

func TestAggregator_LatencySummary(t *testing.T) {
	a := NewAggregator()
	for _, ms := range []int64{10, 20, 30, 40, 50} {
		a.RecordCompleted(ms, 0, 0)
	}
	snap := a.Snapshot(0, 0)
	if snap.LatencyMin != 10 {
		t.Fatalf("expected min 10, got %d", snap.LatencyMin)
	}
	if snap.LatencyMax != 50 {
		t.Fatalf("expected max 50, got %d", snap.LatencyMax)
	}
	if snap.LatencyAvg != 30 {
		t.Fatalf("expected avg 30, got %d", snap.LatencyAvg)
	}
}

func TestAggregator_LatencyWindowEvictsOldestPastCap(t *testing.T) {
	a := NewAggregator()
	for i := int64(0); i < latencyWindowCap; i++ {
		a.RecordCompleted(1, 0, 0)
	}
	a.RecordCompleted(999, 0, 0)

	snap := a.Snapshot(0, 0)
	if snap.LatencyMax != 999 {
		t.Fatalf("expected the newest sample to survive eviction, got max=%d", snap.LatencyMax)
	}
	if len(a.latency) != latencyWindowCap {
		t.Fatalf("expected the window to stay capped at %d, got %d", latencyWindowCap, len(a.latency))
	}
}

func TestAggregator_TokensIgnoreZeroValues(t *testing.T) {
	a := NewAggregator()
	a.RecordCompleted(5, 0, 0)
	a.RecordCompleted(5, 12, 0)
	snap := a.Snapshot(0, 0)
	if snap.InputTokens != 12 || snap.OutputTokens != 0 {
		t.Fatalf("expected token sums %d/%d, got %d/%d", 12, 0, snap.InputTokens, snap.OutputTokens)
	}
}

func TestAggregator_RenderPrometheusIncludesCoreSeries(t *testing.T) {
	a := NewAggregator()
	a.IncTotal()
	a.RecordCompleted(42, 1, 2)
	text := a.RenderPrometheus(1, 0)

	for _, want := range []string{
		"agentgate_requests_total 1",
		"agentgate_requests_completed_total 1",
		"agentgate_active 1",
		`agentgate_latency_ms{quantile="min"} 42`,
		`agentgate_latency_ms{quantile="max"} 42`,
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected rendered output to contain %q, got:\n%s", want, text)
		}
	}
}

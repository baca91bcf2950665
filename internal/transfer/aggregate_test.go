package transfer

import "testing"

func TestAggregatorSnapshot(t *testing.T) {
	agg := NewAggregator()
	agg.Register("a")
	agg.Register("b")
	agg.SetTotal("a", 100)
	agg.SetTotal("b", 300)

	agg.Observe("a", 40)
	agg.Observe("b", 60)

	snap := agg.Snapshot()
	if snap.ObservedBytes != 100 {
		t.Errorf("ObservedBytes = %d, want 100", snap.ObservedBytes)
	}
	if snap.TotalBytes != 400 {
		t.Errorf("TotalBytes = %d, want 400", snap.TotalBytes)
	}
	if !snap.Determinate() {
		t.Error("Snapshot should be determinate when every task is sized")
	}
	if snap.Percent() != 25 {
		t.Errorf("Percent() = %d, want 25", snap.Percent())
	}
}

func TestAggregatorObserveNeverRegresses(t *testing.T) {
	agg := NewAggregator()
	agg.Register("a")
	agg.SetTotal("a", 100)

	agg.Observe("a", 80)
	agg.Observe("a", 30) // stale sample arrives late

	if snap := agg.Snapshot(); snap.ObservedBytes != 80 {
		t.Errorf("ObservedBytes = %d, want 80 after stale sample", snap.ObservedBytes)
	}
}

func TestAggregatorCapsAtTotal(t *testing.T) {
	agg := NewAggregator()
	agg.Register("a")
	agg.SetTotal("a", 100)

	// A size observed mid-write can briefly exceed the estimate.
	agg.Observe("a", 150)

	snap := agg.Snapshot()
	if snap.ObservedBytes != 100 {
		t.Errorf("ObservedBytes = %d, want capped at 100", snap.ObservedBytes)
	}
	if snap.Percent() != 100 {
		t.Errorf("Percent() = %d, want 100", snap.Percent())
	}
}

func TestAggregatorCompleteBecomesFullSize(t *testing.T) {
	agg := NewAggregator()
	agg.Register("a")
	agg.SetTotal("a", 100)
	agg.Observe("a", 55)

	agg.Complete("a", 100)

	snap := agg.Snapshot()
	if snap.ObservedBytes != 100 {
		t.Errorf("ObservedBytes = %d, want the full size after completion", snap.ObservedBytes)
	}
	if snap.DoneTasks != 1 {
		t.Errorf("DoneTasks = %d, want 1", snap.DoneTasks)
	}
}

func TestAggregatorUnknownTotal(t *testing.T) {
	agg := NewAggregator()
	agg.Register("a")
	agg.Observe("a", 42)

	snap := agg.Snapshot()
	if snap.Determinate() {
		t.Error("Snapshot should be indeterminate while a task is unsized")
	}
	if snap.UnsizedTasks != 1 {
		t.Errorf("UnsizedTasks = %d, want 1", snap.UnsizedTasks)
	}

	// Completion sizes the task by what actually landed on disk.
	agg.Complete("a", 42)
	snap = agg.Snapshot()
	if !snap.Determinate() {
		t.Error("Snapshot should be determinate once the unsized task completed")
	}
	if snap.TotalBytes != 42 {
		t.Errorf("TotalBytes = %d, want 42", snap.TotalBytes)
	}
}

func TestAggregatorEmptyBatch(t *testing.T) {
	snap := NewAggregator().Snapshot()
	if snap.Determinate() {
		t.Error("empty snapshot must not be determinate")
	}
	if snap.Percent() != 0 {
		t.Errorf("Percent() = %d, want 0", snap.Percent())
	}
}

func TestAggregatorZeroByteBatch(t *testing.T) {
	agg := NewAggregator()
	agg.Register("a")
	agg.SetTotal("a", 0)

	if pct := agg.Snapshot().Percent(); pct != 0 {
		t.Errorf("Percent() = %d before completion, want 0", pct)
	}

	agg.Complete("a", 0)
	if pct := agg.Snapshot().Percent(); pct != 100 {
		t.Errorf("Percent() = %d after completion, want 100", pct)
	}
}

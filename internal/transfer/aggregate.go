package transfer

import (
	"sync"
	"sync/atomic"
)

type taskProgress struct {
	observed atomic.Int64
	total    atomic.Int64 // -1 until the size preflight reports
	done     atomic.Bool
}

// Snapshot is one consistent-enough view of batch progress. Observed bytes
// are capped per task at the task's known total so a mid-write oversample
// never pushes the aggregate past 100%.
type Snapshot struct {
	ObservedBytes int64
	TotalBytes    int64
	SizedTasks    int
	UnsizedTasks  int
	DoneTasks     int
	TotalTasks    int
}

// Determinate reports whether a percentage is meaningful: every task's
// total is known (sized up front or terminal). Until then the consumer
// should render observed bytes only.
func (s Snapshot) Determinate() bool {
	return s.TotalTasks > 0 && s.UnsizedTasks == 0
}

func (s Snapshot) Percent() int {
	if !s.Determinate() {
		return 0
	}
	if s.TotalBytes == 0 {
		if s.DoneTasks == s.TotalTasks {
			return 100
		}
		return 0
	}
	return int(s.ObservedBytes * 100 / s.TotalBytes)
}

// Aggregator sums per-task progress across all monitors and the render
// loop. Monitors write their own task's counters atomically; registration
// happens once per task under the map lock.
type Aggregator struct {
	mu    sync.Mutex
	tasks map[string]*taskProgress
}

func NewAggregator() *Aggregator {
	return &Aggregator{tasks: make(map[string]*taskProgress)}
}

func (a *Aggregator) Register(id string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.tasks[id]; ok {
		return
	}
	tp := &taskProgress{}
	tp.total.Store(-1)
	a.tasks[id] = tp
}

func (a *Aggregator) SetTotal(id string, total int64) {
	if tp := a.lookup(id); tp != nil && total >= 0 {
		tp.total.Store(total)
	}
}

// Observe records a sampled byte count, never letting a task's observed
// value move backwards.
func (a *Aggregator) Observe(id string, observed int64) {
	tp := a.lookup(id)
	if tp == nil {
		return
	}
	raiseTo(&tp.observed, observed)
}

// Complete marks a task terminal. Its contribution becomes its final size:
// a completed task never regresses to an interim sample, and a task whose
// total was unknown becomes sized by what actually landed on disk.
func (a *Aggregator) Complete(id string, finalBytes int64) {
	tp := a.lookup(id)
	if tp == nil {
		return
	}
	raiseTo(&tp.observed, finalBytes)
	if tp.total.Load() < 0 {
		tp.total.Store(finalBytes)
	}
	tp.done.Store(true)
}

func (a *Aggregator) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()

	snap := Snapshot{TotalTasks: len(a.tasks)}
	for _, tp := range a.tasks {
		observed := tp.observed.Load()
		total := tp.total.Load()
		if total >= 0 {
			snap.SizedTasks++
			snap.TotalBytes += total
			if observed > total {
				observed = total
			}
		} else {
			snap.UnsizedTasks++
		}
		snap.ObservedBytes += observed
		if tp.done.Load() {
			snap.DoneTasks++
		}
	}
	return snap
}

func (a *Aggregator) lookup(id string) *taskProgress {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.tasks[id]
}

func raiseTo(v *atomic.Int64, n int64) {
	for {
		current := v.Load()
		if n <= current || v.CompareAndSwap(current, n) {
			return
		}
	}
}

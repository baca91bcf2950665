package transfer

import "cloudpull/internal/models"

// Reporter receives progress events from the scheduler. Implementations
// render them; the scheduler only guarantees the values are consistent and
// monotonically sensible.
type Reporter interface {
	TaskStarted(task models.TransferTask, totalBytes int64)
	Sample(sample models.ProgressSample)
	Aggregate(snap Snapshot)
	TaskFinished(outcome models.TransferOutcome)
}

// NopReporter discards everything; used for quiet mode and tests.
type NopReporter struct{}

func (NopReporter) TaskStarted(models.TransferTask, int64) {}
func (NopReporter) Sample(models.ProgressSample)           {}
func (NopReporter) Aggregate(Snapshot)                     {}
func (NopReporter) TaskFinished(models.TransferOutcome)    {}

package transfer

import (
	"context"
	"time"

	"cloudpull/internal/models"
	"cloudpull/internal/remote"
)

// Invoker runs one task through the transfer mechanism and classifies the
// result. Errors never escape: everything the copier does or fails to do
// becomes a terminal TransferOutcome.
type Invoker struct {
	Copier remote.Copier
}

func (i Invoker) Execute(ctx context.Context, task models.TransferTask) models.TransferOutcome {
	started := time.Now()
	before := diskUsage(task.DestinationPath)

	result, err := i.Copier.Copy(ctx, remote.CopyRequest{
		Source:      task.SourcePath,
		Destination: task.DestinationPath,
		Kind:        task.Kind,
		Threads:     task.ThreadHint,
	})

	outcome := models.TransferOutcome{
		Task:     task,
		Duration: time.Since(started).Round(time.Millisecond).String(),
	}
	if delta := diskUsage(task.DestinationPath) - before; delta > 0 {
		outcome.BytesTransferred = delta
	}

	switch {
	case err != nil:
		outcome.Status = models.StatusFailed
		outcome.ErrorKind = remote.KindOf(err)
		outcome.ErrorDetail = err.Error()
		if ctx.Err() != nil {
			outcome.ErrorKind = remote.ErrorCancelled
			outcome.ErrorDetail = "cancelled"
		}
	case result.Copied == 0 && result.Skipped > 0:
		// Clean exit but every file already existed: nothing to do.
		outcome.Status = models.StatusSkipped
	default:
		outcome.Status = models.StatusSuccess
	}
	return outcome
}

// cancelledOutcome is the terminal state for a task the batch never ran.
func cancelledOutcome(task models.TransferTask) models.TransferOutcome {
	return models.TransferOutcome{
		Task:        task,
		Status:      models.StatusFailed,
		ErrorKind:   remote.ErrorCancelled,
		ErrorDetail: "cancelled",
	}
}

package progressui

import (
	"github.com/rs/zerolog"

	"cloudpull/internal/models"
	"cloudpull/internal/transfer"
	"cloudpull/pkg/utils"
)

// LogReporter is the non-TTY fallback: plain zerolog lines instead of
// redrawn bars, so piped output stays readable.
type LogReporter struct {
	Logger zerolog.Logger
}

func (r LogReporter) TaskStarted(task models.TransferTask, totalBytes int64) {
	event := r.Logger.Info().
		Str("source", task.SourcePath).
		Str("destination", task.DestinationPath)
	if totalBytes >= 0 {
		event = event.Str("size", utils.FormatBytes(totalBytes))
	}
	event.Msg("transfer started")
}

func (r LogReporter) Sample(sample models.ProgressSample) {
	r.Logger.Debug().
		Str("source", sample.Task.SourcePath).
		Str("observed", utils.FormatBytes(sample.ObservedBytes)).
		Msg("progress")
}

func (r LogReporter) Aggregate(snap transfer.Snapshot) {
	event := r.Logger.Debug().
		Str("observed", utils.FormatBytes(snap.ObservedBytes)).
		Int("done", snap.DoneTasks).
		Int("total", snap.TotalTasks)
	if snap.Determinate() {
		event = event.Int("percent", snap.Percent())
	}
	event.Msg("batch progress")
}

func (r LogReporter) TaskFinished(outcome models.TransferOutcome) {
	switch outcome.Status {
	case models.StatusFailed:
		r.Logger.Error().
			Str("source", outcome.Task.SourcePath).
			Str("kind", string(outcome.ErrorKind)).
			Str("detail", outcome.ErrorDetail).
			Msg("transfer failed")
	case models.StatusSkipped:
		r.Logger.Info().
			Str("source", outcome.Task.SourcePath).
			Msg("transfer skipped, destination already present")
	default:
		r.Logger.Info().
			Str("source", outcome.Task.SourcePath).
			Str("bytes", utils.FormatBytes(outcome.BytesTransferred)).
			Str("duration", outcome.Duration).
			Msg("transfer complete")
	}
}

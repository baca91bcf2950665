package transfer

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"cloudpull/internal/models"
	"cloudpull/internal/remote"
)

const DefaultPollInterval = 500 * time.Millisecond

// Scheduler fans a BatchPlan out over a bounded pool of workers, one
// invoker plus one monitor per active task, and fans the outcomes back into
// a single report. Task failures are isolated; only the operator's context
// cancels the batch.
type Scheduler struct {
	Copier       remote.Copier
	Sizer        remote.Sizer // optional size preflight, nil leaves tasks indeterminate
	Reporter     Reporter
	MaxParallel  int
	PollInterval time.Duration
}

func (s *Scheduler) Run(ctx context.Context, plan models.BatchPlan) (models.BatchReport, error) {
	if s.MaxParallel < 1 {
		return models.BatchReport{}, fmt.Errorf("max parallel must be at least 1, got %d", s.MaxParallel)
	}
	reporter := s.Reporter
	if reporter == nil {
		reporter = NopReporter{}
	}
	interval := s.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	logger := zerolog.Ctx(ctx)
	collector := NewCollector(plan)
	agg := NewAggregator()
	for _, task := range plan.Tasks {
		agg.Register(task.ID())
	}

	renderStop := make(chan struct{})
	renderDone := make(chan struct{})
	go func() {
		defer close(renderDone)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-renderStop:
				return
			case <-ticker.C:
				reporter.Aggregate(agg.Snapshot())
			}
		}
	}()

	var group errgroup.Group
	group.SetLimit(s.MaxParallel)

	for _, task := range plan.Tasks {
		if ctx.Err() != nil {
			// Batch cancelled: stop admitting, but every pending task
			// still gets its terminal outcome.
			finish(collector, reporter, logger, cancelledOutcome(task))
			agg.Complete(task.ID(), diskUsage(task.DestinationPath))
			continue
		}
		task := task
		group.Go(func() error {
			finish(collector, reporter, logger, s.runTask(ctx, task, agg, reporter, interval))
			return nil
		})
	}
	group.Wait()

	close(renderStop)
	<-renderDone
	reporter.Aggregate(agg.Snapshot())

	return collector.Finalize(), nil
}

func (s *Scheduler) runTask(ctx context.Context, task models.TransferTask, agg *Aggregator, reporter Reporter, interval time.Duration) models.TransferOutcome {
	logger := zerolog.Ctx(ctx)
	logger.Debug().
		Str("source", task.SourcePath).
		Str("destination", task.DestinationPath).
		Msg("task started")

	total := int64(-1)
	if s.Sizer != nil {
		if size, err := s.Sizer.Size(ctx, task.SourcePath); err == nil {
			total = size
		}
	}
	agg.SetTotal(task.ID(), total)
	reporter.TaskStarted(task, total)

	mon := startMonitor(task, total, interval, func(sample models.ProgressSample) {
		agg.Observe(task.ID(), sample.ObservedBytes)
		reporter.Sample(sample)
	})

	outcome := Invoker{Copier: s.Copier}.Execute(ctx, task)

	// Join the monitor before the outcome becomes visible anywhere, so no
	// sample can race a terminal state.
	mon.Stop()

	final := diskUsage(task.DestinationPath)
	if outcome.Status != models.StatusFailed && total > final {
		final = total
	}
	agg.Complete(task.ID(), final)

	logger.Debug().
		Str("source", task.SourcePath).
		Str("status", string(outcome.Status)).
		Str("duration", outcome.Duration).
		Msg("task finished")
	return outcome
}

func finish(collector *Collector, reporter Reporter, logger *zerolog.Logger, outcome models.TransferOutcome) {
	if err := collector.Record(outcome); err != nil {
		logger.Error().Err(err).Msg("dropping outcome")
		return
	}
	reporter.TaskFinished(outcome)
}

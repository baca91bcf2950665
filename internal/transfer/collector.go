package transfer

import (
	"fmt"
	"sync"
	"time"

	"cloudpull/internal/models"
	"cloudpull/pkg/utils"
)

// Collector accumulates exactly one outcome per scheduled task. A second
// outcome for the same task is a programming error, not a user condition.
type Collector struct {
	mu       sync.Mutex
	plan     models.BatchPlan
	outcomes map[string]models.TransferOutcome
	started  time.Time
}

func NewCollector(plan models.BatchPlan) *Collector {
	return &Collector{
		plan:     plan,
		outcomes: make(map[string]models.TransferOutcome, len(plan.Tasks)),
		started:  time.Now(),
	}
}

func (c *Collector) Record(outcome models.TransferOutcome) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := outcome.Task.ID()
	if _, dup := c.outcomes[id]; dup {
		return fmt.Errorf("duplicate outcome for task %s", id)
	}
	c.outcomes[id] = outcome
	return nil
}

// Finalize builds the report in plan order. It is called only after every
// scheduled task has reached a terminal state.
func (c *Collector) Finalize() models.BatchReport {
	c.mu.Lock()
	defer c.mu.Unlock()

	report := models.BatchReport{
		BatchID:         c.plan.BatchID,
		DestinationRoot: c.plan.DestinationRoot,
		TotalTasks:      len(c.plan.Tasks),
		Outcomes:        make([]models.TransferOutcome, 0, len(c.outcomes)),
		OperationTime:   utils.FormatTime(time.Now()),
		BatchDuration:   time.Since(c.started).Round(time.Millisecond).String(),
	}

	for _, task := range c.plan.Tasks {
		outcome, ok := c.outcomes[task.ID()]
		if !ok {
			continue
		}
		report.Outcomes = append(report.Outcomes, outcome)
		report.TotalBytes += outcome.BytesTransferred

		switch outcome.Status {
		case models.StatusSuccess:
			report.Succeeded++
		case models.StatusSkipped:
			report.Skipped++
		case models.StatusFailed:
			report.Failed++
			report.Failures = append(report.Failures, models.FailedTask{
				SourcePath: task.SourcePath,
				ErrorKind:  outcome.ErrorKind,
				Detail:     outcome.ErrorDetail,
			})
		}
	}
	report.TotalBytesHuman = utils.FormatBytes(report.TotalBytes)
	return report
}

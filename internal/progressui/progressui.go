// Package progressui renders the scheduler's progress events. The core only
// emits samples and aggregate snapshots; everything visual lives here.
package progressui

import (
	"sync"

	"github.com/pterm/pterm"

	"cloudpull/internal/models"
	"cloudpull/internal/transfer"
	"cloudpull/pkg/utils"
)

// TTYReporter draws one pterm bar (or spinner, when the size is unknown)
// per active task plus an overall bar, multiplexed through a MultiPrinter.
type TTYReporter struct {
	multi   *pterm.MultiPrinter
	overall *pterm.ProgressbarPrinter

	mu       sync.Mutex
	bars     map[string]*pterm.ProgressbarPrinter
	spinners map[string]*pterm.SpinnerPrinter
}

func NewTTY() *TTYReporter {
	multi := pterm.DefaultMultiPrinter
	return &TTYReporter{
		multi:    &multi,
		bars:     make(map[string]*pterm.ProgressbarPrinter),
		spinners: make(map[string]*pterm.SpinnerPrinter),
	}
}

func (r *TTYReporter) Start() error {
	overall, err := pterm.DefaultProgressbar.
		WithTotal(100).
		WithWriter(r.multi.NewWriter()).
		WithTitle("overall").
		WithShowCount(false).
		Start()
	if err != nil {
		return err
	}
	r.overall = overall
	_, err = r.multi.Start()
	return err
}

func (r *TTYReporter) Stop() {
	r.multi.Stop()
}

func (r *TTYReporter) TaskStarted(task models.TransferTask, totalBytes int64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	title := remoteName(task)
	if totalBytes >= 0 {
		bar, err := pterm.DefaultProgressbar.
			WithTotal(100).
			WithWriter(r.multi.NewWriter()).
			WithTitle(title).
			WithShowCount(false).
			Start()
		if err == nil {
			r.bars[task.ID()] = bar
		}
		return
	}
	// Unknown size: indeterminate, a spinner with a byte counter.
	spinner, err := pterm.DefaultSpinner.
		WithWriter(r.multi.NewWriter()).
		Start(title)
	if err == nil {
		r.spinners[task.ID()] = spinner
	}
}

func (r *TTYReporter) Sample(sample models.ProgressSample) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := sample.Task.ID()
	if bar, ok := r.bars[id]; ok && sample.EstimatedTotalBytes > 0 {
		percent := int(sample.ObservedBytes * 100 / sample.EstimatedTotalBytes)
		if percent > 100 {
			percent = 100
		}
		if percent > bar.Current {
			bar.Add(percent - bar.Current)
		}
		return
	}
	if spinner, ok := r.spinners[id]; ok {
		spinner.UpdateText(remoteName(sample.Task) + " " + utils.FormatBytes(sample.ObservedBytes))
	}
}

func (r *TTYReporter) TaskFinished(outcome models.TransferOutcome) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := outcome.Task.ID()
	title := remoteName(outcome.Task)

	if bar, ok := r.bars[id]; ok {
		delete(r.bars, id)
		if outcome.Status != models.StatusFailed && bar.Current < 100 {
			bar.Add(100 - bar.Current)
		}
		bar.Stop()
	}
	if spinner, ok := r.spinners[id]; ok {
		delete(r.spinners, id)
		switch outcome.Status {
		case models.StatusSuccess:
			spinner.Success(title)
		case models.StatusSkipped:
			spinner.Warning(title + " (already present)")
		default:
			spinner.Fail(title + ": " + outcome.ErrorDetail)
		}
	}
}

func (r *TTYReporter) Aggregate(snap transfer.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.overall == nil {
		return
	}
	if !snap.Determinate() {
		r.overall.UpdateTitle("overall " + utils.FormatBytes(snap.ObservedBytes))
		return
	}
	if percent := snap.Percent(); percent > r.overall.Current {
		r.overall.Add(percent - r.overall.Current)
	}
}

func remoteName(task models.TransferTask) string {
	name := task.SourcePath
	if len(name) > 48 {
		name = "..." + name[len(name)-45:]
	}
	return name
}

package transfer

import (
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"cloudpull/internal/models"
)

// monitor polls the destination path of one task and emits a sample per
// tick. It has no opinion on whether the transfer succeeds; it only reads
// filesystem metadata, uncoordinated with the worker writing the files.
type monitor struct {
	stop chan struct{}
	done chan struct{}
	once sync.Once
}

func startMonitor(task models.TransferTask, total int64, interval time.Duration, emit func(models.ProgressSample)) *monitor {
	m := &monitor{
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	go func() {
		defer close(m.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-m.stop:
				return
			case <-ticker.C:
				emit(models.ProgressSample{
					Task:                task,
					ObservedBytes:       diskUsage(task.DestinationPath),
					EstimatedTotalBytes: total,
					Timestamp:           time.Now(),
				})
			}
		}
	}()
	return m
}

// Stop joins the polling goroutine: once it returns, no further sample is
// emitted, so the caller may safely record the task's terminal outcome.
func (m *monitor) Stop() {
	m.once.Do(func() { close(m.stop) })
	<-m.done
}

// diskUsage sums the on-disk bytes under a path. A missing path is zero
// bytes, not an error: the transfer may not have created it yet. Entries
// vanishing mid-walk are skipped; the next sample self-corrects.
func diskUsage(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	if !info.IsDir() {
		return info.Size()
	}

	var total int64
	filepath.WalkDir(path, func(_ string, d fs.DirEntry, err error) error {
		if err != nil || !d.Type().IsRegular() {
			return nil
		}
		if fi, err := d.Info(); err == nil {
			total += fi.Size()
		}
		return nil
	})
	return total
}

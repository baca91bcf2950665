package models

import (
	"time"

	"cloudpull/internal/remote"
)

type TaskStatus string

const (
	StatusSuccess TaskStatus = "success"
	StatusSkipped TaskStatus = "skipped"
	StatusFailed  TaskStatus = "failed"
)

// TransferTask is one unit of work: copy a single remote file or folder
// tree to a local destination. Immutable once planned.
type TransferTask struct {
	SourcePath      string      `json:"source_path"`
	DestinationPath string      `json:"destination_path"`
	Kind            remote.Kind `json:"kind"`
	ThreadHint      int         `json:"thread_hint"`
}

// ID identifies a task by its (source, destination) pair.
func (t TransferTask) ID() string {
	return t.SourcePath + " -> " + t.DestinationPath
}

type TransferOutcome struct {
	Task             TransferTask     `json:"task"`
	Status           TaskStatus       `json:"status"`
	ErrorKind        remote.ErrorKind `json:"error_kind,omitempty"`
	ErrorDetail      string           `json:"error_detail,omitempty"`
	BytesTransferred int64            `json:"bytes_transferred"`
	Duration         string           `json:"duration,omitempty"`
}

type ProgressSample struct {
	Task                TransferTask `json:"task"`
	ObservedBytes       int64        `json:"observed_bytes"`
	EstimatedTotalBytes int64        `json:"estimated_total_bytes"`
	Timestamp           time.Time    `json:"timestamp"`
}

type BatchPlan struct {
	BatchID         string         `json:"batch_id"`
	DestinationRoot string         `json:"destination_root"`
	Tasks           []TransferTask `json:"tasks"`
}

package models

import "cloudpull/internal/remote"

type FailedTask struct {
	SourcePath string           `json:"source_path"`
	ErrorKind  remote.ErrorKind `json:"error_kind"`
	Detail     string           `json:"detail,omitempty"`
}

type BatchReport struct {
	BatchID         string            `json:"batch_id"`
	DestinationRoot string            `json:"destination_root"`
	TotalTasks      int               `json:"total_tasks"`
	Succeeded       int               `json:"succeeded"`
	Skipped         int               `json:"skipped"`
	Failed          int               `json:"failed"`
	Failures        []FailedTask      `json:"failures,omitempty"`
	Outcomes        []TransferOutcome `json:"outcomes"`
	TotalBytes      int64             `json:"total_bytes"`
	TotalBytesHuman string            `json:"total_bytes_human"`
	OperationTime   string            `json:"operation_time"`
	BatchDuration   string            `json:"batch_duration"`
}

package models

import "cloudpull/internal/remote"

type ListingEntry struct {
	Name      string      `json:"name"`
	Kind      remote.Kind `json:"kind"`
	SizeBytes int64       `json:"size_bytes"`
	SizeHuman string      `json:"size_human,omitempty"`
}

type Listing struct {
	BucketName    string         `json:"bucket_name"`
	Root          string         `json:"root"`
	Entries       []ListingEntry `json:"entries"`
	TotalFiles    int            `json:"total_files"`
	TotalFolders  int            `json:"total_folders"`
	OperationTime string         `json:"operation_time"`
}

type ErrorResponse struct {
	Error     string `json:"error"`
	Timestamp string `json:"timestamp"`
	Command   string `json:"command"`
}

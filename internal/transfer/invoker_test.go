package transfer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"cloudpull/internal/models"
	"cloudpull/internal/remote"
)

// fakeCopier dispatches on source path so one instance can serve a whole
// batch with mixed behavior.
type fakeCopier struct {
	copy func(ctx context.Context, req remote.CopyRequest) (remote.CopyResult, error)
}

func (f *fakeCopier) Copy(ctx context.Context, req remote.CopyRequest) (remote.CopyResult, error) {
	return f.copy(ctx, req)
}

func TestInvokerClassifiesOutcomes(t *testing.T) {
	task := models.TransferTask{
		SourcePath:      "gs://b/a.txt",
		DestinationPath: filepath.Join(t.TempDir(), "a.txt"),
		Kind:            remote.KindFile,
		ThreadHint:      8,
	}

	tests := []struct {
		name       string
		result     remote.CopyResult
		err        error
		wantStatus models.TaskStatus
		wantKind   remote.ErrorKind
	}{
		{"Copied files", remote.CopyResult{Copied: 2}, nil, models.StatusSuccess, remote.ErrorNone},
		{"All skipped", remote.CopyResult{Skipped: 3}, nil, models.StatusSkipped, remote.ErrorNone},
		{"Mixed is success", remote.CopyResult{Copied: 1, Skipped: 2}, nil, models.StatusSuccess, remote.ErrorNone},
		{"Empty folder is success", remote.CopyResult{}, nil, models.StatusSuccess, remote.ErrorNone},
		{"Permission error", remote.CopyResult{}, &remote.Error{Kind: remote.ErrorPermissionDenied, Op: "cp", Err: errors.New("403")}, models.StatusFailed, remote.ErrorPermissionDenied},
		{"Unclassified error", remote.CopyResult{}, errors.New("boom"), models.StatusFailed, remote.ErrorUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			invoker := Invoker{Copier: &fakeCopier{
				copy: func(context.Context, remote.CopyRequest) (remote.CopyResult, error) {
					return tt.result, tt.err
				},
			}}

			outcome := invoker.Execute(context.Background(), task)
			if outcome.Status != tt.wantStatus {
				t.Errorf("Status = %s, want %s", outcome.Status, tt.wantStatus)
			}
			if outcome.ErrorKind != tt.wantKind {
				t.Errorf("ErrorKind = %s, want %s", outcome.ErrorKind, tt.wantKind)
			}
		})
	}
}

func TestInvokerPassesTaskThrough(t *testing.T) {
	task := models.TransferTask{
		SourcePath:      "gs://b/reports",
		DestinationPath: filepath.Join(t.TempDir(), "reports"),
		Kind:            remote.KindFolder,
		ThreadHint:      6,
	}

	var got remote.CopyRequest
	invoker := Invoker{Copier: &fakeCopier{
		copy: func(_ context.Context, req remote.CopyRequest) (remote.CopyResult, error) {
			got = req
			return remote.CopyResult{Copied: 1}, nil
		},
	}}
	invoker.Execute(context.Background(), task)

	if got.Source != task.SourcePath || got.Destination != task.DestinationPath {
		t.Errorf("copy request paths = %s -> %s, want task paths", got.Source, got.Destination)
	}
	if got.Kind != remote.KindFolder {
		t.Errorf("copy request kind = %s, want folder", got.Kind)
	}
	if got.Threads != 6 {
		t.Errorf("copy request threads = %d, want 6", got.Threads)
	}
}

func TestInvokerCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	task := models.TransferTask{SourcePath: "gs://b/a", DestinationPath: filepath.Join(t.TempDir(), "a")}
	invoker := Invoker{Copier: &fakeCopier{
		copy: func(ctx context.Context, _ remote.CopyRequest) (remote.CopyResult, error) {
			return remote.CopyResult{}, ctx.Err()
		},
	}}

	outcome := invoker.Execute(ctx, task)
	if outcome.Status != models.StatusFailed {
		t.Errorf("Status = %s, want %s", outcome.Status, models.StatusFailed)
	}
	if outcome.ErrorKind != remote.ErrorCancelled {
		t.Errorf("ErrorKind = %s, want %s", outcome.ErrorKind, remote.ErrorCancelled)
	}
	if outcome.ErrorDetail != "cancelled" {
		t.Errorf("ErrorDetail = %q, want %q", outcome.ErrorDetail, "cancelled")
	}
}

func TestInvokerMeasuresBytesTransferred(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "a.bin")
	task := models.TransferTask{SourcePath: "gs://b/a.bin", DestinationPath: dst, Kind: remote.KindFile}

	invoker := Invoker{Copier: &fakeCopier{
		copy: func(_ context.Context, req remote.CopyRequest) (remote.CopyResult, error) {
			if err := os.WriteFile(req.Destination, make([]byte, 256), 0o644); err != nil {
				return remote.CopyResult{}, err
			}
			return remote.CopyResult{Copied: 1}, nil
		},
	}}

	outcome := invoker.Execute(context.Background(), task)
	if outcome.BytesTransferred != 256 {
		t.Errorf("BytesTransferred = %d, want 256", outcome.BytesTransferred)
	}
}

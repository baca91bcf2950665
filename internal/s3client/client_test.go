package s3client

import (
	"context"
	"errors"
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	appConfig "cloudpull/config"
	"cloudpull/internal/remote"
)

func TestSplitURL(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		wantBucket  string
		wantKey     string
		expectError bool
	}{
		{"Bucket only", "s3://data", "data", "", false},
		{"Object key", "s3://data/reports/2024.csv", "data", "reports/2024.csv", false},
		{"Folder key", "s3://data/reports/", "data", "reports/", false},
		{"Wrong scheme", "gs://data/x", "", "", true},
		{"No scheme", "data/x", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bucket, key, err := splitURL(tt.raw)
			if (err != nil) != tt.expectError {
				t.Fatalf("splitURL(%q) error = %v, expectError %v", tt.raw, err, tt.expectError)
			}
			if bucket != tt.wantBucket || key != tt.wantKey {
				t.Errorf("splitURL(%q) = %s, %s, want %s, %s", tt.raw, bucket, key, tt.wantBucket, tt.wantKey)
			}
		})
	}
}

func TestObjectURL(t *testing.T) {
	if result := objectURL("data", "reports/2024.csv"); result != "s3://data/reports/2024.csv" {
		t.Errorf("objectURL() = %s", result)
	}
}

func TestErrorKind(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected remote.ErrorKind
	}{
		{"No such key", &types.NoSuchKey{}, remote.ErrorNotFound},
		{"No such bucket", &types.NoSuchBucket{}, remote.ErrorNotFound},
		{"Not found code", &smithy.GenericAPIError{Code: "NotFound"}, remote.ErrorNotFound},
		{"Access denied", &smithy.GenericAPIError{Code: "AccessDenied"}, remote.ErrorPermissionDenied},
		{"Bad credentials", &smithy.GenericAPIError{Code: "InvalidAccessKeyId"}, remote.ErrorPermissionDenied},
		{"Throttled", &smithy.GenericAPIError{Code: "SlowDown"}, remote.ErrorNetwork},
		{"Unknown API code", &smithy.GenericAPIError{Code: "Teapot"}, remote.ErrorUnknown},
		{"Net error", &net.DNSError{IsTimeout: true}, remote.ErrorNetwork},
		{"Path error", &os.PathError{Op: "open", Path: "/ro/file", Err: os.ErrPermission}, remote.ErrorUnwritable},
		{"Context cancelled", context.Canceled, remote.ErrorCancelled},
		{"Plain error", errors.New("boom"), remote.ErrorUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := errorKind(tt.err); result != tt.expected {
				t.Errorf("errorKind(%v) = %s, want %s", tt.err, result, tt.expected)
			}
		})
	}
}

func TestDownloadObjectSkipsExisting(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "a.txt")
	if err := os.WriteFile(dst, []byte("already here"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	// The downloader is never touched when the destination exists.
	c := &Client{}
	copied, err := c.downloadObject(context.Background(), nil, "bucket", "a.txt", dst)
	if err != nil {
		t.Fatalf("downloadObject() error = %v", err)
	}
	if copied {
		t.Error("downloadObject() copied over an existing file")
	}

	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "already here" {
		t.Errorf("existing file was modified: %q", data)
	}
}

// Integration test, needs a reachable S3 endpoint.
// Set S3_INTEGRATION_TEST=true plus the TEST_* connection variables to run.
func TestListIntegration(t *testing.T) {
	if os.Getenv("S3_INTEGRATION_TEST") != "true" {
		t.Skip("Skipping integration test; set S3_INTEGRATION_TEST=true to run")
	}

	cfg := &appConfig.Config{
		ApiURL:     os.Getenv("TEST_API_URL"),
		AccessKey:  os.Getenv("TEST_ACCESS_KEY"),
		SecretKey:  os.Getenv("TEST_SECRET_KEY"),
		BucketName: os.Getenv("TEST_BUCKET_NAME"),
		Region:     os.Getenv("TEST_REGION"),
	}

	client, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	entries, err := client.List(context.Background(), "s3://"+cfg.BucketName)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	for _, entry := range entries {
		if entry.Name == "" {
			t.Errorf("entry with empty name: %+v", entry)
		}
	}
}

package remote

import (
	"context"
	"fmt"
	"strings"
)

type Kind string

const (
	KindFile   Kind = "file"
	KindFolder Kind = "folder"
)

// Entry is one immediate child of a remote root. Size is -1 when the
// backend cannot report it without an extra round trip.
type Entry struct {
	Path string `json:"path"`
	Name string `json:"name"`
	Kind Kind   `json:"kind"`
	Size int64  `json:"size"`
}

type URL struct {
	Scheme string
	Bucket string
	Path   string
}

func ParseURL(raw string) (URL, error) {
	scheme, rest, found := strings.Cut(raw, "://")
	if !found || scheme == "" {
		return URL{}, fmt.Errorf("invalid remote URL %q: missing scheme", raw)
	}
	bucket, path, _ := strings.Cut(rest, "/")
	if bucket == "" {
		return URL{}, fmt.Errorf("invalid remote URL %q: missing bucket", raw)
	}
	return URL{Scheme: scheme, Bucket: bucket, Path: path}, nil
}

func (u URL) String() string {
	if u.Path == "" {
		return u.Scheme + "://" + u.Bucket
	}
	return u.Scheme + "://" + u.Bucket + "/" + u.Path
}

// Join appends a child name to a remote path, keeping exactly one slash
// between segments and preserving a trailing slash on the child.
func Join(root, name string) string {
	return strings.TrimSuffix(root, "/") + "/" + strings.TrimPrefix(name, "/")
}

// BaseName returns the last path segment, ignoring a trailing slash, so
// folder paths name the folder rather than the empty string.
func BaseName(path string) string {
	trimmed := strings.TrimSuffix(path, "/")
	if i := strings.LastIndex(trimmed, "/"); i >= 0 {
		trimmed = trimmed[i+1:]
	}
	return trimmed
}

type Lister interface {
	List(ctx context.Context, root string) ([]Entry, error)
}

type Sizer interface {
	Size(ctx context.Context, path string) (int64, error)
}

type CopyRequest struct {
	Source      string
	Destination string
	Kind        Kind
	Threads     int
}

type CopyResult struct {
	Copied  int
	Skipped int
}

// Copier transfers one source tree to one destination tree. It must never
// overwrite an existing destination file and must abort promptly when the
// context is cancelled.
type Copier interface {
	Copy(ctx context.Context, req CopyRequest) (CopyResult, error)
}

// Storage is the full backend surface. Both the gsutil and the S3 backends
// satisfy it.
type Storage interface {
	Lister
	Sizer
	Copier
}

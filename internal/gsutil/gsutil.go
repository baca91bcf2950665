package gsutil

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"cloudpull/internal/remote"
)

// Client drives the gsutil binary. Authentication is whatever the local
// gcloud/gsutil installation carries; this process never holds credentials.
type Client struct {
	bin string
	run runFunc
}

func New(bin string) *Client {
	if bin == "" {
		bin = "gsutil"
	}
	return &Client{bin: bin, run: execRun}
}

var copyPerfArgs = []string{
	"-o", "GSUtil:parallel_process_count=1",
	"-o", "GSUtil:sliced_object_download_threshold=64M",
	"-o", "GSUtil:sliced_object_download_max_components=8",
}

func (c *Client) List(ctx context.Context, root string) ([]remote.Entry, error) {
	res, err := c.run(ctx, c.bin, "ls", withTrailingSlash(root))
	if err != nil {
		return nil, c.wrap(ctx, res, "ls", root, err)
	}
	if res.ExitCode != 0 {
		return nil, c.wrap(ctx, res, "ls", root, nil)
	}
	return parseListing(res.Stdout), nil
}

func (c *Client) Size(ctx context.Context, path string) (int64, error) {
	res, err := c.run(ctx, c.bin, "-q", "du", "-s", path)
	if err != nil {
		return -1, c.wrap(ctx, res, "du", path, err)
	}
	if res.ExitCode != 0 {
		return -1, c.wrap(ctx, res, "du", path, nil)
	}
	size, ok := parseDu(res.Stdout)
	if !ok {
		return -1, fmt.Errorf("gsutil du %s: unparseable output %q", path, strings.TrimSpace(res.Stdout))
	}
	return size, nil
}

func (c *Client) Copy(ctx context.Context, req remote.CopyRequest) (remote.CopyResult, error) {
	threads := req.Threads
	if threads < 1 {
		threads = 1
	}

	args := []string{"-m", "-o", fmt.Sprintf("GSUtil:parallel_thread_count=%d", threads)}
	args = append(args, copyPerfArgs...)
	args = append(args, "cp")
	if req.Kind == remote.KindFolder {
		args = append(args, "-r")
	}
	args = append(args, "-n", req.Source, req.Destination)

	res, err := c.run(ctx, c.bin, args...)
	out := res.Stdout + res.Stderr
	result := remote.CopyResult{
		Copied:  strings.Count(out, "Copying "),
		Skipped: strings.Count(out, "Skipping existing item"),
	}
	if err != nil {
		return result, c.wrap(ctx, res, "cp", req.Source, err)
	}
	if res.ExitCode != 0 {
		return result, c.wrap(ctx, res, "cp", req.Source, nil)
	}
	return result, nil
}

// Version reports the installed gsutil version, or an error when the
// binary is missing or not runnable.
func (c *Client) Version(ctx context.Context) (string, error) {
	res, err := c.run(ctx, c.bin, "version")
	if err != nil {
		return "", fmt.Errorf("%s not runnable: %w", c.bin, err)
	}
	if res.ExitCode != 0 {
		return "", c.wrap(ctx, res, "version", "", nil)
	}
	line, _, _ := strings.Cut(strings.TrimSpace(res.Stdout), "\n")
	return strings.TrimSpace(strings.TrimPrefix(line, "gsutil version:")), nil
}

// EnsurePerfConfig writes the parallel/sliced-download settings through
// `gsutil config` when the boto file does not carry them yet. Returns true
// when settings were applied.
func (c *Client) EnsurePerfConfig(ctx context.Context, botoPath string, threads int) (bool, error) {
	data, err := os.ReadFile(botoPath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("failed to read %s: %w", botoPath, err)
	}
	if strings.Contains(string(data), "parallel_thread_count") {
		return false, nil
	}

	if threads < 1 {
		threads = 1
	}
	res, err := c.run(ctx, c.bin, "config",
		"-o", fmt.Sprintf("GSUtil:parallel_thread_count=%d", threads),
		"-o", "GSUtil:parallel_process_count=1",
		"-o", "GSUtil:sliced_object_download_threshold=64M",
		"-o", "GSUtil:sliced_object_download_max_components=8",
		"-o", "GSUtil:use_magicfile=False",
	)
	if err != nil {
		return false, fmt.Errorf("gsutil config failed: %w", err)
	}
	if res.ExitCode != 0 {
		return false, fmt.Errorf("gsutil config failed: %s", stderrSummary(res.Stderr))
	}
	return true, nil
}

func DefaultBotoPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".boto"
	}
	return filepath.Join(home, ".boto")
}

func (c *Client) wrap(ctx context.Context, res Result, op, path string, runErr error) error {
	if ctx.Err() != nil {
		return &remote.Error{Kind: remote.ErrorCancelled, Op: "gsutil " + op, Path: path, Err: ctx.Err()}
	}
	if runErr != nil {
		return &remote.Error{Kind: remote.ErrorUnknown, Op: "gsutil " + op, Path: path, Err: runErr}
	}
	return &remote.Error{
		Kind: classify(res.ExitCode, res.Stderr),
		Op:   "gsutil " + op,
		Path: path,
		Err:  errors.New(stderrSummary(res.Stderr)),
	}
}

// parseListing turns `gsutil ls` output into entries. Each line is a full
// gs:// URL; folders carry a trailing slash. Header lines for subdirectory
// expansions end with a colon and are skipped.
func parseListing(out string) []remote.Entry {
	entries := make([]remote.Entry, 0)
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasSuffix(line, ":") {
			continue
		}
		kind := remote.KindFile
		if strings.HasSuffix(line, "/") {
			kind = remote.KindFolder
		}
		entries = append(entries, remote.Entry{
			Path: line,
			Name: remote.BaseName(line),
			Kind: kind,
			Size: -1,
		})
	}
	return entries
}

// parseDu extracts the byte count from `gsutil du -s` output, shaped like
// "123456   gs://bucket/path".
func parseDu(out string) (int64, bool) {
	fields := strings.Fields(out)
	if len(fields) == 0 {
		return 0, false
	}
	size, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil || size < 0 {
		return 0, false
	}
	return size, true
}

func withTrailingSlash(path string) string {
	if strings.HasSuffix(path, "/") {
		return path
	}
	return path + "/"
}

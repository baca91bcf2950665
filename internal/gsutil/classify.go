package gsutil

import (
	"strings"

	"cloudpull/internal/remote"
)

// errorPatterns maps gsutil stderr text onto error kinds. Order matters:
// remote access errors are matched before local filesystem ones because
// gsutil reuses words like "permission" on both sides.
var errorPatterns = []struct {
	kind       remote.ErrorKind
	substrings []string
}{
	{remote.ErrorNotFound, []string{
		"BucketNotFoundException",
		"NotFoundException",
		"matched no objects",
		"No URLs matched",
		"bucket does not exist",
		"404",
	}},
	{remote.ErrorPermissionDenied, []string{
		"AccessDeniedException",
		"does not have storage.objects",
		"anonymous caller",
		"401",
		"403",
	}},
	{remote.ErrorNetwork, []string{
		"Connection reset",
		"Connection refused",
		"Connection aborted",
		"Temporary failure in name resolution",
		"getaddrinfo failed",
		"timed out",
		"TimeoutError",
		"SSLError",
		"Network is unreachable",
	}},
	{remote.ErrorUnwritable, []string{
		"Permission denied",
		"No space left on device",
		"Read-only file system",
		"IOError",
		"OSError",
	}},
}

func classify(exitCode int, stderr string) remote.ErrorKind {
	if exitCode == 0 {
		return remote.ErrorNone
	}
	for _, p := range errorPatterns {
		for _, s := range p.substrings {
			if strings.Contains(stderr, s) {
				return p.kind
			}
		}
	}
	return remote.ErrorUnknown
}

// stderrSummary picks the most informative stderr line for error detail:
// the first exception line when present, else the first non-empty line.
func stderrSummary(stderr string) string {
	var first string
	for _, line := range strings.Split(stderr, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if first == "" {
			first = line
		}
		if strings.Contains(line, "Exception") || strings.Contains(line, "Error") {
			return truncate(line, 300)
		}
	}
	if first == "" {
		return "gsutil exited with an error and no output"
	}
	return truncate(first, 300)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

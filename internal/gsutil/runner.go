package gsutil

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
)

// Result captures everything one gsutil invocation produced. ExitCode is
// -1 when the process never ran.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

type runFunc func(ctx context.Context, bin string, args ...string) (Result, error)

// execRun runs the binary and folds a non-zero exit into the Result rather
// than the error, so callers classify on exit code and stderr. The error is
// non-nil only when the process could not run at all or was killed by
// context cancellation.
func execRun(ctx context.Context, bin string, args ...string) (Result, error) {
	cmd := exec.CommandContext(ctx, bin, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	res := Result{Stdout: stdout.String(), Stderr: stderr.String(), ExitCode: -1}
	if cmd.ProcessState != nil {
		res.ExitCode = cmd.ProcessState.ExitCode()
	}

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return res, ctxErr
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return res, nil
		}
		return res, err
	}
	return res, nil
}

package cmd

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"cloudpull/internal/progressui"
	"cloudpull/internal/remote"
	"cloudpull/internal/transfer"
	"cloudpull/pkg/utils"
)

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download files and folders from the bucket",
	Long: `Download a selection of files and folders from the bucket to a local
destination, running up to --max-parallel transfers at once.

Folders are copied recursively. Files already present at the destination are
never overwritten: they are reported as skipped, which makes re-running a
batch after failures safe.`,
	Example: `  # Download two files
  cloudpull download --file reports/2024.csv --file readme.txt

  # Download a folder recursively to a specific destination
  cloudpull download --folder backups/ --destination /tmp/restore

  # Download everything in the bucket, four transfers at a time
  cloudpull download --everything --max-parallel 4

  # Download everything except logs, print the report as JSON
  cloudpull download --everything --exclude 'logs*' --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDownload(cmd)
	},
}

func runDownload(cmd *cobra.Command) error {
	bucket, err := bucketURL(cmd)
	if err != nil {
		return err
	}
	files, _ := cmd.Flags().GetStringArray("file")
	folders, _ := cmd.Flags().GetStringArray("folder")
	everything, _ := cmd.Flags().GetBool("everything")
	include, _ := cmd.Flags().GetStringArray("include")
	exclude, _ := cmd.Flags().GetStringArray("exclude")

	selection, err := buildSelection(bucket, files, folders, everything, include, exclude)
	if err != nil {
		return err
	}
	storage, err := newStorage(bucket)
	if err != nil {
		return err
	}

	destination, _ := cmd.Flags().GetString("destination")
	if destination == "" {
		destination = defaultDestination(bucket)
	}
	maxParallel, _ := cmd.Flags().GetInt("max-parallel")
	if maxParallel == 0 {
		maxParallel = cfg.MaxParallel
	}
	threads, _ := cmd.Flags().GetInt("threads")
	if threads == 0 {
		threads = cfg.ThreadsPerTransfer
	}

	ctx, cancel := signalContext()
	defer cancel()
	if timeout, _ := cmd.Flags().GetInt("timeout"); timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, time.Duration(timeout)*time.Second)
		defer cancel()
	}

	return runBatch(cmd, ctx, storage, bucket, selection, destination, maxParallel, threads)
}

// runBatch is the shared plan/confirm/run/report path for the download and
// interactive commands.
func runBatch(cmd *cobra.Command, ctx context.Context, storage remote.Storage, bucket string, selection transfer.Selection, destination string, maxParallel, threads int) error {
	if err := os.MkdirAll(destination, 0o755); err != nil {
		return fmt.Errorf("failed to create destination %s: %w", destination, err)
	}

	planner := &transfer.Planner{
		Lister:          storage,
		Root:            bucket,
		DestinationRoot: destination,
		Threads:         threads,
	}
	plan, err := planner.Plan(ctx, selection)
	if err != nil {
		return err
	}
	if len(plan.Tasks) == 0 {
		pterm.Info.Println("Nothing to transfer.")
		return nil
	}

	confirm, _ := cmd.Flags().GetBool("confirm")
	if !confirm {
		fmt.Printf("Transfer operation summary:\n")
		fmt.Printf("Bucket: %s\n", bucket)
		fmt.Printf("Tasks: %d\n", len(plan.Tasks))
		fmt.Printf("Destination: %s\n", destination)
		fmt.Printf("Max parallel: %d\n", maxParallel)

		fmt.Print("Continue with transfer? (y/N): ")
		var response string
		if _, err := fmt.Scanln(&response); err != nil {
			response = ""
		}
		if !slices.Contains([]string{"y", "yes"}, strings.ToLower(response)) {
			fmt.Println("Transfer cancelled.")
			return nil
		}
	}

	jsonOut, _ := cmd.Flags().GetBool("json")
	reporter, tty := pickReporter(cmd, jsonOut)
	if tty != nil {
		if err := tty.Start(); err != nil {
			reporter = progressui.LogReporter{Logger: newLogger(cmd)}
			tty = nil
		}
	}

	scheduler := &transfer.Scheduler{
		Copier:       storage,
		Sizer:        storage,
		Reporter:     reporter,
		MaxParallel:  maxParallel,
		PollInterval: cfg.PollInterval,
	}
	report, err := scheduler.Run(ctx, plan)
	if tty != nil {
		tty.Stop()
	}
	if err != nil {
		return err
	}

	if jsonOut {
		if err := utils.PrintJSON(report); err != nil {
			return err
		}
	} else {
		progressui.PrintSummary(report)
	}

	if report.Failed > 0 {
		cmd.SilenceUsage = true
		return fmt.Errorf("%d of %d tasks failed", report.Failed, report.TotalTasks)
	}
	return nil
}

// buildSelection maps the flag surface onto one selection mode. Files and
// folders are separate batches; mixing them in one invocation is rejected.
func buildSelection(bucket string, files, folders []string, everything bool, include, exclude []string) (transfer.Selection, error) {
	selection := transfer.Selection{Include: include, Exclude: exclude}

	switch {
	case everything:
		if len(files) > 0 || len(folders) > 0 {
			return selection, fmt.Errorf("--everything cannot be combined with --file or --folder")
		}
		selection.Mode = transfer.ModeEverything
	case len(files) > 0 && len(folders) > 0:
		return selection, fmt.Errorf("--file and --folder cannot be mixed in one batch: run two downloads")
	case len(files) == 1:
		selection.Mode = transfer.ModeSingleFile
		selection.Paths = joinAll(bucket, files)
	case len(files) > 1:
		selection.Mode = transfer.ModeMultipleFiles
		selection.Paths = joinAll(bucket, files)
	case len(folders) == 1:
		selection.Mode = transfer.ModeSingleFolder
		selection.Paths = joinAll(bucket, folders)
	case len(folders) > 1:
		selection.Mode = transfer.ModeMultipleFolders
		selection.Paths = joinAll(bucket, folders)
	default:
		return selection, fmt.Errorf("nothing selected: pass --file, --folder or --everything")
	}
	return selection, nil
}

func joinAll(bucket string, paths []string) []string {
	joined := make([]string, 0, len(paths))
	for _, p := range paths {
		if strings.Contains(p, "://") {
			joined = append(joined, p)
			continue
		}
		joined = append(joined, remote.Join(bucket, p))
	}
	return joined
}

// pickReporter chooses live bars on a terminal, plain log lines otherwise.
func pickReporter(cmd *cobra.Command, jsonOut bool) (transfer.Reporter, *progressui.TTYReporter) {
	if jsonOut || noProgress(cmd) || !isatty.IsTerminal(os.Stdout.Fd()) {
		return progressui.LogReporter{Logger: newLogger(cmd)}, nil
	}
	tty := progressui.NewTTY()
	return tty, tty
}

func init() {
	downloadCmd.Flags().StringArray("file", nil, "Remote file to download (repeatable)")
	downloadCmd.Flags().StringArray("folder", nil, "Remote folder to download recursively (repeatable)")
	downloadCmd.Flags().Bool("everything", false, "Download every top-level entry in the bucket")
	downloadCmd.Flags().StringP("destination", "d", "", "Local destination root (default: DESTINATION_ROOT or ~/Downloads/<bucket>)")
	downloadCmd.Flags().Int("max-parallel", 0, "Concurrent transfers (default: MAX_PARALLEL)")
	downloadCmd.Flags().Int("threads", 0, "Threads per transfer for large files (default: THREADS_PER_TRANSFER)")
	downloadCmd.Flags().StringArray("include", nil, "Only entries matching this glob (repeatable)")
	downloadCmd.Flags().StringArray("exclude", nil, "Skip entries matching this glob (repeatable)")
	downloadCmd.Flags().Int("timeout", 0, "Timeout in seconds for the whole batch (0 = none)")
	downloadCmd.Flags().Bool("confirm", false, "Skip confirmation prompt")
	downloadCmd.Flags().Bool("json", false, "Print the batch report as JSON")
}

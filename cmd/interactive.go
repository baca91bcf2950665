package cmd

import (
	"fmt"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"cloudpull/internal/remote"
	"cloudpull/internal/transfer"
)

const (
	menuSingleFile      = "Download a single file"
	menuMultipleFiles   = "Download multiple files"
	menuSingleFolder    = "Download a single folder"
	menuMultipleFolders = "Download multiple folders"
	menuEverything      = "Download everything"
)

var interactiveCmd = &cobra.Command{
	Use:     "interactive",
	Aliases: []string{"menu"},
	Short:   "Pick what to download from a menu",
	Long: `Walk through the bucket interactively: choose a selection mode, pick the
entries from a live listing, then run the same transfer batch the download
command would.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInteractive(cmd)
	},
}

func runInteractive(cmd *cobra.Command) error {
	bucket, err := bucketURL(cmd)
	if err != nil {
		return err
	}
	storage, err := newStorage(bucket)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	entries, err := storage.List(ctx, bucket)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		pterm.Info.Printfln("%s is empty", bucket)
		return nil
	}

	mode, err := pterm.DefaultInteractiveSelect.
		WithOptions([]string{menuSingleFile, menuMultipleFiles, menuSingleFolder, menuMultipleFolders, menuEverything}).
		Show("What do you want to download?")
	if err != nil {
		return err
	}

	selection, err := pickSelection(mode, entries)
	if err != nil {
		return err
	}

	destination, err := pterm.DefaultInteractiveTextInput.
		WithDefaultValue(defaultDestination(bucket)).
		Show("Destination directory")
	if err != nil {
		return err
	}

	parallelText, err := pterm.DefaultInteractiveTextInput.
		WithDefaultValue(strconv.Itoa(cfg.MaxParallel)).
		Show("Max parallel transfers")
	if err != nil {
		return err
	}
	maxParallel, err := strconv.Atoi(parallelText)
	if err != nil || maxParallel < 1 {
		return fmt.Errorf("max parallel must be a number of at least 1, got %q", parallelText)
	}

	return runBatch(cmd, ctx, storage, bucket, selection, destination, maxParallel, cfg.ThreadsPerTransfer)
}

// pickSelection turns a menu choice plus picked entries into the validated
// selection tuple the planner consumes.
func pickSelection(mode string, entries []remote.Entry) (transfer.Selection, error) {
	switch mode {
	case menuEverything:
		return transfer.Selection{Mode: transfer.ModeEverything}, nil

	case menuSingleFile, menuSingleFolder:
		kind := remote.KindFile
		selectionMode := transfer.ModeSingleFile
		if mode == menuSingleFolder {
			kind = remote.KindFolder
			selectionMode = transfer.ModeSingleFolder
		}
		options := entryPaths(entries, kind)
		if len(options) == 0 {
			return transfer.Selection{}, fmt.Errorf("the bucket has no top-level entries of kind %s", kind)
		}
		picked, err := pterm.DefaultInteractiveSelect.WithOptions(options).Show("Pick an entry")
		if err != nil {
			return transfer.Selection{}, err
		}
		return transfer.Selection{Mode: selectionMode, Paths: []string{picked}}, nil

	case menuMultipleFiles, menuMultipleFolders:
		kind := remote.KindFile
		selectionMode := transfer.ModeMultipleFiles
		if mode == menuMultipleFolders {
			kind = remote.KindFolder
			selectionMode = transfer.ModeMultipleFolders
		}
		options := entryPaths(entries, kind)
		if len(options) == 0 {
			return transfer.Selection{}, fmt.Errorf("the bucket has no top-level entries of kind %s", kind)
		}
		picked, err := pterm.DefaultInteractiveMultiselect.WithOptions(options).Show("Pick entries")
		if err != nil {
			return transfer.Selection{}, err
		}
		if len(picked) == 0 {
			return transfer.Selection{}, fmt.Errorf("nothing picked")
		}
		return transfer.Selection{Mode: selectionMode, Paths: picked}, nil

	default:
		return transfer.Selection{}, fmt.Errorf("unknown menu choice %q", mode)
	}
}

func entryPaths(entries []remote.Entry, kind remote.Kind) []string {
	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.Kind == kind {
			paths = append(paths, entry.Path)
		}
	}
	return paths
}

package cmd

import (
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"cloudpull/internal/models"
	"cloudpull/internal/remote"
	"cloudpull/pkg/utils"
)

var lsCmd = &cobra.Command{
	Use:   "ls [prefix]",
	Short: "List the immediate entries of the bucket",
	Long: `List the files and folders directly under the bucket root, or under the
given prefix. Folders are not expanded; sizes are shown when the backend
reports them without an extra round trip.`,
	Example: `  # List the bucket root
  cloudpull ls

  # List a prefix
  cloudpull ls reports/2024

  # Raw listing as JSON
  cloudpull ls --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLs(cmd, args)
	},
}

func runLs(cmd *cobra.Command, args []string) error {
	bucket, err := bucketURL(cmd)
	if err != nil {
		return err
	}
	storage, err := newStorage(bucket)
	if err != nil {
		return err
	}

	root := bucket
	if len(args) == 1 {
		root = remote.Join(bucket, args[0])
	}

	ctx, cancel := signalContext()
	defer cancel()

	entries, err := storage.List(ctx, root)
	if err != nil {
		return err
	}
	listing := buildListing(bucket, root, entries)

	if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
		return utils.PrintJSON(listing)
	}

	if len(listing.Entries) == 0 {
		pterm.Info.Printfln("%s is empty", root)
		return nil
	}
	table := pterm.TableData{{"Kind", "Size", "Name"}}
	for _, entry := range listing.Entries {
		table = append(table, []string{string(entry.Kind), entry.SizeHuman, entry.Name})
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(table).Render(); err != nil {
		return err
	}
	pterm.Info.Printfln("%d files, %d folders", listing.TotalFiles, listing.TotalFolders)
	return nil
}

func buildListing(bucket, root string, entries []remote.Entry) models.Listing {
	listing := models.Listing{
		BucketName:    bucket,
		Root:          root,
		Entries:       make([]models.ListingEntry, 0, len(entries)),
		OperationTime: utils.FormatTime(time.Now()),
	}
	for _, entry := range entries {
		item := models.ListingEntry{
			Name:      entry.Name,
			Kind:      entry.Kind,
			SizeBytes: entry.Size,
		}
		if entry.Size >= 0 {
			item.SizeHuman = utils.FormatBytes(entry.Size)
		}
		if entry.Kind == remote.KindFolder {
			listing.TotalFolders++
		} else {
			listing.TotalFiles++
		}
		listing.Entries = append(listing.Entries, item)
	}
	return listing
}

func init() {
	lsCmd.Flags().Bool("json", false, "Print the listing as JSON")
}

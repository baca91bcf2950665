package progressui

import (
	"fmt"

	"github.com/pterm/pterm"

	"cloudpull/internal/models"
)

// PrintSummary renders the final batch report for a human: counts per
// status and the failed tasks with their error kinds, so the operator can
// retry just that subset.
func PrintSummary(report models.BatchReport) {
	pterm.DefaultSection.Println("Transfer summary")

	pterm.Info.Printfln("Destination: %s", report.DestinationRoot)
	pterm.Info.Printfln("Transferred: %s in %s", report.TotalBytesHuman, report.BatchDuration)

	if report.Succeeded > 0 {
		pterm.Success.Printfln("Succeeded: %d", report.Succeeded)
	}
	if report.Skipped > 0 {
		pterm.Warning.Printfln("Skipped (already present): %d", report.Skipped)
	}
	if report.Failed == 0 {
		return
	}

	pterm.Error.Printfln("Failed: %d", report.Failed)
	table := pterm.TableData{{"Source", "Error", "Detail"}}
	for _, failure := range report.Failures {
		table = append(table, []string{failure.SourcePath, string(failure.ErrorKind), failure.Detail})
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(table).Render(); err != nil {
		for _, failure := range report.Failures {
			fmt.Printf("  %s  %s  %s\n", failure.SourcePath, failure.ErrorKind, failure.Detail)
		}
	}
}

package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"cloudpull/internal/gsutil"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the transfer tooling and destination",
	Long: `Verify that the gsutil binary is installed and runnable, apply the boto
performance settings when they are missing, and confirm the destination root
is writable.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDoctor(cmd)
	},
}

func runDoctor(cmd *cobra.Command) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	healthy := true
	client := gsutil.New(cfg.GsutilPath)

	version, err := client.Version(ctx)
	if err != nil {
		healthy = false
		pterm.Error.Printfln("gsutil: %v", err)
		pterm.Info.Println("gs:// transfers need the Google Cloud SDK: https://cloud.google.com/sdk/docs/install")
	} else {
		pterm.Success.Printfln("gsutil %s", version)

		applied, err := client.EnsurePerfConfig(ctx, gsutil.DefaultBotoPath(), cfg.ThreadsPerTransfer)
		switch {
		case err != nil:
			pterm.Warning.Printfln("boto performance settings: %v", err)
		case applied:
			pterm.Success.Println("boto performance settings applied")
		default:
			pterm.Success.Println("boto performance settings already present")
		}
	}

	destination := cfg.DestinationRoot
	if destination == "" {
		bucket, err := bucketURL(cmd)
		if err != nil {
			bucket = ""
		}
		destination = defaultDestination(bucket)
	}
	if err := checkWritable(destination); err != nil {
		healthy = false
		pterm.Error.Printfln("destination %s: %v", destination, err)
	} else {
		pterm.Success.Printfln("destination %s is writable", destination)
	}

	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		pterm.Success.Println("S3 credentials configured")
	} else {
		pterm.Info.Println("S3 credentials not configured; s3:// buckets unavailable")
	}

	if !healthy {
		cmd.SilenceUsage = true
		return fmt.Errorf("environment is not ready")
	}
	return nil
}

func checkWritable(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	probe, err := os.CreateTemp(dir, ".cloudpull-doctor-*")
	if err != nil {
		return err
	}
	name := probe.Name()
	probe.Close()
	return os.Remove(name)
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"cloudpull/config"
	"cloudpull/internal/gsutil"
	"cloudpull/internal/remote"
	"cloudpull/internal/s3client"
	"cloudpull/pkg/utils"
)

var (
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "cloudpull",
	Short: "Bulk downloader for remote object storage",
	Long: `cloudpull pulls files and folders from remote object storage to a local
destination with bounded parallelism and live progress.
gs:// buckets go through the installed gsutil tool; s3:// buckets go through
the AWS SDK. Configuration is loaded from .env file or environment variables`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupLogging(cmd)
	},
}

func Execute(config *config.Config) error {
	cfg = config
	rootCmd.SilenceErrors = true
	err := rootCmd.Execute()
	if err != nil {
		utils.PrintError(err, "cloudpull")
	}
	return err
}

func init() {
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(lsCmd)
	rootCmd.AddCommand(interactiveCmd)
	rootCmd.AddCommand(doctorCmd)

	rootCmd.PersistentFlags().StringP("bucket", "b", "", "Override bucket name from config")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().Bool("no-progress", false, "Disable live progress rendering")
}

func setupLogging(cmd *cobra.Command) {
	logger := newLogger(cmd)
	zerolog.DefaultContextLogger = &logger
}

func newLogger(cmd *cobra.Command) zerolog.Logger {
	level := zerolog.InfoLevel
	if isVerbose(cmd) {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
}

func getBucketName(cmd *cobra.Command) string {
	bucket, _ := cmd.Flags().GetString("bucket")
	if bucket != "" {
		return bucket
	}
	return cfg.BucketName
}

func isVerbose(cmd *cobra.Command) bool {
	verbose, _ := cmd.Flags().GetBool("verbose")
	return verbose
}

func noProgress(cmd *cobra.Command) bool {
	disabled, _ := cmd.Flags().GetBool("no-progress")
	return disabled
}

// bucketURL normalizes the configured bucket to a remote URL. A bare name
// defaults to the gs:// scheme.
func bucketURL(cmd *cobra.Command) (string, error) {
	name := getBucketName(cmd)
	if name == "" {
		return "", errors.New("no bucket configured: set BUCKET_NAME or pass --bucket")
	}
	if !strings.Contains(name, "://") {
		name = "gs://" + name
	}
	u, err := remote.ParseURL(name)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

// newStorage picks the backend matching the bucket URL scheme.
func newStorage(bucket string) (remote.Storage, error) {
	u, err := remote.ParseURL(bucket)
	if err != nil {
		return nil, err
	}
	switch u.Scheme {
	case "gs":
		return gsutil.New(cfg.GsutilPath), nil
	case "s3":
		return s3client.New(cfg)
	default:
		return nil, fmt.Errorf("unsupported scheme %q: use gs:// or s3://", u.Scheme)
	}
}

// signalContext cancels on operator interrupt so in-flight transfers are
// terminated rather than abandoned.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// defaultDestination resolves where a batch lands when no flag is given:
// the configured root, else ~/Downloads/<bucket>.
func defaultDestination(bucket string) string {
	if cfg.DestinationRoot != "" {
		return cfg.DestinationRoot
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	u, parseErr := remote.ParseURL(bucket)
	if parseErr != nil {
		return filepath.Join(home, "Downloads")
	}
	return filepath.Join(home, "Downloads", u.Bucket)
}

package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/ironsheep/graphsnap/internal/logging"
)

var (
	flagConfig    string
	flagLogLevel  string
	flagLogFormat string
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "graphsnap",
		Short: "Extract graph structure from diagram images",
		Long: "graphsnap detects nodes, edges, and labels in raster diagram\n" +
			"images and emits the recovered graph as structured data.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Missing .env files are fine; only report parse failures.
			if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("failed to load .env: %w", err)
			}
			level, err := parseLevel(flagLogLevel)
			if err != nil {
				return err
			}
			// Logs go to stderr so stdout stays clean for piped output.
			logging.Init(level, flagLogFormat)
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "path to YAML config file")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flagLogFormat, "log-format", "text", "log format (text, json)")

	root.AddCommand(newExtractCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("graphsnap %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
		},
	}
}

func parseLevel(s string) (slog.Level, error) {
	switch s {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", s)
	}
}

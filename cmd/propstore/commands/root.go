// Package commands implements the propstore server CLI.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/propstore/propstore/internal/logger"
	"github.com/propstore/propstore/pkg/config"
)

// Version information, injected by main from build-time variables.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "propstore",
	Short: "In-memory transient property store server",
	Long: `propstore is an in-memory, key-value transient property store with
per-property locking, time-based expiration, and asynchronous retry of
contended operations.

It exposes a management REST API for store lifecycle and key operations,
Prometheus metrics, and optional OpenTelemetry tracing.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("propstore %s (commit %s, built %s)\n", Version, Commit, Date)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"Path to config file (default: $XDG_CONFIG_HOME/propstore/config.yaml)")
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(initCmd)
}

// SetVersion stores the build-time version information.
func SetVersion(version, commit, date string) {
	Version = version
	Commit = commit
	Date = date
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// GetConfigFile returns the --config flag value.
func GetConfigFile() string {
	return configFile
}

// InitLogger configures the process logger from the loaded configuration.
func InitLogger(cfg *config.Config) error {
	return logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
}

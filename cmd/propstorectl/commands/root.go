// Package commands implements the propstorectl management CLI.
package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/propstore/propstore/internal/cli/output"
	"github.com/propstore/propstore/pkg/apiclient"
)

var (
	serverURL    string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "propstorectl",
	Short: "Manage a running propstore server",
	Long: `propstorectl talks to the management API of a running propstore
server: store lifecycle, key operations, and health.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&serverURL, "server", "s",
		envOr("PROPSTORECTL_SERVER", "http://localhost:8980"),
		"propstore API server URL")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table",
		"Output format: table, json, yaml")

	rootCmd.AddCommand(storeCmd)
	rootCmd.AddCommand(keyCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// client builds the API client for the configured server.
func client() *apiclient.Client {
	return apiclient.New(serverURL)
}

// printer builds the output printer for the configured format.
func printer() (*output.Printer, error) {
	format, err := output.ParseFormat(outputFormat)
	if err != nil {
		return nil, err
	}
	return output.NewPrinter(os.Stdout, format, true), nil
}

package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/propstore/propstore/pkg/config"
)

var forceInit bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a sample configuration file",
	Long: `Write a sample configuration file with sensible defaults and one
example store. The file is written to the --config path, or the default
location at $XDG_CONFIG_HOME/propstore/config.yaml.`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&forceInit, "force", false, "Overwrite an existing config file")
}

func runInit(cmd *cobra.Command, args []string) error {
	path := GetConfigFile()
	if path == "" {
		path = config.GetDefaultConfigPath()
	}

	if _, err := os.Stat(path); err == nil && !forceInit {
		return fmt.Errorf("config file already exists: %s (use --force to overwrite)", path)
	}

	cfg := config.GetDefaultConfig()
	cfg.API.Enabled = true
	cfg.Metrics.Enabled = true
	cfg.Stores = []config.StoreDefinition{
		{
			Name:        "sessions",
			Props:       []string{"token", "state", "payload"},
			Timeout:     5 * time.Minute,
			LockTimeout: 30 * time.Second,
		},
	}

	if err := config.SaveConfig(cfg, path); err != nil {
		return err
	}

	fmt.Printf("Configuration written to %s\n", path)
	return nil
}

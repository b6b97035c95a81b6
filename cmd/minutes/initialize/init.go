// Package initcmder provides the init command for writing a default
// config.toml.
package initcmder

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/minuteshq/minutes/pkg/config"
)

const initLongDesc string = `Write a default config.toml to the config directory.

The file holds the storage path, vector store, embedding, text generation,
ingestion, and query settings. Every value can be overridden by a
MINUTES_* environment variable at runtime.

Examples:
  minutes init
  minutes init --config ~/.minutes`

const initShortDesc string = "Write a default config.toml"

func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: initShortDesc,
		Long:  initLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configDir, err := cmd.Flags().GetString("config")
			if err != nil {
				return fmt.Errorf("could not get config flag: %v", err)
			}
			return runInit(configDir)
		},
	}

	return cmd
}

func runInit(configDir string) error {
	if configDir == "" {
		configDir = "."
	}

	path := filepath.Join(configDir, "config.toml")
	if _, err := os.Stat(path); err == nil {
		fmt.Printf("Config already exists: %s\n", path)
		return nil
	}

	if err := config.SaveFile(configDir, config.NewDefaultConfig()); err != nil {
		return err
	}

	fmt.Printf("Wrote default config: %s\n", path)
	return nil
}

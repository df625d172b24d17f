package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/itohio/tivatemp/pkg/config"
)

// newRootCommand builds the command tree.
func newRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "tivatemp",
		Short:         "tivatemp samples a temperature sensor and reports it over serial",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().String("config", "config.yaml", "Configuration file path")
	rootCmd.PersistentFlags().String("env", ".env", "Environment file with overrides (ignored if missing)")

	rootCmd.AddCommand(newRunCommand())
	rootCmd.AddCommand(newMonitorCommand())
	rootCmd.AddCommand(newPortsCommand())
	rootCmd.AddCommand(newPinsCommand())
	rootCmd.AddCommand(newVersionCommand())
	return rootCmd
}

// loadConfig reads the env file and the config file named by the persistent flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	envFile, _ := cmd.Flags().GetString("env")
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load env file: %w", err)
		}
	}

	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	cfg.ApplyEnv()

	log.Printf("Loaded configuration from %s", cfgFile)
	return cfg, nil
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Prints the application's version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "Version: %s\n", version)
			return nil
		},
	}
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cweiss/showsync/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and update the configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the effective configuration to the default location",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.SaveConfig(cfg); err != nil {
			return err
		}
		fmt.Println("config written")
		if cfg.TVDB.APIKey == "" {
			fmt.Println("set tvdb.api_key (or run 'showsync config set-key') before the first sync")
		}
		return nil
	},
}

var configSetKeyCmd = &cobra.Command{
	Use:   "set-key <api-key>",
	Short: "Store the TheTVDB api key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.SaveAPIKey(cfg, args[0]); err != nil {
			return err
		}
		fmt.Println("api key stored")
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configSetKeyCmd)
	rootCmd.AddCommand(configCmd)
}

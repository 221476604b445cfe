package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zjrosen/heinlein/internal/config"
)

var configInitForce bool

var configInitCmd = &cobra.Command{
	Use:         "config:init",
	Short:       "Write a commented default config file",
	Args:        cobra.NoArgs,
	Annotations: map[string]string{annotationStandalone: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath()
		if err := config.WriteDefaultConfig(path, configInitForce); err != nil {
			return err
		}
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return err
	},
}

var configSetCmd = &cobra.Command{
	Use:   "config:set <key> <value>",
	Short: "Set a value in the config file",
	Long: `Set a single setting in the config file, keeping its comments.

Keys:
  ` + strings.Join(config.SettingKeys(), "\n  "),
	Args:        cobra.ExactArgs(2),
	Annotations: map[string]string{annotationStandalone: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath()
		if err := config.SaveSetting(path, args[0], args[1]); err != nil {
			return err
		}
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s in %s\n", args[0], args[1], path)
		return err
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "overwrite an existing config file")
	rootCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configSetCmd)
}

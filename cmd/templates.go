package cmd

import (
	"github.com/spf13/cobra"
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List the bundled dataset templates",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.formatter.FormatTemplates(app.service.Templates())
	},
}

func init() {
	rootCmd.AddCommand(templatesCmd)
}

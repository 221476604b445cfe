package cmd

import (
	"github.com/spf13/cobra"

	"github.com/zjrosen/heinlein/internal/presentation"
)

var clearCmd = &cobra.Command{
	Use:   "clear <dataset>",
	Short: "Remove every datatype from a dataset",
	Long: `Remove every registered datatype from a dataset after confirmation.
The dataset itself and its template metadata are kept.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := app.service.Clear(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return app.formatter.FormatCleared(presentation.FromClearResult(res))
	},
}

func init() {
	rootCmd.AddCommand(clearCmd)
}

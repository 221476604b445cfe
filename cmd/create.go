package cmd

import (
	"github.com/spf13/cobra"

	"github.com/zjrosen/heinlein/internal/presentation"
)

var createCmd = &cobra.Command{
	Use:   "create <dataset>",
	Short: "Create a dataset without registering any data",
	Long: `Create a dataset. If a bundled template has the dataset's name it is used
as the starting configuration; otherwise the default template is used.
Creating an existing dataset is a no-op.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := app.service.Create(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return app.formatter.FormatCreated(presentation.FromCreateResult(res))
	},
}

func init() {
	rootCmd.AddCommand(createCmd)
}

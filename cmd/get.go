package cmd

import (
	"github.com/spf13/cobra"

	"github.com/zjrosen/heinlein/internal/presentation"
)

var getCmd = &cobra.Command{
	Use:   "get <dataset> <datatype>",
	Short: "Print the path registered for a datatype",
	Long: `Print the path registered for a dataset's datatype.

In table mode only the path is printed, so the command composes with the shell:
  cd "$(heinlein get des catalog)"`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := app.service.Get(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		return app.formatter.FormatPath(presentation.FromResult(res))
	},
}

func init() {
	rootCmd.AddCommand(getCmd)
}

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/zjrosen/heinlein/internal/presentation"
)

var removeCmd = &cobra.Command{
	Use:     "remove <dataset> <datatype>",
	Aliases: []string{"rm"},
	Short:   "Remove a datatype from a dataset",
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := app.service.Remove(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		return app.formatter.FormatRemoved(presentation.FromResult(res))
	},
}

func init() {
	rootCmd.AddCommand(removeCmd)
}

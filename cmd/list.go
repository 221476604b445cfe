package cmd

import (
	"github.com/spf13/cobra"

	"github.com/zjrosen/heinlein/internal/presentation"
)

var listCmd = &cobra.Command{
	Use:     "list [dataset]",
	Aliases: []string{"ls"},
	Short:   "List datasets, or the datatypes of one dataset",
	Long: `Without an argument, show every dataset with its datatypes and paths.
With a dataset name, list that dataset's datatypes. A dataset with no
registered datatypes is reported as an error.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			rows, err := app.service.Overview(cmd.Context())
			if err != nil {
				return err
			}
			return app.formatter.FormatOverview(presentation.FromSummaries(rows))
		}

		types, err := app.service.List(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return app.formatter.FormatDatatypes(presentation.DatatypesDTO{Dataset: args[0], Datatypes: types})
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}

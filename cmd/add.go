package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zjrosen/heinlein/internal/presentation"
)

var addOverwrite bool

var addCmd = &cobra.Command{
	Use:   "add <dataset> <datatype> [path]",
	Short: "Register a path for a datatype",
	Long: `Register the path where a dataset's datatype lives.

The path defaults to the current directory. It must exist and is stored as an
absolute path with symlinks resolved. If the dataset does not exist yet you are
asked whether to create it (use --yes to skip the question).

Examples:
  heinlein add des catalog /data/des/y6/catalog
  heinlein add des mask                       # current directory
  heinlein add des catalog ./y6b --overwrite`,
	Args: cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ""
		if len(args) == 3 {
			path = args[2]
		} else {
			wd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("getting current directory: %w", err)
			}
			path = wd
		}

		res, err := app.service.Add(cmd.Context(), args[0], args[1], path, addOverwrite)
		if err != nil {
			return err
		}
		return app.formatter.FormatAdded(presentation.FromResult(res))
	},
}

func init() {
	addCmd.Flags().BoolVar(&addOverwrite, "overwrite", false, "replace an existing path for the datatype")
	rootCmd.AddCommand(addCmd)
}

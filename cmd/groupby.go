package cmd

import (
	"io"

	"github.com/KaramelBytes/swissknife/internal/groupby"
	"github.com/spf13/cobra"
)

var (
	grpDelimiter    string
	grpOutDelimiter string
	grpFields       string
	grpUnique       bool
	grpStrip        bool
	grpOutputPath   string
)

var groupbyCmd = &cobra.Command{
	Use:   "groupby [flags] [FILE...]",
	Short: "Group rows by their first column",
	Long: `Groupby merges rows that share the value of their first (selected) column.
The remaining fields of every row are appended to the group's row in input
order; with --unique repeated values are kept only once. Each input is
grouped on its own; no inputs reads stdin.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sp, err := splitterFromFlags(cmd, grpDelimiter, grpFields, grpStrip)
		if err != nil {
			return err
		}
		return withOutput(cmd, grpOutputPath, func(w io.Writer) error {
			return groupby.Run(cmd.Context(), newOpener(cmd), groupby.Config{
				Splitter:        sp,
				Unique:          grpUnique,
				OutputDelimiter: outputDelimiter(grpOutDelimiter, sp.Delimiter),
			}, args, w, logger)
		})
	},
}

func init() {
	rootCmd.AddCommand(groupbyCmd)
	groupbyCmd.Flags().StringVarP(&grpDelimiter, "delimiter", "d", "", "input field delimiter (default from config, TAB)")
	groupbyCmd.Flags().StringVarP(&grpOutDelimiter, "output-delimiter", "D", "", "output field delimiter (default: input delimiter)")
	groupbyCmd.Flags().StringVarP(&grpFields, "fields", "f", "", "1-based columns to use; the first is the key")
	groupbyCmd.Flags().BoolVarP(&grpUnique, "unique", "u", false, "keep each value only once per group")
	groupbyCmd.Flags().BoolVar(&grpStrip, "strip", false, "strip surrounding whitespace from lines")
	groupbyCmd.Flags().StringVarP(&grpOutputPath, "output", "o", "", "write result to this file instead of stdout")
}

package cmd

import (
	"io"

	"github.com/KaramelBytes/swissknife/internal/aggregate"
	"github.com/spf13/cobra"
)

var (
	aggDelimiter    string
	aggOutDelimiter string
	aggFields       string
	aggFunction     string
	aggMode         string
	aggStrip        bool
	aggOutputPath   string
)

var aggregateCmd = &cobra.Command{
	Use:   "aggregate [flags] FILE...",
	Short: "Aggregate numeric columns of one or more tables",
	Long: `Aggregate applies one statistic to tabular data.

In column mode every input collapses to one row holding the statistic of
each column. In multiple mode the inputs are read side by side and each
output row combines the corresponding rows of all inputs; output stops at
the shortest input.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := settings()
		fnName := c.DefaultFunction
		if cmd.Flags().Changed("function") {
			fnName = aggFunction
		}
		fn, err := aggregate.ParseKind(fnName)
		if err != nil {
			return err
		}
		modeName := c.DefaultMode
		if cmd.Flags().Changed("mode") {
			modeName = aggMode
		}
		mode, err := aggregate.ParseMode(modeName)
		if err != nil {
			return err
		}
		sp, err := splitterFromFlags(cmd, aggDelimiter, aggFields, aggStrip)
		if err != nil {
			return err
		}
		logger.Debug("aggregate", "function", fn.String(), "mode", mode.String(), "inputs", len(args))
		return withOutput(cmd, aggOutputPath, func(w io.Writer) error {
			eng := aggregate.NewEngine(newOpener(cmd), aggregate.Config{
				Splitter:        sp,
				Function:        fn,
				OutputDelimiter: outputDelimiter(aggOutDelimiter, "\t"),
			}, w, logger)
			return eng.Run(cmd.Context(), mode, args)
		})
	},
}

func init() {
	rootCmd.AddCommand(aggregateCmd)
	aggregateCmd.Flags().StringVarP(&aggDelimiter, "delimiter", "d", "", "input field delimiter (default from config, TAB)")
	aggregateCmd.Flags().StringVarP(&aggOutDelimiter, "output-delimiter", "D", "", "output field delimiter (default TAB)")
	aggregateCmd.Flags().StringVarP(&aggFields, "fields", "f", "", "1-based columns to use, e.g. 1,3-5")
	aggregateCmd.Flags().StringVarP(&aggFunction, "function", "F", "mean", "statistic: "+joinNames(aggregate.Names()))
	aggregateCmd.Flags().StringVarP(&aggMode, "mode", "m", "multiple", "aggregation mode: column|multiple")
	aggregateCmd.Flags().BoolVar(&aggStrip, "strip", false, "strip surrounding whitespace from lines")
	aggregateCmd.Flags().StringVarP(&aggOutputPath, "output", "o", "", "write result to this file instead of stdout")
}

package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/KaramelBytes/swissknife/internal/indexspec"
	"github.com/KaramelBytes/swissknife/internal/source"
	"github.com/KaramelBytes/swissknife/internal/table"
	"github.com/spf13/cobra"
)

var (
	tblDelimiter    string
	tblOutDelimiter string
	tblFields       string
	tblStrip        bool
	tblEvery        int
	tblDates        string
	tblDateFormat   string
	tblXRange       string
	tblNoHeader     bool
	tblOutputPath   string
)

var tableCmd = &cobra.Command{
	Use:   "table [flags] [FILE...]",
	Short: "Print the typed rows of a table as a plotting front end would see them",
	Long: `Table runs inputs through header detection and numeric conversion and
prints the result: the header (with [[style]] suffixes removed) followed by
the data rows. Cells that are not numbers print as empty fields.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sp, err := splitterFromFlags(cmd, tblDelimiter, tblFields, tblStrip)
		if err != nil {
			return err
		}
		opts := table.Options{Splitter: sp, Every: tblEvery}
		switch tblDates {
		case "", "none":
		case "x":
			format := settings().DateFormat
			if cmd.Flags().Changed("date-format") {
				format = tblDateFormat
			}
			opts.Converter = table.Converter{FirstColumnIsDate: true, DateLayout: table.DateLayout(format)}
		default:
			return fmt.Errorf("invalid --dates: %s (use none or x)", tblDates)
		}
		xr := indexspec.Range{}
		if tblXRange != "" {
			if xr, err = indexspec.ParseRange(tblXRange); err != nil {
				return err
			}
		}
		if len(args) == 0 {
			args = []string{source.Stdin}
		}
		return withOutput(cmd, tblOutputPath, func(w io.Writer) (err error) {
			tw := table.NewWriter(w, outputDelimiter(tblOutDelimiter, sp.Delimiter))
			defer func() {
				if ferr := tw.Flush(); err == nil {
					err = ferr
				}
			}()
			v := tableView{opener: newOpener(cmd), opts: opts, xrange: tblXRange != "", xr: xr, header: !tblNoHeader}
			for _, name := range args {
				if err := v.stream(cmd.Context(), name, tw); err != nil {
					return err
				}
			}
			return nil
		})
	},
}

type tableView struct {
	opener *source.Opener
	opts   table.Options
	xrange bool
	xr     indexspec.Range
	header bool
	// wroteHeader is set once the first input's header is out.
	wroteHeader bool
}

func (v *tableView) stream(ctx context.Context, name string, w *table.Writer) error {
	rc, err := v.opener.Open(ctx, name)
	if err != nil {
		return err
	}
	defer rc.Close()

	it := table.NewIterator(source.NewLines(rc), v.opts)
	n, shown := 0, 0
	for {
		row, ok := it.Next()
		if !ok {
			break
		}
		n++
		headers := it.Headers()
		if v.header && !v.wroteHeader && headers != nil {
			if err := w.Write(table.StripStyles(headers)); err != nil {
				return err
			}
			v.wroteHeader = true
		}
		if v.xrange && (len(row.Values) == 0 || !row.Values[0].Valid || !v.xr.Contains(row.Values[0].F)) {
			continue
		}
		// Never emit more columns than the header declares.
		if headers != nil && len(row.Values) > len(headers) {
			row.Values = row.Values[:len(headers)]
			row.Raw = row.Raw[:len(headers)]
		}
		if err := w.Write(v.cells(row)); err != nil {
			return err
		}
		shown++
	}
	if err := it.Err(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if v.header && !v.wroteHeader && it.Headers() != nil {
		if err := w.Write(table.StripStyles(it.Headers())); err != nil {
			return err
		}
		v.wroteHeader = true
	}
	logger.Debug("table read", "name", name, "rows", n, "shown", shown, "header", it.Headers() != nil)
	return nil
}

func (v *tableView) cells(row table.Row) []string {
	out := make([]string, len(row.Values))
	for i, val := range row.Values {
		if i == 0 && v.opts.FirstColumnIsDate {
			if val.Valid {
				out[i] = row.Raw[i]
			}
			continue
		}
		out[i] = table.FormatValue(val)
	}
	return out
}

func init() {
	rootCmd.AddCommand(tableCmd)
	tableCmd.Flags().StringVarP(&tblDelimiter, "delimiter", "d", "", "input field delimiter (default from config, TAB)")
	tableCmd.Flags().StringVarP(&tblOutDelimiter, "output-delimiter", "D", "", "output field delimiter (default: input delimiter)")
	tableCmd.Flags().StringVarP(&tblFields, "fields", "f", "", "1-based columns to keep, e.g. 1,3-5")
	tableCmd.Flags().BoolVar(&tblStrip, "strip", false, "strip surrounding whitespace from lines")
	tableCmd.Flags().IntVar(&tblEvery, "every", 1, "keep only every Nth data row")
	tableCmd.Flags().StringVar(&tblDates, "dates", "none", "date axis: none|x (first column holds dates)")
	tableCmd.Flags().StringVar(&tblDateFormat, "date-format", "", "date layout, Go reference or strftime (default from config)")
	tableCmd.Flags().StringVar(&tblXRange, "xrange", "", "keep rows whose first column lies in MIN:MAX")
	tableCmd.Flags().BoolVar(&tblNoHeader, "no-header", false, "do not print the detected header")
	tableCmd.Flags().StringVarP(&tblOutputPath, "output", "o", "", "write result to this file instead of stdout")
}

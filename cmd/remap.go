package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/KaramelBytes/swissknife/internal/indexspec"
	"github.com/KaramelBytes/swissknife/internal/remap"
	"github.com/spf13/cobra"
)

var (
	rmpDelimiter    string
	rmpMapDelimiter string
	rmpFields       string
	rmpMapFields    string
	rmpMapFile      string
	rmpMapExpr      string
	rmpStrict       bool
	rmpWarn         bool
	rmpMissing      string
	rmpOutputPath   string
)

var remapCmd = &cobra.Command{
	Use:   "remap [flags] [FILE...]",
	Short: "Replace field values using a mapping file or expression",
	Long: `Remap rewrites the selected fields of every row. Values come from a
mapping file (two columns, old and new) or from a Go template expression in
which .x is the old value, e.g. --mapping-expr '{{printf "id_%s" .x}}'.

Values missing from the mapping file are handled by --missing:
ignore (keep), warn (keep and log), skip (drop row), empty (drop field),
fail (abort).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if (rmpMapFile == "") == (rmpMapExpr == "") {
			return errors.New("exactly one of --mapping-file or --mapping-expr must be given")
		}
		c := settings()
		delim := delimiter(rmpDelimiter, c.Delimiter)
		fields, err := fieldsFlag(cmd, "fields", rmpFields)
		if err != nil {
			return err
		}

		var mapper remap.Mapper
		if rmpMapExpr != "" {
			m, err := remap.NewTemplateMapper(rmpMapExpr)
			if err != nil {
				return err
			}
			mapper = m
		} else {
			policy, err := missingPolicy()
			if err != nil {
				return err
			}
			lookup, err := loadLookup(cmd, policy)
			if err != nil {
				return err
			}
			mapper = lookup
		}

		r := remap.NewRemapper(mapper, remap.Config{Delimiter: delim, Fields: fields}, logger)
		return withOutput(cmd, rmpOutputPath, func(w io.Writer) error {
			return r.Run(cmd.Context(), newOpener(cmd), args, w)
		})
	},
}

// missingPolicy resolves --missing, --strict and --warn. --strict and then
// --warn override --missing.
func missingPolicy() (remap.Policy, error) {
	switch {
	case rmpStrict:
		return remap.FailStrict, nil
	case rmpWarn:
		return remap.Warn, nil
	}
	return remap.ParsePolicy(rmpMissing)
}

func loadLookup(cmd *cobra.Command, policy remap.Policy) (*remap.Lookup, error) {
	cols, err := indexspec.Parse(rmpMapFields)
	if err != nil {
		return nil, err
	}
	if len(cols) != 2 {
		return nil, fmt.Errorf("--mapping-fields must name exactly two columns, got %q", rmpMapFields)
	}
	rc, err := newOpener(cmd).Open(cmd.Context(), rmpMapFile)
	if err != nil {
		return nil, fmt.Errorf("open mapping file: %w", err)
	}
	defer rc.Close()
	m, err := remap.LoadMapping(rc, delimiter(rmpMapDelimiter, "\t"), cols[0], cols[1])
	if err != nil {
		return nil, err
	}
	lookup := remap.NewLookup(m, policy, logger)
	logger.Debug("mapping loaded", "file", rmpMapFile, "entries", lookup.Len(), "missing", policy.String())
	return lookup, nil
}

func init() {
	rootCmd.AddCommand(remapCmd)
	remapCmd.Flags().StringVarP(&rmpDelimiter, "delimiter", "d", "", "input/output field delimiter (default from config, TAB)")
	remapCmd.Flags().StringVarP(&rmpMapDelimiter, "mapping-delimiter", "D", "", "mapping file delimiter (default TAB)")
	remapCmd.Flags().StringVarP(&rmpFields, "fields", "f", "", "1-based columns to remap (default all)")
	remapCmd.Flags().StringVarP(&rmpMapFields, "mapping-fields", "F", "1,2", "mapping file columns holding OLD,NEW")
	remapCmd.Flags().StringVarP(&rmpMapFile, "mapping-file", "m", "", "file holding the old→new mapping")
	remapCmd.Flags().StringVar(&rmpMapExpr, "mapping-expr", "", "Go template computing the new value from .x")
	remapCmd.Flags().BoolVarP(&rmpStrict, "strict", "s", false, "fail on values missing from the mapping (overrides --missing)")
	remapCmd.Flags().BoolVarP(&rmpWarn, "warn", "W", false, "log values missing from the mapping (overrides --missing)")
	remapCmd.Flags().StringVar(&rmpMissing, "missing", "ignore", "action for missing values: ignore|warn|skip|empty|fail")
	remapCmd.Flags().StringVarP(&rmpOutputPath, "output", "o", "", "write result to this file instead of stdout")
}

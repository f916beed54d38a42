package cmd

import (
	"strings"

	"github.com/KaramelBytes/swissknife/internal/indexspec"
	"github.com/KaramelBytes/swissknife/internal/table"
	"github.com/spf13/cobra"
)

// fieldsFlag parses a 1-based index specification flag. An unset flag means
// no projection; an explicitly empty one is a parse error.
func fieldsFlag(cmd *cobra.Command, name, val string) ([]int, error) {
	if !cmd.Flags().Changed(name) {
		return nil, nil
	}
	return indexspec.Parse(val)
}

// splitterFromFlags builds the input splitter shared by the table commands.
func splitterFromFlags(cmd *cobra.Command, delim, fields string, strip bool) (table.Splitter, error) {
	c := settings()
	idx, err := fieldsFlag(cmd, "fields", fields)
	if err != nil {
		return table.Splitter{}, err
	}
	if !cmd.Flags().Changed("strip") {
		strip = c.Strip
	}
	return table.Splitter{
		Delimiter: delimiter(delim, c.Delimiter),
		Strip:     strip,
		Fields:    indexspec.ZeroBased(idx),
	}, nil
}

// outputDelimiter resolves the output delimiter: flag, then config, then def.
func outputDelimiter(val, def string) string {
	return delimiter(val, delimiter(settings().OutputDelimiter, def))
}

func joinNames(names []string) string {
	return strings.Join(names, "|")
}

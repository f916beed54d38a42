package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/KaramelBytes/swissknife/internal/aggregate"
	cfgpkg "github.com/KaramelBytes/swissknife/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set swissknife configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := settings()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "delimiter: %s\n", showDelimiter(c.Delimiter))
		if c.OutputDelimiter != "" {
			fmt.Fprintf(out, "output_delimiter: %s\n", showDelimiter(c.OutputDelimiter))
		}
		fmt.Fprintf(out, "strip: %t\n", c.Strip)
		fmt.Fprintf(out, "date_format: %s\n", c.DateFormat)
		fmt.Fprintf(out, "default_function: %s\n", c.DefaultFunction)
		fmt.Fprintf(out, "default_mode: %s\n", c.DefaultMode)
		fmt.Fprintf(out, "log_level: %s\n", c.LogLevel)
		fmt.Fprintf(out, "log_format: %s\n", c.LogFormat)
		fmt.Fprintf(out, "http_timeout_sec: %d\n", c.HTTPTimeoutSec)
		fmt.Fprintf(out, "s3_endpoint: %s\n", c.S3Endpoint)
		if c.S3Region != "" {
			fmt.Fprintf(out, "s3_region: %s\n", c.S3Region)
		}
		fmt.Fprintf(out, "s3_use_ssl: %t\n", c.S3UseSSL)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		c := settings()
		switch key {
		case "delimiter":
			c.Delimiter = delimiter(val, "\t")
		case "output_delimiter":
			c.OutputDelimiter = delimiter(val, "")
		case "strip", "s3_use_ssl":
			b, err := strconv.ParseBool(val)
			if err != nil {
				return fmt.Errorf("invalid bool for %s: %v", key, val)
			}
			if key == "strip" {
				c.Strip = b
			} else {
				c.S3UseSSL = b
			}
		case "date_format":
			c.DateFormat = val
		case "default_function":
			k, err := aggregate.ParseKind(val)
			if err != nil {
				return err
			}
			c.DefaultFunction = k.String()
		case "default_mode":
			m, err := aggregate.ParseMode(val)
			if err != nil {
				return err
			}
			c.DefaultMode = m.String()
		case "log_level":
			switch strings.ToLower(val) {
			case "debug", "info", "warn", "error":
				c.LogLevel = strings.ToLower(val)
			default:
				return fmt.Errorf("invalid log_level: %s (use debug, info, warn or error)", val)
			}
		case "log_format":
			switch strings.ToLower(val) {
			case "text", "json":
				c.LogFormat = strings.ToLower(val)
			default:
				return fmt.Errorf("invalid log_format: %s (use text or json)", val)
			}
		case "http_timeout_sec":
			i, err := strconv.Atoi(val)
			if err != nil || i <= 0 {
				return fmt.Errorf("invalid int for http_timeout_sec: %v", val)
			}
			c.HTTPTimeoutSec = i
		case "s3_endpoint":
			c.S3Endpoint = val
		case "s3_region":
			c.S3Region = val
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}

func showDelimiter(d string) string {
	if d == "\t" {
		return "tab"
	}
	return strconv.Quote(d)
}

package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	cfgpkg "github.com/KaramelBytes/swissknife/internal/config"
	"github.com/KaramelBytes/swissknife/internal/logging"
	"github.com/KaramelBytes/swissknife/internal/source"
	"github.com/KaramelBytes/swissknife/internal/utils"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	debug   bool
	// Overrides for config values (applied only when set)
	flagLogLevel       string
	flagLogFormat      string
	flagHTTPTimeoutSec int

	// Loaded configuration
	cfg *cfgpkg.Global
	// Logger for the current invocation; writes to stderr
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "swissknife",
	Short: "Swiss army knife for delimited numeric tables",
	Long: `swissknife aggregates, groups, remaps and inspects delimited text tables.
Inputs may be local files, '-' for stdin, http(s):// URLs or s3:// objects,
optionally compressed (.gz, .bz2, .xz, .zst, .lz4).`,
	SilenceUsage: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Runs before every command execution, tests included
	cobra.OnInitialize(loadConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.swissknife/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: debug|info|warn|error (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "", "log format: text|json (overrides config)")
	rootCmd.PersistentFlags().IntVar(&flagHTTPTimeoutSec, "http-timeout", 0, "HTTP/FTP source timeout in seconds (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: commands fall back to built-in defaults
		fmt.Fprintf(rootCmd.ErrOrStderr(), "⚠ Warning: failed to load config: %v\n", err)
		c = cfgpkg.Defaults()
	}
	cfg = c

	f := rootCmd.PersistentFlags()
	if f.Changed("http-timeout") && flagHTTPTimeoutSec > 0 {
		cfg.HTTPTimeoutSec = flagHTTPTimeoutSec
	}
	if f.Changed("log-level") && flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}
	if f.Changed("log-format") && flagLogFormat != "" {
		cfg.LogFormat = flagLogFormat
	}
	if debug {
		cfg.LogLevel = "debug"
	}
	logger = logging.Setup(cfg.LogLevel, cfg.LogFormat, rootCmd.ErrOrStderr())
}

// settings returns the loaded config, or defaults when loading was skipped.
func settings() *cfgpkg.Global {
	if cfg == nil {
		cfg = cfgpkg.Defaults()
	}
	return cfg
}

func newOpener(cmd *cobra.Command) *source.Opener {
	c := settings()
	return source.NewOpener(source.Options{
		HTTPTimeout: time.Duration(c.HTTPTimeoutSec) * time.Second,
		S3: source.S3Options{
			Endpoint: c.S3Endpoint,
			Region:   c.S3Region,
			UseSSL:   c.S3UseSSL,
		},
		Stdin: cmd.InOrStdin(),
	})
}

// withOutput runs fn against stdout, or against path when set. The file is
// committed even when fn fails, so rows already produced are kept, as they
// are on stdout.
func withOutput(cmd *cobra.Command, path string, fn func(w io.Writer) error) error {
	if path == "" {
		return fn(cmd.OutOrStdout())
	}
	f, err := utils.CreateAtomic(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	runErr := fn(f)
	if err := f.Commit(); err != nil {
		return errors.Join(runErr, fmt.Errorf("write output: %w", err))
	}
	if runErr != nil {
		return runErr
	}
	logger.Info("output written", "path", path)
	return nil
}

// delimiter resolves a delimiter flag: "tab" is accepted for TAB and an empty
// value falls back to def.
func delimiter(val, def string) string {
	switch val {
	case "":
		return def
	case "tab", "\\t":
		return "\t"
	}
	return val
}

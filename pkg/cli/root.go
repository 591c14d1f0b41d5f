package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/getmockd/wsbind/pkg/cli/internal/flags"
	"github.com/getmockd/wsbind/pkg/config"
	"github.com/getmockd/wsbind/pkg/logging"
	"github.com/getmockd/wsbind/pkg/sample"
)

var (
	// Persistent flags available to all subcommands
	configFiles flags.StringSlice
	logLevel    string
	logFormat   string
	jsonOutput  bool

	// Version is injected during build
	Version = "dev"
	// Commit is injected during build
	Commit = "none"
	// BuildDate is injected during build
	BuildDate = "unknown"

	// implLookup resolves the impl names used in project files.
	implLookup config.ImplLookup = sample.Lookup
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "wsbind",
	Short: "wsbind assembles and serves SOAP endpoints from service metadata",
	Long: `wsbind discovers WSDL and XML Schema documents on a classpath of directories
and (nested) archives, assembles SOAP endpoints from them and serves them over HTTP.

Configuration is read from a project file. By default wsbind looks for
wsbind.yaml in the current directory, or the file named by WSBIND_CONFIG.`,
	SilenceUsage:  true,
	SilenceErrors: true, // We handle errors in Execute()
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().VarP(&configFiles, "config", "c", "Project file path (can be specified multiple times)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error), overrides the project file")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format (text, json), overrides the project file")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output command results in JSON format")
}

// loadProjectConfig loads the project file(s) named by --config, or discovers one.
func loadProjectConfig() (*config.ProjectConfig, error) {
	switch len(configFiles) {
	case 0:
		return config.LoadProjectConfig("")
	case 1:
		return config.LoadProjectConfig(configFiles[0])
	default:
		return config.LoadAndMergeProjectConfigs(configFiles)
	}
}

// newLogger builds the process logger from the project file and flags. The
// returned closer releases the log file, if one was opened.
func newLogger(cfg config.LoggingConfig, stderr io.Writer) (*slog.Logger, func() error, error) {
	level, format := cfg.Level, cfg.Format
	if logLevel != "" {
		level = logLevel
	}
	if logFormat != "" {
		format = logFormat
	}

	lc := logging.DefaultConfig()
	lc.Output = stderr
	if level != "" {
		lc.Level = logging.ParseLevel(level)
	}
	if format != "" {
		lc.Format = logging.ParseFormat(format)
	}

	closer := func() error { return nil }
	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		lc.Mirrors = append(lc.Mirrors, f)
		closer = f.Close
	}
	return logging.New(lc), closer, nil
}

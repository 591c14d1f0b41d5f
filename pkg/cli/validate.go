package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/getmockd/wsbind/pkg/cli/internal/output"
	"github.com/getmockd/wsbind/pkg/config"
	"github.com/getmockd/wsbind/pkg/logging"
)

type validateFlags struct {
	verbose      bool
	showResolved bool
	noAssemble   bool
}

var validateFlagVals validateFlags

// validateOutput is the JSON result of the validate command.
type validateOutput struct {
	Valid    bool                           `json:"valid"`
	Errors   []config.SchemaValidationError `json:"errors,omitempty"`
	Services []serviceStatus                `json:"services,omitempty"`
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a project file without serving anything",
	Long: `Validate a wsbind project file without starting the server.

This command checks:
  - YAML syntax
  - Schema validation (required fields, valid values)
  - Reference integrity (metadataFrom names a discovery set, unique names and URLs)
  - Qualified names, binding IDs and handler guard expressions
  - Endpoint assembly: every primary WSDL and metadata document resolves and
    the primary WSDL declares the configured service and port`,
	Example: `  # Validate wsbind.yaml in the current directory
  wsbind validate

  # Validate merged project files
  wsbind validate -c base.yaml -c production.yaml

  # Only check the file itself
  wsbind validate --no-assemble

  # Show resolved config with env vars expanded
  wsbind validate --show-resolved`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate(cmd.OutOrStdout(), cmd.ErrOrStderr(), &validateFlagVals)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().BoolVar(&validateFlagVals.verbose, "verbose", false, "Show detailed validation information")
	validateCmd.Flags().BoolVar(&validateFlagVals.showResolved, "show-resolved", false, "Show resolved config after env var expansion")
	validateCmd.Flags().BoolVar(&validateFlagVals.noAssemble, "no-assemble", false, "Skip endpoint assembly")
}

func runValidate(stdout, stderr io.Writer, f *validateFlags) error {
	out := validateOutput{}

	cfg, err := loadProjectConfig()
	if err != nil {
		var result *config.SchemaValidationResult
		if !errors.As(err, &result) {
			return err
		}
		out.Errors = result.Errors
		return reportValidation(stdout, out, nil)
	}

	out.Errors = config.ValidateProjectConfig(cfg).Errors
	if len(out.Errors) == 0 && !f.noAssemble {
		log := logging.Nop()
		if f.verbose {
			log, _, err = newLogger(config.LoggingConfig{Level: "debug", Format: cfg.Logging.Format}, stderr)
			if err != nil {
				return err
			}
		}
		a, err := config.Build(cfg, implLookup, log)
		if err != nil {
			out.Errors = append(out.Errors, config.SchemaValidationError{Message: err.Error()})
		} else {
			out.Services, _ = materializeAll(a)
			for _, st := range out.Services {
				if st.Error != "" {
					out.Errors = append(out.Errors, config.SchemaValidationError{Path: "services." + st.Name, Message: st.Error})
				}
			}
		}
	}

	if err := reportValidation(stdout, out, cfg); err != nil {
		return err
	}

	if f.showResolved && !jsonOutput {
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("rendering resolved config: %w", err)
		}
		fmt.Fprintln(stdout, "\nResolved configuration:")
		fmt.Fprint(stdout, string(data))
	}
	return nil
}

// reportValidation prints the result and returns ErrValidationFailed when it has errors.
func reportValidation(w io.Writer, out validateOutput, cfg *config.ProjectConfig) error {
	out.Valid = len(out.Errors) == 0

	if jsonOutput {
		if err := output.JSON(w, out); err != nil {
			return err
		}
	} else if !out.Valid {
		fmt.Fprintln(w, "Validation failed:")
		for _, e := range out.Errors {
			fmt.Fprintf(w, "  - %s\n", e.Error())
		}
	} else {
		fmt.Fprintln(w, "Configuration is valid.")
		if cfg != nil {
			printServiceSummary(w, out.Services)
		}
	}

	if !out.Valid {
		return fmt.Errorf("%w with %d error(s)", ErrValidationFailed, len(out.Errors))
	}
	return nil
}

func printServiceSummary(w io.Writer, services []serviceStatus) {
	if len(services) == 0 {
		return
	}
	fmt.Fprintln(w)
	tw := output.Table(w)
	fmt.Fprintln(tw, "NAME\tURL\tSERVICE\tPORT\tMETADATA")
	for _, st := range services {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n", st.Name, st.URL, st.Service, st.Port, st.Metadata)
	}
	_ = tw.Flush()
}

package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/getmockd/wsbind/pkg/cli/internal/flags"
	"github.com/getmockd/wsbind/pkg/cli/internal/output"
	"github.com/getmockd/wsbind/pkg/config"
	"github.com/getmockd/wsbind/pkg/descriptor"
)

type discoverFlags struct {
	classpath flags.PathList
	include   flags.StringSlice
	exclude   flags.StringSlice
	set       string
	sniff     bool
}

var discoverFlagVals discoverFlags

// discoveredDocument is one row of discover output.
type discoveredDocument struct {
	Locator         string   `json:"locator"`
	Kind            string   `json:"kind"`
	TargetNamespace string   `json:"targetNamespace,omitempty"`
	Services        []string `json:"services,omitempty"`
	Error           string   `json:"error,omitempty"`
}

var discoverCmd = &cobra.Command{
	Use:   "discover [base]",
	Short: "List the WSDL and XSD documents below a classpath base",
	Long: `Resolve base on the classpath and list every .wsdl and .xsd document below it.

The classpath comes from --classpath or, when that is not given, from the
project file. Archive entries may name nested archives: app.jar!/lib/contracts.jar.
With --set, the named discovery set of the project file is evaluated instead.`,
	Example: `  # Everything below sample/ on an explicit classpath
  wsbind discover sample --classpath ./classes --classpath ./lib/contracts.jar

  # Only schemas, skipping internal ones
  wsbind discover sample --cp app.jar --include '**/*.xsd' --exclude '**/internal/**'

  # Evaluate a discovery set from wsbind.yaml and show declared services
  wsbind discover --set contracts --sniff`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		base := ""
		if len(args) == 1 {
			base = args[0]
		}
		return runDiscover(cmd.OutOrStdout(), cmd.ErrOrStderr(), base, &discoverFlagVals)
	},
}

func init() {
	rootCmd.AddCommand(discoverCmd)
	f := &discoverFlagVals
	discoverCmd.Flags().Var(&f.classpath, "classpath", "Classpath entries, separated by the OS path-list separator (repeatable)")
	discoverCmd.Flags().Var(&f.classpath, "cp", "Classpath entry (shorthand)")
	discoverCmd.Flags().Var(&f.include, "include", "Glob a document path must match (can be specified multiple times)")
	discoverCmd.Flags().Var(&f.exclude, "exclude", "Glob excluding matching documents (can be specified multiple times)")
	discoverCmd.Flags().StringVar(&f.set, "set", "", "Evaluate a discovery set from the project file")
	discoverCmd.Flags().BoolVar(&f.sniff, "sniff", false, "Parse each document and show its target namespace and services")
}

func runDiscover(stdout, stderr io.Writer, base string, f *discoverFlags) error {
	classpath := []string(f.classpath)
	include, exclude := []string(f.include), []string(f.exclude)

	var cfg *config.ProjectConfig
	if len(classpath) == 0 || f.set != "" {
		var err error
		cfg, err = loadProjectConfig()
		if err != nil {
			return err
		}
		if len(classpath) == 0 {
			classpath = cfg.Classpath
		}
	}

	if f.set != "" {
		set, ok := findDiscoverySet(cfg, f.set)
		if !ok {
			return fmt.Errorf("unknown discovery set %q", f.set)
		}
		base = set.Base
		include = append(append([]string{}, set.Include...), include...)
		exclude = append(append([]string{}, set.Exclude...), exclude...)
	}
	if base == "" {
		return errors.New("a base path or --set is required")
	}
	if len(classpath) == 0 {
		return errors.New("the classpath is empty")
	}

	var loggingCfg config.LoggingConfig
	if cfg != nil {
		loggingCfg = cfg.Logging
	}
	log, closeLog, err := newLogger(loggingCfg, stderr)
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()

	d := &descriptor.Discoverer{Logger: log}
	res, err := d.Discover(base, descriptor.NewClasspath(classpath...)).Filter(include, exclude)
	if err != nil {
		return err
	}

	rows := make([]discoveredDocument, 0, len(res))
	for _, doc := range res.Documents() {
		rows = append(rows, describeDocument(doc, f.sniff))
	}

	if jsonOutput {
		return output.JSON(stdout, rows)
	}
	if len(rows) == 0 {
		fmt.Fprintf(stdout, "No documents found below %s\n", base)
		return nil
	}

	tw := output.Table(stdout)
	if f.sniff {
		fmt.Fprintln(tw, "KIND\tLOCATOR\tNAMESPACE\tSERVICES")
	} else {
		fmt.Fprintln(tw, "KIND\tLOCATOR")
	}
	for _, r := range rows {
		if f.sniff {
			detail := fmt.Sprint(r.Services)
			if r.Error != "" {
				detail = "error: " + r.Error
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Kind, r.Locator, r.TargetNamespace, detail)
		} else {
			fmt.Fprintf(tw, "%s\t%s\n", r.Kind, r.Locator)
		}
	}
	return tw.Flush()
}

func findDiscoverySet(cfg *config.ProjectConfig, name string) (config.DiscoverySet, bool) {
	for _, set := range cfg.Discovery {
		if set.Name == name {
			return set, true
		}
	}
	return config.DiscoverySet{}, false
}

func describeDocument(doc *descriptor.Document, sniff bool) discoveredDocument {
	row := discoveredDocument{Locator: doc.String(), Kind: string(doc.Kind())}
	if !sniff {
		return row
	}
	meta, err := descriptor.Sniff(doc)
	if err != nil {
		row.Error = err.Error()
		return row
	}
	row.TargetNamespace = meta.TargetNamespace
	for _, svc := range meta.Services {
		for _, port := range svc.Ports {
			row.Services = append(row.Services, svc.Name+"/"+port.Name)
		}
	}
	return row
}

package cli

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"sort"

	"github.com/spf13/cobra"

	"github.com/getmockd/wsbind/pkg/cli/internal/output"
)

// VersionOutput is the version report.
type VersionOutput struct {
	Version string          `json:"version"`
	Commit  string          `json:"commit"`
	Date    string          `json:"date"`
	Go      string          `json:"go"`
	OS      string          `json:"os"`
	Arch    string          `json:"arch"`
	Modules []ModuleVersion `json:"modules,omitempty"`
}

// ModuleVersion is one dependency compiled into the binary.
type ModuleVersion struct {
	Path    string `json:"path"`
	Version string `json:"version"`
}

var showModules bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show wsbind version information",
	Example: `  wsbind version
  wsbind version --modules --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := buildVersion(showModules)
		if jsonOutput {
			return output.JSON(cmd.OutOrStdout(), out)
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "wsbind %s (%s, %s)\n", out.Version, out.Commit, out.Date)
		fmt.Fprintf(w, "  %s %s/%s\n", out.Go, out.OS, out.Arch)
		if showModules {
			tw := output.Table(w)
			for _, m := range out.Modules {
				fmt.Fprintf(tw, "  %s\t%s\n", m.Path, m.Version)
			}
			return tw.Flush()
		}
		return nil
	},
}

func init() {
	versionCmd.Flags().BoolVar(&showModules, "modules", false, "Also list the dependency modules compiled in")
	rootCmd.AddCommand(versionCmd)
}

// buildVersion fills unset link-time values from the embedded build info.
func buildVersion(withModules bool) VersionOutput {
	out := VersionOutput{
		Version: Version,
		Commit:  Commit,
		Date:    BuildDate,
		Go:      runtime.Version(),
		OS:      runtime.GOOS,
		Arch:    runtime.GOARCH,
	}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return out
	}
	if out.Version == "dev" && info.Main.Version != "" && info.Main.Version != "(devel)" {
		out.Version = info.Main.Version
	}
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			if out.Commit == "none" {
				out.Commit = setting.Value
			}
		case "vcs.time":
			if out.Date == "unknown" {
				out.Date = setting.Value
			}
		case "vcs.modified":
			if setting.Value == "true" {
				out.Commit += "-dirty"
			}
		}
	}

	if withModules {
		for _, dep := range info.Deps {
			m := dep
			if dep.Replace != nil {
				m = dep.Replace
			}
			out.Modules = append(out.Modules, ModuleVersion{Path: dep.Path, Version: m.Version})
		}
		sort.Slice(out.Modules, func(i, j int) bool { return out.Modules[i].Path < out.Modules[j].Path })
	}
	return out
}

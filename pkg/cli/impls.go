package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/getmockd/wsbind/pkg/cli/internal/output"
	"github.com/getmockd/wsbind/pkg/endpoint"
	"github.com/getmockd/wsbind/pkg/sample"
)

// implInfo describes a registered implementation.
type implInfo struct {
	Name       string   `json:"name"`
	Impl       string   `json:"impl"`
	Service    string   `json:"service,omitempty"`
	Port       string   `json:"port,omitempty"`
	Operations []string `json:"operations"`
}

var implsCmd = &cobra.Command{
	Use:   "impls",
	Short: "List the service implementations project files can refer to",
	RunE: func(cmd *cobra.Command, args []string) error {
		var infos []implInfo
		for _, name := range sample.Names() {
			bean, ok := implLookup(name)
			if !ok {
				continue
			}
			impl := bean.Impl()
			info := implInfo{Name: name, Impl: impl.Name}
			if !impl.ServiceName.IsZero() {
				info.Service = impl.ServiceName.String()
			}
			if !impl.PortName.IsZero() {
				info.Port = impl.PortName.String()
			}
			info.Operations = endpoint.NewTableInvoker(impl.Operations).Operations()
			infos = append(infos, info)
		}

		if jsonOutput {
			return output.JSON(cmd.OutOrStdout(), infos)
		}

		tw := output.Table(cmd.OutOrStdout())
		fmt.Fprintln(tw, "NAME\tIMPL\tPORT\tOPERATIONS")
		for _, info := range infos {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%v\n", info.Name, info.Impl, info.Port, info.Operations)
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(implsCmd)
}

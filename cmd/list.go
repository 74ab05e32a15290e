package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/xkilldash9x/kpiprobe/internal/scenario"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Lists the available scenarios",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := configFrom(cmd.Context())
			if err != nil {
				return err
			}
			data, err := scenario.LoadData(cfg.Scenario().DataFile)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			prefix := cfg.Target().TitlePrefix()
			for _, sc := range scenario.Registry(data) {
				fmt.Fprintf(w, "%s\t%s %s\n", sc.Name, prefix, sc.Title)
			}
			return w.Flush()
		},
	}
}

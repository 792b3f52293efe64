package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/snipecord/internal/adapter/driven/soc"
	"github.com/ericfisherdev/snipecord/internal/application"
)

type labelRow struct {
	Index string `json:"index"`
	Label string `json:"label"`
	Found bool   `json:"found"`
}

// newLabelsCmd prints the display label every configured index resolves to,
// without sending anything. Useful for checking a config before a semester.
func newLabelsCmd(configPath *string) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "labels",
		Short: "Resolve and print the display label of every configured index",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig(*configPath, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			labels, err := application.LoadLabels(cmd.Context(), soc.NewClient(cfg.SOCBaseURL), cfg.Query(), cfg.Indexes, logger)
			if err != nil {
				return err
			}

			rows := make([]labelRow, 0, len(cfg.Indexes))
			for _, index := range cfg.Indexes {
				label := labels[index]
				rows = append(rows, labelRow{
					Index: index,
					Label: label,
					Found: label != application.UnknownLabel(index),
				})
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(rows)
			}

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "INDEX\tLABEL")
			for _, r := range rows {
				fmt.Fprintf(tw, "%s\t%s\n", r.Index, r.Label)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")

	return cmd
}

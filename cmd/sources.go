package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/leadfinder/internal/config"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List configured lead sources",
	RunE: func(cmd *cobra.Command, _ []string) error {
		formatSources(cmd.OutOrStdout(), cfg.Sources)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
}

func formatSources(out io.Writer, sources []config.SourceConfig) {
	if len(sources) == 0 {
		_, _ = fmt.Fprintln(out, "no sources configured")
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tKIND\tTARGET")
	_, _ = fmt.Fprintln(w, "--\t----\t------")
	for _, s := range sources {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", s.ID, s.Kind, s.Target())
	}
	_ = w.Flush()
}

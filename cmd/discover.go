package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/leadfinder/internal/discovery"
	"github.com/sells-group/leadfinder/internal/model"
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Discover and rank leads from all configured sources",
	Long:  "Fetches candidates from every configured source concurrently, merges duplicates and prints the top leads for the given keywords and industries.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		keywords, _ := cmd.Flags().GetStringSlice("keyword")
		industries, _ := cmd.Flags().GetStringSlice("industry")
		format, _ := cmd.Flags().GetString("format")

		if format != "table" && format != "json" {
			return eris.Errorf("discover: unknown format %q (want table or json)", format)
		}

		limit := cfg.Discovery.Limit
		if cmd.Flags().Changed("limit") {
			limit, _ = cmd.Flags().GetInt("limit")
		}
		timeout, _ := cmd.Flags().GetDuration("timeout")
		if timeout < 0 {
			return eris.Errorf("discover: --timeout must be positive, got %s", timeout)
		}
		if cmd.Flags().Changed("min-score") {
			cfg.Discovery.MinScore, _ = cmd.Flags().GetFloat64("min-score")
		}

		engine, err := newEngine(cfg, timeout)
		if err != nil {
			return err
		}

		res, err := engine.Discover(ctx, model.Preferences{
			HighValueKeywords:   keywords,
			PreferredIndustries: industries,
		}, limit)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if format == "json" {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return eris.Wrap(enc.Encode(res), "discover: encode result")
		}

		formatLeads(out, res.Leads)
		formatSourceFailures(cmd.ErrOrStderr(), res.Sources)
		return nil
	},
}

func init() {
	f := discoverCmd.Flags()
	f.StringSlice("keyword", nil, "high-value keyword (repeatable)")
	f.StringSlice("industry", nil, "preferred industry (repeatable)")
	f.Int("limit", 0, "maximum leads to return (default from config)")
	f.Duration("timeout", 0, "per-source timeout (default from config)")
	f.Float64("min-score", 0, "drop leads scoring below this value")
	f.String("format", "table", "output format: table or json")
	rootCmd.AddCommand(discoverCmd)
}

func formatLeads(out io.Writer, leads []model.Lead) {
	if len(leads) == 0 {
		_, _ = fmt.Fprintln(out, "no leads found")
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "#\tSCORE\tCOMPANY\tWEBSITE\tINDUSTRY\tSOURCES\tREASONS")
	_, _ = fmt.Fprintln(w, "-\t-----\t-------\t-------\t--------\t-------\t-------")

	for i, l := range leads {
		_, _ = fmt.Fprintf(w, "%d\t%.4f\t%s\t%s\t%s\t%s\t%s\n",
			i+1,
			l.MatchScore,
			truncate(l.CompanyName, 40),
			l.Website,
			l.Industry,
			strings.Join(l.DataSources, ","),
			truncate(strings.Join(l.MatchReasons, "; "), 80),
		)
	}
	_ = w.Flush()
}

func formatSourceFailures(out io.Writer, sources []discovery.SourceReport) {
	for _, s := range sources {
		if s.Error == "" {
			continue
		}
		status := "failed"
		if s.TimedOut {
			status = "timed out"
		}
		_, _ = fmt.Fprintf(out, "source %s %s: %s\n", s.ID, status, s.Error)
	}
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		return string(r[:n-3]) + "..."
	}
	return s
}

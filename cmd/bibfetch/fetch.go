package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/bibfetch/internal/biblatex"
	"github.com/pdiddy/bibfetch/internal/httputil"
	"github.com/pdiddy/bibfetch/internal/metadata"
	"github.com/pdiddy/bibfetch/internal/pipeline"
	"github.com/pdiddy/bibfetch/internal/resolve"
	"github.com/pdiddy/bibfetch/pkg/types"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [identifiers...]",
	Short: "Resolve identifiers and print BibLaTeX records",
	Long: `Fetch resolves each identifier (DOI, arXiv ID, USENIX presentation URL,
or webpage URL) into a BibLaTeX record. Records go to stdout in input
order; failures and the summary line go to stderr. Individual failures do
not change the exit status.`,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().Duration("timeout", 0, "HTTP request timeout (default 15s)")
	fetchCmd.Flags().Int("concurrency", 0, "max identifiers resolved in parallel (default unbounded)")
	fetchCmd.Flags().Float64("rate", 0, "per-host requests per second (default 4)")
	fetchCmd.Flags().String("user-agent", "", "User-Agent header for HTTP requests")
	fetchCmd.Flags().String("metadata-dir", "", "write a YAML sidecar per resolved record into this directory")

	rootCmd.AddCommand(fetchCmd)
}

// fetchConfig assembles the effective settings: an explicitly set flag wins,
// then the config file or environment, then the built-in default.
func fetchConfig(cmd *cobra.Command) types.FetchConfig {
	cfg := types.FetchConfig{}
	cfg.Timeout = viper.GetDuration("timeout")
	cfg.UserAgent = viper.GetString("user_agent")
	cfg.Concurrency = viper.GetInt("concurrency")
	cfg.RequestsPerSecond = viper.GetFloat64("requests_per_second")
	cfg.MetadataDir = viper.GetString("metadata_dir")

	if cmd.Flags().Changed("timeout") {
		cfg.Timeout, _ = cmd.Flags().GetDuration("timeout")
	}
	if cmd.Flags().Changed("concurrency") {
		cfg.Concurrency, _ = cmd.Flags().GetInt("concurrency")
	}
	if cmd.Flags().Changed("rate") {
		cfg.RequestsPerSecond, _ = cmd.Flags().GetFloat64("rate")
	}
	if cmd.Flags().Changed("user-agent") {
		cfg.UserAgent, _ = cmd.Flags().GetString("user-agent")
	}
	if cmd.Flags().Changed("metadata-dir") {
		cfg.MetadataDir, _ = cmd.Flags().GetString("metadata-dir")
	}

	if cfg.Timeout == 0 {
		cfg.Timeout = httputil.DefaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = httputil.DefaultUserAgent
	}
	if cfg.RequestsPerSecond == 0 {
		cfg.RequestsPerSecond = httputil.DefaultRequestsPerSecond
	}
	return cfg
}

func runFetch(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide one or more identifiers (DOIs, arXiv IDs, or URLs)")
	}

	cfg := fetchConfig(cmd)
	client := httputil.NewClient(
		httputil.WithTimeout(cfg.Timeout),
		httputil.WithUserAgent(cfg.UserAgent),
		httputil.WithRateLimit(cfg.RequestsPerSecond),
	)

	results, summary := pipeline.Run(cmd.Context(), args, resolve.NewRegistry(), client, pipeline.Options{
		Concurrency: cfg.Concurrency,
	})

	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", r.Identifier, r.Err)
			continue
		}
		fmt.Fprintln(os.Stdout, r.Record)
		if cfg.MetadataDir != "" {
			if err := writeSidecar(cfg.MetadataDir, r.Record); err != nil {
				fmt.Fprintf(os.Stderr, "warning: metadata for %s: %v\n", r.Identifier, err)
			}
		}
	}

	fmt.Fprintf(os.Stderr, "✓ %d ✗ %d total %d elapsed %s\n",
		summary.OK, summary.Failed, len(results), summary.Elapsed.Round(time.Millisecond))
	return nil
}

// writeSidecar re-parses the serialized record to get the entry back. The
// pipeline already validated the round trip, so a parse failure here means
// the record was mutated in between.
func writeSidecar(dir, record string) error {
	entry, err := biblatex.ParseFirst(record)
	if err != nil {
		return err
	}
	_, err = metadata.Write(dir, entry)
	return err
}

// Package cli implements the beantrace command line interface: lineage
// queries run straight against a ledger database or CSV export, without
// a server in between.
package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"beantrace/internal/sink"
)

var (
	version = "dev"
	commit  = "none"
)

// Execute runs the CLI.
func Execute() int {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		output, _ := rootCmd.PersistentFlags().GetString("output")
		if output == "json" {
			_ = sink.Encode(os.Stdout, map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

// rootFlags holds the persistent flags shared by every subcommand.
type rootFlags struct {
	sqlitePath string
	duckdbPath string
	csvDir     string
	mapping    string
	maxDepth   int
	output     string
	outFile    string
}

func newRootCmd() *cobra.Command {
	f := &rootFlags{}

	rootCmd := &cobra.Command{
		Use:   "beantrace",
		Short: "Trace production lot lineage through the roastery ledger",
		Long: `beantrace builds a lineage index from an item ledger and answers
upstream and downstream questions about production lots: which green
coffee went into a roast, where a blend ended up, which lots fulfilled
a sale contract.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Apply precedence: flag > env > default.
			if !cmd.Flags().Changed("sqlite") {
				if v := os.Getenv("BEANTRACE_SQLITE"); v != "" {
					f.sqlitePath = v
				}
			}
			if !cmd.Flags().Changed("duckdb") {
				if v := os.Getenv("BEANTRACE_DUCKDB"); v != "" {
					f.duckdbPath = v
				}
			}
			if !cmd.Flags().Changed("csv-dir") {
				if v := os.Getenv("BEANTRACE_CSV_DIR"); v != "" {
					f.csvDir = v
				}
			}
			if !cmd.Flags().Changed("mapping") {
				if v := os.Getenv("BEANTRACE_MAPPING"); v != "" {
					f.mapping = v
				}
			}
			if !cmd.Flags().Changed("output") {
				if v := os.Getenv("BEANTRACE_OUTPUT"); v != "" {
					f.output = v
				}
			}
			if !cmd.Flags().Changed("max-depth") {
				if v := os.Getenv("BEANTRACE_MAX_DEPTH"); v != "" {
					n, err := strconv.Atoi(v)
					if err != nil {
						return fmt.Errorf("BEANTRACE_MAX_DEPTH: %q is not a number", v)
					}
					f.maxDepth = n
				}
			}

			if err := validateOutputFormat(f.output); err != nil {
				return err
			}
			if cmd.Flags().Changed("sqlite") && (f.duckdbPath != "" || f.csvDir != "") {
				return fmt.Errorf("--sqlite cannot be combined with --duckdb or --csv-dir")
			}
			if f.maxDepth < 1 {
				return fmt.Errorf("--max-depth must be at least 1, got %d", f.maxDepth)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&f.sqlitePath, "sqlite", "beantrace.sqlite", "SQLite ledger database path")
	rootCmd.PersistentFlags().StringVar(&f.duckdbPath, "duckdb", "", "DuckDB database path (selects the DuckDB source)")
	rootCmd.PersistentFlags().StringVar(&f.csvDir, "csv-dir", "", "Directory of CSV table exports (selects the DuckDB source)")
	rootCmd.PersistentFlags().StringVar(&f.mapping, "mapping", "", "YAML source mapping file")
	rootCmd.PersistentFlags().IntVar(&f.maxDepth, "max-depth", 10, "Traversal depth bound")
	rootCmd.PersistentFlags().StringVarP(&f.output, "output", "o", "table", "Output format (table, json)")
	rootCmd.PersistentFlags().StringVar(&f.outFile, "out", "", "Write the result to a JSON file instead of stdout")

	rootCmd.AddCommand(newTraceCmd(f))
	rootCmd.AddCommand(newBatchCmd(f))
	rootCmd.AddCommand(newResolveCmd(f))
	rootCmd.AddCommand(newReportCmd(f))
	rootCmd.AddCommand(newStatsCmd(f))
	rootCmd.AddCommand(newTablesCmd(f))
	rootCmd.AddCommand(newCommandsCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

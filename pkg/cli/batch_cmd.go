package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"beantrace/internal/domain"
	"beantrace/internal/sink"
)

func newBatchCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "batch <lot>...",
		Short: "Trace several lots against one index build",
		Long: `Batch indexes the ledger once and traces every given lot against that
snapshot, which is much cheaper than one trace invocation per lot.`,
		Example: `  beantrace batch ROAST-1234 ROAST-1235 ROAST-1236

  # Export all traces to a file
  beantrace batch ROAST-1234 ROAST-1235 --out traces.json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(cmd, f, args)
		},
	}
}

func runBatch(cmd *cobra.Command, f *rootFlags, lots []string) error {
	svc, cleanup, err := f.openService(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()

	// Progress goes to the terminal only; piped stderr stays clean.
	var progress func(done, total int)
	if term.IsTerminal(int(os.Stderr.Fd())) {
		progress = func(done, total int) {
			if done%10 == 0 || done == total {
				fmt.Fprintf(cmd.ErrOrStderr(), "traced %d/%d lots\n", done, total)
			}
		}
	}

	result, err := svc.TraceBatch(cmd.Context(), lots, f.maxDepth, progress)
	if err != nil {
		return err
	}

	if f.outFile != "" {
		if err := sink.WriteFile(f.outFile, result); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", f.outFile)
		return nil
	}
	if getOutputFormat(cmd) == "json" {
		return sink.Encode(cmd.OutOrStdout(), result)
	}
	printBatchResult(cmd.OutOrStdout(), result)
	return nil
}

func printBatchResult(w io.Writer, result *domain.BatchTraceResult) {
	fmt.Fprintf(w, "%d lots traced\n\n", result.Requested)

	columns := []string{"lot", "related lots", "note"}
	rows := make([][]string, 0, len(result.Results))
	for i := range result.Results {
		r := &result.Results[i]
		note := ""
		if r.Tree != nil && r.Tree.HasProcessType(domain.ProcessNotFound) {
			note = "not found"
		}
		rows = append(rows, []string{
			r.QueriedLot,
			strconv.Itoa(r.TotalNodesTraced - 1),
			note,
		})
	}
	printTable(w, columns, rows)
}

package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"beantrace/internal/domain"
	"beantrace/internal/sink"
)

func newTraceCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "trace <lot>",
		Short: "Trace the full lineage of a production lot",
		Long: `Trace walks the lineage of one lot in both directions: upstream to the
purchased lots it was made from, downstream to everything made from it.`,
		Example: `  # Both directions from a roast lot
  beantrace trace ROAST-1234

  # Deeper traversal, JSON for scripts
  beantrace trace GREEN-077 --max-depth 15 --output json

  # Export the trace to a file
  beantrace trace ROAST-1234 --out roast-1234.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(cmd, f, args[0])
		},
	}
}

func runTrace(cmd *cobra.Command, f *rootFlags, lot string) error {
	svc, cleanup, err := f.openService(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()

	result, err := svc.Trace(cmd.Context(), lot, f.maxDepth)
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
	printTraceResult(cmd.OutOrStdout(), result)
	return nil
}

// printTraceResult renders the lineage tree as indented table rows, the
// queried lot first, each child carrying the relation that linked it.
func printTraceResult(w io.Writer, result *domain.TraceResult) {
	fmt.Fprintf(w, "%s: %d lots traced (depth limit %d)\n\n",
		result.QueriedLot, result.TotalNodesTraced, result.MaxDepth)

	columns := []string{"lot", "depth", "relation", "processes", "note"}
	var rows [][]string
	result.Tree.Walk(func(n *domain.LineageNode) {
		rows = append(rows, []string{
			strings.Repeat("  ", n.Depth) + n.LotNo,
			strconv.Itoa(n.Depth),
			relationCell(n),
			processCell(n),
			noteCell(n),
		})
	})
	printTable(w, columns, rows)
}

func relationCell(n *domain.LineageNode) string {
	if n.Relation == "" {
		return "-"
	}
	return string(n.Relation)
}

func processCell(n *domain.LineageNode) string {
	if len(n.ProcessTypes) == 0 {
		return "-"
	}
	parts := make([]string, len(n.ProcessTypes))
	for i, pt := range n.ProcessTypes {
		parts[i] = string(pt)
	}
	return strings.Join(parts, ", ")
}

func noteCell(n *domain.LineageNode) string {
	switch {
	case n.Warning != "":
		return string(n.Warning)
	case n.IsOrigin:
		return "origin"
	default:
		return ""
	}
}

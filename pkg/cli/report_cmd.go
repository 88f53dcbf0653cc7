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

func newReportCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "report <contract>",
		Short: "Build the full lineage report for a sale contract",
		Long: `Report resolves the contract to its consumption lots and traces every
one of them, producing the export envelope customers and auditors get.`,
		Example: `  beantrace report SC-2023-0042 --out report.json
  beantrace report SC-2023-0042 --output json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(cmd, f, args[0])
		},
	}
}

func runReport(cmd *cobra.Command, f *rootFlags, contract string) error {
	svc, cleanup, err := f.openService(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()

	report, err := svc.ContractReport(cmd.Context(), contract, f.maxDepth)
	if err != nil {
		return err
	}

	if f.outFile != "" {
		if err := sink.WriteFile(f.outFile, report); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", f.outFile)
		return nil
	}
	if getOutputFormat(cmd) == "json" {
		return sink.Encode(cmd.OutOrStdout(), report)
	}
	printReport(cmd.OutOrStdout(), report)
	return nil
}

func printReport(w io.Writer, report *domain.ContractReport) {
	printDetail(w, map[string]string{
		"sale contract":    report.SaleContract,
		"export id":        report.ExportID,
		"generated":        report.TraceTimestamp.Format("2006-01-02 15:04:05 MST"),
		"consumption lots": strconv.Itoa(report.Summary.ConsumptionLotsFound),
		"lots traced":      strconv.Itoa(report.Summary.TotalRelatedLotsTraced),
		"average per lot":  strconv.FormatFloat(report.Summary.AverageDepth, 'f', 1, 64),
		"depth limit":      strconv.Itoa(report.Summary.MaxDepthUsed),
	})

	fmt.Fprintln(w)
	columns := []string{"consumption lot", "related lots", "origins"}
	rows := make([][]string, 0, len(report.LineageTraces))
	for i := range report.LineageTraces {
		tr := &report.LineageTraces[i]
		rows = append(rows, []string{
			tr.QueriedLot,
			strconv.Itoa(tr.TotalNodesTraced - 1),
			strings.Join(originLots(tr.Tree), ", "),
		})
	}
	printTable(w, columns, rows)
}

// originLots collects the purchased lots at the upstream edge of a trace.
func originLots(tree *domain.LineageNode) []string {
	var origins []string
	if tree == nil {
		return origins
	}
	tree.Walk(func(n *domain.LineageNode) {
		if n.IsOrigin {
			origins = append(origins, n.LotNo)
		}
	})
	return origins
}

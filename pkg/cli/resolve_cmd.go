package cli

import (
	"github.com/spf13/cobra"

	"beantrace/internal/sink"
)

func newResolveCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <contract>",
		Short: "Resolve a sale contract to its consumption lots",
		Long: `Resolve follows the sale bookkeeping chain from a contract number to
the lots consumed by the production orders that fulfilled it.`,
		Example: `  beantrace resolve SC-2023-0042
  beantrace resolve SC-2023-0042 --output json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd, f, args[0])
		},
	}
}

func runResolve(cmd *cobra.Command, f *rootFlags, contract string) error {
	svc, cleanup, err := f.openService(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()

	lots, err := svc.ResolveContract(cmd.Context(), contract)
	if err != nil {
		return err
	}

	if getOutputFormat(cmd) == "json" {
		return sink.Encode(cmd.OutOrStdout(), map[string]interface{}{
			"sale_contract": contract,
			"lots":          lots,
			"count":         len(lots),
		})
	}

	rows := make([][]string, len(lots))
	for i, lot := range lots {
		rows[i] = []string{lot}
	}
	printTable(cmd.OutOrStdout(), []string{"lot"}, rows)
	return nil
}

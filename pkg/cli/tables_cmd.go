package cli

import (
	"github.com/spf13/cobra"

	"beantrace/internal/sink"
)

func newTablesCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "tables",
		Short:   "List the tables visible in the data source",
		Example: `  beantrace tables --sqlite ledger.sqlite`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTables(cmd, f)
		},
	}
}

func runTables(cmd *cobra.Command, f *rootFlags) error {
	svc, cleanup, err := f.openService(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()

	tables, err := svc.Tables(cmd.Context())
	if err != nil {
		return err
	}

	if getOutputFormat(cmd) == "json" {
		return sink.Encode(cmd.OutOrStdout(), map[string]any{
			"tables": tables,
			"count":  len(tables),
		})
	}

	rows := make([][]string, len(tables))
	for i, tbl := range tables {
		rows[i] = []string{tbl}
	}
	printTable(cmd.OutOrStdout(), []string{"table"}, rows)
	return nil
}

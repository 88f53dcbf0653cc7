package cli

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"beantrace/internal/sink"
)

func newStatsCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "stats <lot>",
		Short:   "Show ledger statistics for one lot",
		Example: `  beantrace stats ROAST-1234`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(cmd, f, args[0])
		},
	}
}

func runStats(cmd *cobra.Command, f *rootFlags, lot string) error {
	svc, cleanup, err := f.openService(cmd.Context())
	if err != nil {
		return err
	}
	defer cleanup()

	stats, err := svc.LotStats(cmd.Context(), lot)
	if err != nil {
		return err
	}

	if getOutputFormat(cmd) == "json" {
		return sink.Encode(cmd.OutOrStdout(), stats)
	}

	types := make([]string, len(stats.ProcessTypes))
	for i, pt := range stats.ProcessTypes {
		types[i] = string(pt)
	}
	printDetail(cmd.OutOrStdout(), map[string]string{
		"lot":            stats.LotNo,
		"records":        strconv.Itoa(stats.TotalRecords),
		"total quantity": strconv.FormatFloat(stats.TotalQuantity, 'f', -1, 64),
		"process types":  strings.Join(types, ", "),
		"posting dates":  strings.Join(stats.PostingDates, ", "),
		"units":          strings.Join(stats.Units, ", "),
	})
	return nil
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"beantrace/internal/sink"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the CLI version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if getOutputFormat(cmd) == "json" {
				return sink.Encode(cmd.OutOrStdout(), map[string]string{
					"version": version,
					"commit":  commit,
				})
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "beantrace version %s (commit: %s)\n", version, commit)
			return nil
		},
	}
}

package cli

import (
	"github.com/spf13/cobra"
)

type reconcileResult struct {
	Drifted int `json:"drifted"`
}

func newReconcileCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Recompute every cached balance from the ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withBackend(cmd, opts, func(b *Backend) error {
				drifted, err := b.Ledger.ReconcileAll(cmd.Context())
				if err != nil {
					return err
				}
				return render(cmd.OutOrStdout(), opts.Output, reconcileResult{Drifted: drifted})
			})
		},
	}
}

package cli

import (
	"github.com/spf13/cobra"

	"stacked.dev/stacked/internal/actions/up"
	"stacked.dev/stacked/internal/cli/common"
	"stacked.dev/stacked/internal/runtime"
)

// newUpCmd creates the up command
func newUpCmd(factory runtime.Factory) *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Rebase the stack onto the main branch and abandon changes that became empty",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return common.Run(cmd, factory, runtime.Options{}, func(ctx *runtime.Context) error {
				_, err := up.Action(ctx)
				return err
			})
		},
	}
}

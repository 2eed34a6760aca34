package cli

import (
	"github.com/spf13/cobra"

	"stacked.dev/stacked/internal/actions/push"
	"stacked.dev/stacked/internal/cli/common"
	"stacked.dev/stacked/internal/runtime"
)

// newPushCmd creates the push command
func newPushCmd(factory runtime.Factory) *cobra.Command {
	var tip string

	cmd := &cobra.Command{
		Use:   "push <prefix>",
		Short: "Create or update a bookmark and pull request for every change in the stack",
		Long: `Create or update a bookmark and pull request for every change between the
main branch and the working copy (or --tip).

New bookmarks are named <prefix><position>, starting at 1 for the oldest change.
Changes that already carry a bookmark keep it. Each pull request is based on the
previous change's bookmark, and every body ends with an index of the stack.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return common.Run(cmd, factory, runtime.Options{NeedHost: true}, func(ctx *runtime.Context) error {
				_, err := push.Action(ctx, push.Options{
					Prefix: args[0],
					Tip:    tip,
				})
				return err
			})
		},
	}

	cmd.Flags().StringVarP(&tip, "tip", "t", "", "Newest revision of the stack (defaults to the working copy)")

	return cmd
}

package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"stacked.dev/stacked/internal/actions/merge"
	"stacked.dev/stacked/internal/cli/common"
	stackederrors "stacked.dev/stacked/internal/errors"
	"stacked.dev/stacked/internal/runtime"
	"stacked.dev/stacked/internal/tui"
)

// newMergeCmd creates the merge command
func newMergeCmd(factory runtime.Factory) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "merge <bookmark>",
		Short: "Squash-merge the pull requests from the bottom of the stack up to a bookmark",
		Long: `Squash-merge the pull requests from the bottom of the stack up to (and including)
the given bookmark.

After every merge the stack is fetched, rebased onto the main branch and pushed,
and the next pull request is re-targeted so it can be merged. Once the target is
merged, the pull requests left above it are chained onto the main branch again.
Re-running after a failure picks up where the last run stopped.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return common.Run(cmd, factory, runtime.Options{NeedHost: true}, func(ctx *runtime.Context) error {
				err := merge.Action(ctx, merge.Options{
					Target: args[0],
					Yes:    yes,
				})
				var notInStack *stackederrors.TargetNotInStackError
				if errors.As(err, &notInStack) {
					ctx.Splog.Info("Bookmark %s not found in stack", tui.ColorBookmark(notInStack.Target))
					return nil
				}
				return err
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation prompt")

	return cmd
}

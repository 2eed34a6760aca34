// Package merge retires a stack bottom-up: PRs are squash-merged in stack
// order up to a target bookmark, and after every merge the local stack is
// rebased and the remaining PRs are re-pointed so each is based on its
// predecessor, or on the main branch for the first.
package merge

import (
	"errors"
	"fmt"

	stackederrors "stacked.dev/stacked/internal/errors"
	"stacked.dev/stacked/internal/runtime"
)

// ErrTargetRequired is returned when no target bookmark is given
var ErrTargetRequired = errors.New("a target bookmark is required")

// Options contains options for the merge command
type Options struct {
	// Target is the last bookmark to merge
	Target string
	// Yes skips the confirmation prompt
	Yes bool
}

// Action performs the merge operation using the plan/execute pattern
func Action(ctx *runtime.Context, opts Options) error {
	if opts.Target == "" {
		return ErrTargetRequired
	}
	splog := ctx.Splog
	resolver := ctx.Resolver()

	plan, err := CreatePlan(ctx.Context, resolver, ctx.Host, ctx.Config.MainBranch, opts.Target)
	if err != nil {
		return err
	}
	if len(plan.Bookmarks) == 0 {
		splog.Info("Nothing to merge: no bookmarks between %s and the working copy", ctx.Config.MainBranch)
		return nil
	}

	splog.Page(FormatPlan(plan))
	splog.Newline()

	toMerge := plan.ToMerge()
	if len(toMerge) > 0 && !opts.Yes {
		confirmed, err := ctx.Prompter.Confirm(fmt.Sprintf("Merge %d pull request(s) into %s?", len(toMerge), ctx.Config.MainBranch), false)
		if errors.Is(err, stackederrors.ErrInteractiveDisabled) {
			return fmt.Errorf("%w; pass --yes to merge without confirmation", err)
		}
		if err != nil {
			return fmt.Errorf("confirmation canceled: %w", err)
		}
		if !confirmed {
			splog.Info("Merge canceled")
			return nil
		}
	}

	if err := NewExecutor(ctx.Revisions, ctx.Host, resolver, splog).Execute(ctx.Context, plan); err != nil {
		splog.Tip("Fix the problem and re-run merge; PRs that are already merged are skipped")
		return fmt.Errorf("merge execution failed: %w", err)
	}

	if len(toMerge) == 0 {
		splog.Info("Everything up to %s was already merged", opts.Target)
	} else {
		splog.Info("Merged %d pull request(s) up to %s", len(toMerge), opts.Target)
	}
	return nil
}

// Package up brings a stack up to date with the main branch and offers to
// abandon the changes that became empty along the way.
package up

import (
	"fmt"

	"stacked.dev/stacked/internal/runtime"
	"stacked.dev/stacked/internal/tui"
)

// shortIDLength is how much of a change id the abandon prompt shows
const shortIDLength = 5

// Result contains the result of an up operation
type Result struct {
	// Abandoned lists the change ids abandoned, in prompt order
	Abandoned []string
	// Aborted is set when the user declined an abandon prompt
	Aborted bool
}

// Action fetches, rebases the stack onto the main branch and shows the log.
// Each change left empty by the rebase is offered for abandonment; the first
// answer other than yes stops the loop without undoing earlier abandons.
func Action(ctx *runtime.Context) (*Result, error) {
	revs := ctx.Revisions
	splog := ctx.Splog
	mainBranch := ctx.Config.MainBranch

	splog.Debug("Fetching from remote")
	if err := revs.Fetch(ctx.Context); err != nil {
		return nil, fmt.Errorf("failed to fetch: %w", err)
	}
	if err := revs.Rebase(ctx.Context, mainBranch); err != nil {
		return nil, fmt.Errorf("failed to rebase onto %s: %w", mainBranch, err)
	}
	if err := revs.Log(ctx.Context, mainBranch+"-..@"); err != nil {
		return nil, fmt.Errorf("failed to show log: %w", err)
	}

	empty, err := revs.EmptyChangeIDs(ctx.Context, mainBranch)
	if err != nil {
		return nil, fmt.Errorf("failed to find empty changes: %w", err)
	}

	result := &Result{}
	for _, id := range empty {
		answer, err := ctx.Prompter.Input(fmt.Sprintf("Abandoning change '%s'? (y/n) ", shortID(id)))
		if err != nil {
			return result, err
		}
		if !tui.IsAffirmative(answer) {
			splog.Info("Abort")
			result.Aborted = true
			return result, nil
		}
		if err := revs.Abandon(ctx.Context, id); err != nil {
			return result, fmt.Errorf("failed to abandon %s: %w", id, err)
		}
		result.Abandoned = append(result.Abandoned, id)
		splog.Success("Abandoned %s", tui.ColorDim(shortID(id)))
	}
	return result, nil
}

func shortID(id string) string {
	runes := []rune(id)
	if len(runes) > shortIDLength {
		return string(runes[:shortIDLength])
	}
	return id
}

package merge

import (
	"context"
	"fmt"

	"stacked.dev/stacked/internal/github"
	"stacked.dev/stacked/internal/stack"
	"stacked.dev/stacked/internal/tui"
)

// Executor runs a plan against the revision service and the review host
type Executor struct {
	revs     stack.Revisions
	host     stack.ReviewHost
	resolver *stack.Resolver
	splog    *tui.Splog
}

// NewExecutor creates an Executor
func NewExecutor(revs stack.Revisions, host stack.ReviewHost, resolver *stack.Resolver, splog *tui.Splog) *Executor {
	return &Executor{revs: revs, host: host, resolver: resolver, splog: splog}
}

// Execute runs the plan step by step and stops at the first failure. Merges
// already done stay done; re-running merge rebuilds the plan from live state.
func (e *Executor) Execute(ctx context.Context, plan *Plan) error {
	for i, step := range plan.Steps {
		skip, err := e.checkPreconditions(ctx, step)
		if err != nil {
			return fmt.Errorf("step %d (%s) failed precondition: %w", i+1, step.Description, err)
		}
		if skip {
			e.splog.Debug("Skipping step %d (%s): already done", i+1, step.Description)
			continue
		}

		if err := e.executeStep(ctx, step); err != nil {
			return fmt.Errorf("step %d (%s) failed: %w", i+1, step.Description, err)
		}
		e.splog.Success("%s", step.Description)
	}
	return nil
}

// checkPreconditions reports whether a step has nothing left to do
func (e *Executor) checkPreconditions(ctx context.Context, step PlanStep) (bool, error) {
	if step.StepType != StepMergePR {
		return false, nil
	}

	state, ok, err := e.host.State(ctx, step.BranchName)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, fmt.Errorf("PR not found for %s", step.BranchName)
	}
	switch state {
	case github.StateMerged:
		return true, nil
	case github.StateClosed:
		return false, fmt.Errorf("PR #%d for %s is closed", step.PRNumber, step.BranchName)
	}
	return false, nil
}

func (e *Executor) executeStep(ctx context.Context, step PlanStep) error {
	switch step.StepType {
	case StepMergePR:
		return e.mergePR(ctx, step.BranchName)

	case StepFetch:
		return e.revs.Fetch(ctx)

	case StepRebaseAll:
		return e.revs.RebaseAll(ctx, step.Base)

	case StepPushAll:
		return e.revs.PushAll(ctx)

	case StepUpdatePRBase:
		return e.host.UpdateBase(ctx, step.BranchName, step.Base)

	case StepRepairTail:
		return e.repairTail(ctx, step.Base)

	default:
		return fmt.Errorf("unknown step type: %s", step.StepType)
	}
}

// mergePR squash-merges the PR for branch; the host refuses drafts, so a draft is published first
func (e *Executor) mergePR(ctx context.Context, branch string) error {
	draft, err := e.host.IsDraft(ctx, branch)
	if err != nil {
		return err
	}
	if draft {
		if err := e.host.MarkReady(ctx, branch); err != nil {
			return err
		}
		e.splog.Debug("Marked %s ready for review", branch)
	}
	return e.host.Merge(ctx, branch)
}

// repairTail walks the whole remaining stack and chains its open PRs: the
// first onto mainBranch, each later one onto the previous open one. Merged,
// closed and missing PRs are left alone.
func (e *Executor) repairTail(ctx context.Context, mainBranch string) error {
	bookmarks, err := e.resolver.Bookmarks(ctx, "")
	if err != nil {
		return fmt.Errorf("failed to resolve stack: %w", err)
	}

	previous := mainBranch
	for _, b := range bookmarks {
		state, ok, err := e.host.State(ctx, b)
		if err != nil {
			return err
		}
		if !ok || !state.IsOpen() {
			e.splog.Debug("Leaving %s alone", b)
			continue
		}
		if err := e.host.UpdateBase(ctx, b, previous); err != nil {
			return err
		}
		e.splog.Debug("Retargeted %s onto %s", b, previous)
		previous = b
	}
	return nil
}

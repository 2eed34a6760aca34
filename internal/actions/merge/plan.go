package merge

import (
	"context"
	"fmt"
	"strings"

	stackederrors "stacked.dev/stacked/internal/errors"
	"stacked.dev/stacked/internal/github"
	"stacked.dev/stacked/internal/stack"
)

// StepType represents the type of step in a merge plan
type StepType string

const (
	// StepMergePR squash-merges a PR, marking it ready first if it is a draft
	StepMergePR StepType = "MERGE_PR"
	// StepFetch fetches the remote so the merged commit is visible locally
	StepFetch StepType = "FETCH"
	// StepRebaseAll rebases everything still local onto the main branch in one step
	StepRebaseAll StepType = "REBASE_ALL"
	// StepPushAll pushes every local bookmark
	StepPushAll StepType = "PUSH_ALL"
	// StepUpdatePRBase re-points one PR's base branch
	StepUpdatePRBase StepType = "UPDATE_PR_BASE"
	// StepRepairTail re-chains the open PRs of the whole remaining stack
	StepRepairTail StepType = "REPAIR_TAIL"
)

// BranchMergeInfo contains info about a bookmark in the merge prefix
type BranchMergeInfo struct {
	BranchName string
	PRNumber   int
	PRURL      string
	State      github.PRState
}

// PlanStep represents a single step in the merge plan
type PlanStep struct {
	StepType    StepType
	BranchName  string
	Base        string
	PRNumber    int
	Description string
}

// Plan is the complete plan for a merge operation. It is derived from live
// state, so a plan built after a partial run only contains what is left.
type Plan struct {
	Target     string
	MainBranch string
	// Bookmarks is the stack prefix ending at Target
	Bookmarks []BranchMergeInfo
	Steps     []PlanStep
}

// ToMerge returns the bookmarks whose PR still has to be merged
func (p *Plan) ToMerge() []BranchMergeInfo {
	var out []BranchMergeInfo
	for _, b := range p.Bookmarks {
		if b.State != github.StateMerged {
			out = append(out, b)
		}
	}
	return out
}

// CreatePlan resolves the stack prefix ending at target and builds the steps
// that retire it. An empty stack yields a plan without bookmarks. A target
// outside the stack is a *errors.TargetNotInStackError and a bookmark without
// a PR is a *errors.PRNotFoundError; neither mutates anything.
func CreatePlan(ctx context.Context, resolver *stack.Resolver, host stack.ReviewHost, mainBranch, target string) (*Plan, error) {
	plan := &Plan{Target: target, MainBranch: mainBranch}

	bookmarks, err := resolver.Bookmarks(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve stack: %w", err)
	}
	if len(bookmarks) == 0 {
		return plan, nil
	}
	if !stack.Contains(bookmarks, target) {
		return nil, stackederrors.NewTargetNotInStackError(target)
	}

	for _, b := range bookmarks {
		pr, err := host.FindPR(ctx, b)
		if err != nil {
			return nil, err
		}
		if pr == nil {
			return nil, stackederrors.NewPRNotFoundError(b)
		}
		if pr.State == github.StateClosed {
			return nil, fmt.Errorf("PR #%d for %s is closed without being merged", pr.Number, b)
		}
		plan.Bookmarks = append(plan.Bookmarks, BranchMergeInfo{
			BranchName: b,
			PRNumber:   pr.Number,
			PRURL:      pr.URL,
			State:      pr.State,
		})
	}

	plan.Steps = buildSteps(plan.Bookmarks, mainBranch)
	return plan, nil
}

// buildSteps lays out the cascade. If part of the prefix is already merged
// (an earlier run stopped midway) the local stack and the remaining bases are
// brought up to date before anything else is merged.
func buildSteps(bookmarks []BranchMergeInfo, mainBranch string) []PlanStep {
	var steps []PlanStep

	pending := make([]BranchMergeInfo, 0, len(bookmarks))
	for _, b := range bookmarks {
		if b.State != github.StateMerged {
			pending = append(pending, b)
		}
	}

	if len(pending) < len(bookmarks) {
		steps = append(steps, syncSteps(mainBranch)...)
		steps = append(steps, rebaseSteps(pending, mainBranch)...)
	}

	for i, b := range pending {
		steps = append(steps, PlanStep{
			StepType:    StepMergePR,
			BranchName:  b.BranchName,
			PRNumber:    b.PRNumber,
			Description: fmt.Sprintf("Merge PR #%d (%s)", b.PRNumber, b.BranchName),
		})
		steps = append(steps, syncSteps(mainBranch)...)
		steps = append(steps, rebaseSteps(pending[i+1:], mainBranch)...)
	}

	steps = append(steps, PlanStep{
		StepType:    StepRepairTail,
		Base:        mainBranch,
		Description: "Retarget the remaining open PRs of the stack",
	})
	return steps
}

func syncSteps(mainBranch string) []PlanStep {
	return []PlanStep{
		{StepType: StepFetch, Description: "Fetch from remote"},
		{StepType: StepRebaseAll, Base: mainBranch, Description: fmt.Sprintf("Rebase the stack onto %s", mainBranch)},
		{StepType: StepPushAll, Description: "Push all bookmarks"},
	}
}

// rebaseSteps re-chains remaining: the first onto mainBranch, each later one onto its predecessor
func rebaseSteps(remaining []BranchMergeInfo, mainBranch string) []PlanStep {
	steps := make([]PlanStep, 0, len(remaining))
	base := mainBranch
	for _, b := range remaining {
		steps = append(steps, PlanStep{
			StepType:    StepUpdatePRBase,
			BranchName:  b.BranchName,
			Base:        base,
			PRNumber:    b.PRNumber,
			Description: fmt.Sprintf("Retarget PR #%d (%s) onto %s", b.PRNumber, b.BranchName, base),
		})
		base = b.BranchName
	}
	return steps
}

// FormatPlan returns a human-readable representation of a merge plan
func FormatPlan(plan *Plan) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Merging into %s up to %s:\n", plan.MainBranch, plan.Target)
	for _, info := range plan.Bookmarks {
		status := ""
		if info.State == github.StateMerged {
			status = " (already merged)"
		} else if info.State == github.StateDraft {
			status = " (draft, will be marked ready)"
		}
		fmt.Fprintf(&b, "  #%d %s%s\n", info.PRNumber, info.BranchName, status)
	}

	b.WriteString("\nMerge Plan:\n")
	for i, step := range plan.Steps {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, step.Description)
	}

	return b.String()
}

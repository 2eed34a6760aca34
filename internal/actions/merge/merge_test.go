package merge_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"stacked.dev/stacked/internal/actions/merge"
	stackederrors "stacked.dev/stacked/internal/errors"
	"stacked.dev/stacked/internal/github"
	"stacked.dev/stacked/testhelpers"
)

func TestMergeAction(t *testing.T) {
	t.Run("merges down to the middle of a three entry stack", func(t *testing.T) {
		revs, host := newStack(t)
		ctx, out := testhelpers.NewTestContext(t, revs, host, testhelpers.NewFakePrompter())

		require.NoError(t, merge.Action(ctx, merge.Options{Target: "feat-2", Yes: true}))

		require.Equal(t, []string{"feat-1", "feat-2"}, host.Merged)
		require.Equal(t, github.StateMerged, host.PR("feat-1").State)
		require.Equal(t, github.StateMerged, host.PR("feat-2").State)

		third := host.PR("feat-3")
		require.Equal(t, github.StateOpen, third.State)
		require.Equal(t, "main", third.Base)

		require.Equal(t, []string{"ccc"}, changeIDs(revs))
		require.Contains(t, out.String(), "Merged 2 pull request(s) up to feat-2")
	})

	t.Run("merging the whole stack leaves nothing open", func(t *testing.T) {
		revs, host := newStack(t)
		ctx, _ := testhelpers.NewTestContext(t, revs, host, testhelpers.NewFakePrompter())

		require.NoError(t, merge.Action(ctx, merge.Options{Target: "feat-3", Yes: true}))
		require.Equal(t, []string{"feat-1", "feat-2", "feat-3"}, host.Merged)
		require.Empty(t, revs.Changes)
	})

	t.Run("publishes drafts before merging them", func(t *testing.T) {
		revs, host := testhelpers.NewLinkedStack(1,
			testhelpers.FakeChange{ID: "aaa", Bookmark: "feat-1"},
			testhelpers.FakeChange{ID: "bbb", Bookmark: "feat-2"},
		)
		host.AddPR("feat-1", "main", github.StateDraft)
		host.AddPR("feat-2", "feat-1", github.StateDraft)
		ctx, _ := testhelpers.NewTestContext(t, revs, host, testhelpers.NewFakePrompter())

		require.NoError(t, merge.Action(ctx, merge.Options{Target: "feat-1", Yes: true}))
		require.Equal(t, []string{"feat-1"}, host.Readied)
		require.Equal(t, []string{"feat-1"}, host.Merged)

		second := host.PR("feat-2")
		require.Equal(t, github.StateDraft, second.State)
		require.Equal(t, "main", second.Base)
	})

	t.Run("target outside the stack is reported without side effects", func(t *testing.T) {
		revs, host := newStack(t)
		ctx, _ := testhelpers.NewTestContext(t, revs, host, testhelpers.NewFakePrompter())

		err := merge.Action(ctx, merge.Options{Target: "other", Yes: true})
		require.ErrorIs(t, err, stackederrors.ErrTargetNotInStack)
		require.Empty(t, host.Merged)
		require.Empty(t, host.BaseUpdates)
		require.Zero(t, revs.Count("Fetch"))
	})

	t.Run("a second run is a no-op", func(t *testing.T) {
		revs, host := newStack(t)
		ctx, _ := testhelpers.NewTestContext(t, revs, host, testhelpers.NewFakePrompter())
		require.NoError(t, merge.Action(ctx, merge.Options{Target: "feat-2", Yes: true}))

		err := merge.Action(ctx, merge.Options{Target: "feat-2", Yes: true})
		require.ErrorIs(t, err, stackederrors.ErrTargetNotInStack)
		require.Equal(t, []string{"feat-1", "feat-2"}, host.Merged)
		require.Equal(t, "main", host.PR("feat-3").Base)
	})

	t.Run("a second run with merged bookmarks still local merges nothing", func(t *testing.T) {
		revs, host := newStack(t)
		revs.Squashed = nil
		ctx, out := testhelpers.NewTestContext(t, revs, host, testhelpers.NewFakePrompter())
		require.NoError(t, merge.Action(ctx, merge.Options{Target: "feat-2", Yes: true}))

		host.BaseUpdates = nil
		require.NoError(t, merge.Action(ctx, merge.Options{Target: "feat-2"}))
		require.Equal(t, []string{"feat-1", "feat-2"}, host.Merged)
		require.Equal(t, []testhelpers.BaseUpdate{{Branch: "feat-3", Base: "main"}}, host.BaseUpdates)
		require.Contains(t, out.String(), "Everything up to feat-2 was already merged")
	})

	t.Run("resumes after a failure midway", func(t *testing.T) {
		revs, host := newStack(t)
		ctx, out := testhelpers.NewTestContext(t, revs, host, testhelpers.NewFakePrompter())

		revs.Failures["Fetch"] = errors.New("network is unreachable")
		err := merge.Action(ctx, merge.Options{Target: "feat-2", Yes: true})
		require.ErrorContains(t, err, "network is unreachable")
		require.Equal(t, []string{"feat-1"}, host.Merged)
		require.Equal(t, "feat-1", host.PR("feat-2").Base)
		require.Contains(t, out.String(), "re-run merge")

		delete(revs.Failures, "Fetch")
		require.NoError(t, merge.Action(ctx, merge.Options{Target: "feat-2", Yes: true}))
		require.Equal(t, []string{"feat-1", "feat-2"}, host.Merged)
		require.Equal(t, "main", host.PR("feat-3").Base)
	})

	t.Run("declined confirmation merges nothing", func(t *testing.T) {
		revs, host := newStack(t)
		prompter := testhelpers.NewFakePrompter()
		prompter.Confirms = []bool{false}
		ctx, out := testhelpers.NewTestContext(t, revs, host, prompter)

		require.NoError(t, merge.Action(ctx, merge.Options{Target: "feat-2"}))
		require.Empty(t, host.Merged)
		require.Equal(t, []string{"Merge 2 pull request(s) into main?"}, prompter.Asked)
		require.Contains(t, out.String(), "Merge canceled")
	})

	t.Run("accepted confirmation merges", func(t *testing.T) {
		revs, host := newStack(t)
		prompter := testhelpers.NewFakePrompter()
		prompter.Confirms = []bool{true}
		ctx, _ := testhelpers.NewTestContext(t, revs, host, prompter)

		require.NoError(t, merge.Action(ctx, merge.Options{Target: "feat-1"}))
		require.Equal(t, []string{"feat-1"}, host.Merged)
	})

	t.Run("non-interactive sessions need --yes", func(t *testing.T) {
		revs, host := newStack(t)
		ctx, _ := testhelpers.NewTestContext(t, revs, host, disabledPrompter{})

		err := merge.Action(ctx, merge.Options{Target: "feat-1"})
		require.ErrorIs(t, err, stackederrors.ErrInteractiveDisabled)
		require.ErrorContains(t, err, "--yes")
		require.Empty(t, host.Merged)
	})

	t.Run("requires a target", func(t *testing.T) {
		revs, host := newStack(t)
		ctx, _ := testhelpers.NewTestContext(t, revs, host, testhelpers.NewFakePrompter())
		require.ErrorIs(t, merge.Action(ctx, merge.Options{}), merge.ErrTargetRequired)
	})

	t.Run("empty stack has nothing to merge", func(t *testing.T) {
		revs, host := testhelpers.NewLinkedStack(1)
		ctx, out := testhelpers.NewTestContext(t, revs, host, testhelpers.NewFakePrompter())
		require.NoError(t, merge.Action(ctx, merge.Options{Target: "feat-1", Yes: true}))
		require.Contains(t, out.String(), "Nothing to merge")
	})
}

func TestExecutorRepairTail(t *testing.T) {
	revs, host := testhelpers.NewLinkedStack(1,
		testhelpers.FakeChange{ID: "aaa", Bookmark: "feat-1"},
		testhelpers.FakeChange{ID: "bbb", Bookmark: "feat-2"},
		testhelpers.FakeChange{ID: "ccc"},
		testhelpers.FakeChange{ID: "ddd", Bookmark: "feat-4"},
		testhelpers.FakeChange{ID: "eee", Bookmark: "feat-5"},
	)
	revs.Squashed = nil
	host.AddPR("feat-1", "main", github.StateMerged)
	host.AddPR("feat-2", "feat-1", github.StateClosed)
	host.AddPR("feat-4", "feat-2", github.StateOpen)
	host.AddPR("feat-5", "feat-4", github.StateDraft)
	ctx, _ := testhelpers.NewTestContext(t, revs, host, testhelpers.NewFakePrompter())

	plan := &merge.Plan{Steps: []merge.PlanStep{{StepType: merge.StepRepairTail, Base: "main"}}}
	executor := merge.NewExecutor(revs, host, ctx.Resolver(), ctx.Splog)
	require.NoError(t, executor.Execute(ctx.Context, plan))

	require.Equal(t, []testhelpers.BaseUpdate{
		{Branch: "feat-4", Base: "main"},
		{Branch: "feat-5", Base: "feat-4"},
	}, host.BaseUpdates)
}

func TestExecutorSkipsMergedPR(t *testing.T) {
	revs, host := testhelpers.NewLinkedStack(1, testhelpers.FakeChange{ID: "aaa", Bookmark: "feat-1"})
	host.AddPR("feat-1", "main", github.StateMerged)
	ctx, _ := testhelpers.NewTestContext(t, revs, host, testhelpers.NewFakePrompter())

	plan := &merge.Plan{Steps: []merge.PlanStep{{StepType: merge.StepMergePR, BranchName: "feat-1", PRNumber: 1}}}
	require.NoError(t, merge.NewExecutor(revs, host, ctx.Resolver(), ctx.Splog).Execute(ctx.Context, plan))
	require.Zero(t, host.Count("Merge"))
}

func TestExecutorStopsAtFirstFailure(t *testing.T) {
	revs, host := newStack(t)
	host.Failures["Merge"] = errors.New("merge blocked by branch protection")
	ctx, _ := testhelpers.NewTestContext(t, revs, host, testhelpers.NewFakePrompter())

	err := merge.Action(ctx, merge.Options{Target: "feat-2", Yes: true})
	require.ErrorContains(t, err, "step 1 (Merge PR #1 (feat-1)) failed")
	require.Zero(t, revs.Count("Fetch"))
	require.Empty(t, host.BaseUpdates)
}

type disabledPrompter struct{}

func (disabledPrompter) Input(string) (string, error) {
	return "", stackederrors.ErrInteractiveDisabled
}

func (disabledPrompter) Confirm(string, bool) (bool, error) {
	return false, stackederrors.ErrInteractiveDisabled
}

func changeIDs(revs *testhelpers.FakeRevisions) []string {
	var ids []string
	for _, c := range revs.Changes {
		ids = append(ids, c.ID)
	}
	return ids
}

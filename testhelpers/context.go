package testhelpers

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"stacked.dev/stacked/internal/config"
	"stacked.dev/stacked/internal/runtime"
	"stacked.dev/stacked/internal/stack"
	"stacked.dev/stacked/internal/tui"
)

// NewTestContext creates a runtime context over the given services with the
// default config. Console output is captured in the returned buffer.
func NewTestContext(t *testing.T, revs stack.Revisions, host stack.ReviewHost, prompter tui.Prompter) (*runtime.Context, *bytes.Buffer) {
	t.Helper()
	t.Setenv("DEBUG", "")

	var out bytes.Buffer
	splog, err := tui.NewSplogWithWriter(&out, "")
	require.NoError(t, err)

	cfg := config.Default()
	ctx := runtime.NewContext(context.Background(), &cfg, splog, revs, host, prompter)
	ctx.RepoRoot = t.TempDir()
	return ctx, &out
}

// NewLinkedStack creates a linked FakeRevisions and FakeHost for a stack on main
// whose PRs are numbered from firstNumber
func NewLinkedStack(firstNumber int, changes ...FakeChange) (*FakeRevisions, *FakeHost) {
	revs := NewFakeRevisions(changes...)
	host := NewFakeHost("main", firstNumber)
	host.RequirePushed = true
	LinkFakes(revs, host)
	return revs, host
}

package runtime

import (
	"context"
	"fmt"

	"stacked.dev/stacked/internal/config"
	stackederrors "stacked.dev/stacked/internal/errors"
	"stacked.dev/stacked/internal/github"
	"stacked.dev/stacked/internal/jj"
	"stacked.dev/stacked/internal/runner"
	"stacked.dev/stacked/internal/stack"
	"stacked.dev/stacked/internal/tui"
)

// Context provides access to the services a command acts on
type Context struct {
	Context   context.Context
	Config    *config.Config
	Splog     *tui.Splog
	Revisions stack.Revisions
	Host      stack.ReviewHost
	Prompter  tui.Prompter
	RepoRoot  string
}

// NewContext creates a context from already-constructed services
func NewContext(ctx context.Context, cfg *config.Config, splog *tui.Splog, revs stack.Revisions, host stack.ReviewHost, prompter tui.Prompter) *Context {
	return &Context{
		Context:   ctx,
		Config:    cfg,
		Splog:     splog,
		Revisions: revs,
		Host:      host,
		Prompter:  prompter,
	}
}

// Resolver returns a stack resolver for the configured main branch
func (c *Context) Resolver() *stack.Resolver {
	return stack.NewResolver(c.Revisions, c.Config.MainBranch)
}

// Options selects which services GetContext must set up
type Options struct {
	// NeedHost connects to the review host, which requires a token
	NeedHost bool
}

// Factory builds a Context for one invocation
type Factory func(ctx context.Context, splog *tui.Splog, opts Options) (*Context, error)

// GetContext locates the jj workspace, loads its config and connects the services
func GetContext(ctx context.Context, splog *tui.Splog, opts Options) (*Context, error) {
	cwdRunner := runner.NewExecRunner("")
	repoRoot, err := jj.WorkspaceRoot(ctx, cwdRunner)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", stackederrors.ErrNotInRepository, err)
	}
	splog.Debug("jj workspace root: %s", repoRoot)

	cfg, err := config.Load(repoRoot)
	if err != nil {
		return nil, err
	}

	revs := jj.New(runner.NewExecRunner(repoRoot), cfg.Remote)

	c := NewContext(ctx, cfg, splog, revs, nil, tui.NewTerminalPrompter())
	c.RepoRoot = repoRoot

	if opts.NeedHost {
		remoteURL, err := revs.RemoteURL(ctx, repoRoot)
		if err != nil {
			return nil, err
		}
		token, err := github.Token(ctx, cwdRunner)
		if err != nil {
			return nil, err
		}
		client, err := github.NewClient(ctx, token, remoteURL)
		if err != nil {
			return nil, err
		}
		owner, repo := client.OwnerRepo()
		splog.Debug("review host: %s/%s", owner, repo)
		c.Host = client
	}

	return c, nil
}

package github_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	stackederrors "stacked.dev/stacked/internal/errors"
	githubpkg "stacked.dev/stacked/internal/github"
	"stacked.dev/stacked/testhelpers"
)

func TestCreatePR(t *testing.T) {
	t.Run("creates a pull request and returns its URL", func(t *testing.T) {
		config := testhelpers.NewMockGitHubServerConfig()
		client := testhelpers.NewMockGitHubClient(t, config)

		url, err := client.CreatePR(context.Background(), githubpkg.CreatePROptions{
			Title: "feat-1: Add parser",
			Body:  "Add parser\n",
			Head:  "feat-1",
			Base:  "main",
			Draft: true,
		})
		require.NoError(t, err)
		require.Equal(t, "https://github.com/owner/repo/pull/1", url)

		pr := config.PR(1)
		require.NotNil(t, pr)
		require.Equal(t, "feat-1: Add parser", pr.GetTitle())
		require.Equal(t, "feat-1", pr.GetHead().GetRef())
		require.Equal(t, "main", pr.GetBase().GetRef())
		require.True(t, pr.GetDraft())
	})

	t.Run("surfaces API failures", func(t *testing.T) {
		config := testhelpers.NewMockGitHubServerConfig()
		config.Failures["create"] = http.StatusUnprocessableEntity
		client := testhelpers.NewMockGitHubClient(t, config)

		_, err := client.CreatePR(context.Background(), githubpkg.CreatePROptions{Title: "x", Head: "feat-1", Base: "main"})
		require.Error(t, err)
		require.Contains(t, err.Error(), "feat-1")
	})
}

func TestFindPR(t *testing.T) {
	t.Run("returns nil when the branch has no PR", func(t *testing.T) {
		client := testhelpers.NewMockGitHubClient(t, nil)
		pr, err := client.FindPR(context.Background(), "feat-1")
		require.NoError(t, err)
		require.Nil(t, pr)
	})

	t.Run("maps the PR state", func(t *testing.T) {
		config := testhelpers.NewMockGitHubServerConfig()
		config.AddPR("open-1", "main", githubpkg.StateOpen)
		config.AddPR("draft-1", "main", githubpkg.StateDraft)
		config.AddPR("merged-1", "main", githubpkg.StateMerged)
		config.AddPR("closed-1", "main", githubpkg.StateClosed)
		client := testhelpers.NewMockGitHubClient(t, config)

		for head, want := range map[string]githubpkg.PRState{
			"open-1":   githubpkg.StateOpen,
			"draft-1":  githubpkg.StateDraft,
			"merged-1": githubpkg.StateMerged,
			"closed-1": githubpkg.StateClosed,
		} {
			state, ok, err := client.State(context.Background(), head)
			require.NoError(t, err)
			require.True(t, ok)
			require.Equal(t, want, state, head)
		}
	})

	t.Run("State reports absence", func(t *testing.T) {
		client := testhelpers.NewMockGitHubClient(t, nil)
		_, ok, err := client.State(context.Background(), "nope")
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("converts number and URL", func(t *testing.T) {
		config := testhelpers.NewMockGitHubServerConfig()
		config.AddPR("feat-1", "main", githubpkg.StateOpen)
		n := config.AddPR("feat-2", "feat-1", githubpkg.StateOpen)
		client := testhelpers.NewMockGitHubClient(t, config)

		pr, err := client.FindPR(context.Background(), "feat-2")
		require.NoError(t, err)
		require.Equal(t, n, pr.Number)
		require.Equal(t, "feat-1", pr.Base)
		require.Equal(t, "feat-2", pr.Head)
		require.Equal(t, "https://github.com/owner/repo/pull/2", pr.URL)
	})
}

func TestUpdateBodyAndBase(t *testing.T) {
	config := testhelpers.NewMockGitHubServerConfig()
	n := config.AddPR("feat-2", "feat-1", githubpkg.StateOpen)
	client := testhelpers.NewMockGitHubClient(t, config)

	require.NoError(t, client.UpdateBody(context.Background(), n, "new body"))
	require.NoError(t, client.UpdateBase(context.Background(), "feat-2", "main"))

	pr := config.PR(n)
	require.Equal(t, "new body", pr.GetBody())
	require.Equal(t, "main", pr.GetBase().GetRef())
}

func TestUpdateBaseWithoutPR(t *testing.T) {
	client := testhelpers.NewMockGitHubClient(t, nil)
	err := client.UpdateBase(context.Background(), "feat-9", "main")
	require.ErrorIs(t, err, stackederrors.ErrPRNotFound)
}

func TestDraftAndMerge(t *testing.T) {
	t.Run("marks a draft ready then squash merges", func(t *testing.T) {
		config := testhelpers.NewMockGitHubServerConfig()
		n := config.AddPR("feat-1", "main", githubpkg.StateDraft)
		client := testhelpers.NewMockGitHubClient(t, config)
		ctx := context.Background()

		draft, err := client.IsDraft(ctx, "feat-1")
		require.NoError(t, err)
		require.True(t, draft)

		require.NoError(t, client.MarkReady(ctx, "feat-1"))
		draft, err = client.IsDraft(ctx, "feat-1")
		require.NoError(t, err)
		require.False(t, draft)

		require.NoError(t, client.Merge(ctx, "feat-1"))
		require.Equal(t, githubpkg.MergeMethodSquash, config.Merged[n])

		state, _, err := client.State(ctx, "feat-1")
		require.NoError(t, err)
		require.Equal(t, githubpkg.StateMerged, state)
	})

	t.Run("merging a draft fails", func(t *testing.T) {
		config := testhelpers.NewMockGitHubServerConfig()
		config.AddPR("feat-1", "main", githubpkg.StateDraft)
		client := testhelpers.NewMockGitHubClient(t, config)

		require.Error(t, client.Merge(context.Background(), "feat-1"))
		require.Empty(t, config.Merged)
	})

	t.Run("graphql errors are reported", func(t *testing.T) {
		config := testhelpers.NewMockGitHubServerConfig()
		config.AddPR("feat-1", "main", githubpkg.StateDraft)
		config.Failures["graphql"] = http.StatusBadGateway
		client := testhelpers.NewMockGitHubClient(t, config)

		err := client.MarkReady(context.Background(), "feat-1")
		require.Error(t, err)
		require.Contains(t, err.Error(), "502")
	})
}

func TestParseGitHubRemoteURL(t *testing.T) {
	tests := []struct {
		url                   string
		host, owner, repoName string
	}{
		{"https://github.com/owner/repo.git", "github.com", "owner", "repo"},
		{"https://github.com/owner/repo", "github.com", "owner", "repo"},
		{"git@github.com:owner/repo.git", "github.com", "owner", "repo"},
		{"ssh://git@github.company.com:2222/team/project.git", "github.company.com", "team", "project"},
		{"https://github.company.com/team/project/", "github.company.com", "team", "project"},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			info, err := githubpkg.ParseGitHubRemoteURL(tt.url)
			require.NoError(t, err)
			require.Equal(t, tt.host, info.Hostname)
			require.Equal(t, tt.owner, info.Owner)
			require.Equal(t, tt.repoName, info.Repo)
		})
	}

	for _, bad := range []string{"", "not-a-url", "https://github.com/only"} {
		_, err := githubpkg.ParseGitHubRemoteURL(bad)
		require.Error(t, err, bad)
	}
}

func TestToken(t *testing.T) {
	t.Run("prefers GITHUB_TOKEN", func(t *testing.T) {
		t.Setenv("GITHUB_TOKEN", "env-token")
		t.Setenv("GH_TOKEN", "other")
		r := testhelpers.StaticRunner("cli-token")
		token, err := githubpkg.Token(context.Background(), r)
		require.NoError(t, err)
		require.Equal(t, "env-token", token)
		require.Empty(t, r.Calls)
	})

	t.Run("falls back to gh auth token", func(t *testing.T) {
		t.Setenv("GITHUB_TOKEN", "")
		t.Setenv("GH_TOKEN", "")
		r := testhelpers.StaticRunner("cli-token\n")
		token, err := githubpkg.Token(context.Background(), r)
		require.NoError(t, err)
		require.Equal(t, "cli-token", token)
		require.Equal(t, "gh auth token", r.LastCall().CommandLine())
	})

	t.Run("fails when gh is unavailable", func(t *testing.T) {
		t.Setenv("GITHUB_TOKEN", "")
		t.Setenv("GH_TOKEN", "")
		r := testhelpers.NewFakeRunner(func(string, []string) (string, error) {
			return "", errors.New("executable file not found")
		})
		_, err := githubpkg.Token(context.Background(), r)
		require.Error(t, err)
	})
}

package jj_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	gogit "github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/stretchr/testify/require"

	stackederrors "stacked.dev/stacked/internal/errors"
	"stacked.dev/stacked/internal/jj"
	"stacked.dev/stacked/testhelpers"
)

func TestChangeIDs(t *testing.T) {
	t.Run("returns ids in output order", func(t *testing.T) {
		r := testhelpers.StaticRunner("abc123\ndef456\nghi789\n")
		ids, err := jj.New(r, "").ChangeIDs(context.Background(), "main..@")
		require.NoError(t, err)
		require.Equal(t, []string{"abc123", "def456", "ghi789"}, ids)
	})

	t.Run("empty output yields no ids", func(t *testing.T) {
		r := testhelpers.StaticRunner("")
		ids, err := jj.New(r, "").ChangeIDs(context.Background(), "main..@")
		require.NoError(t, err)
		require.Empty(t, ids)
	})

	t.Run("skips blank lines", func(t *testing.T) {
		r := testhelpers.StaticRunner("abc123\n\ndef456\n\n")
		ids, err := jj.New(r, "").ChangeIDs(context.Background(), "main..@")
		require.NoError(t, err)
		require.Equal(t, []string{"abc123", "def456"}, ids)
	})

	t.Run("passes the revset oldest first", func(t *testing.T) {
		r := testhelpers.StaticRunner("abc123")
		_, err := jj.New(r, "").ChangeIDs(context.Background(), "main..@-")
		require.NoError(t, err)
		call := r.LastCall()
		require.Equal(t, "jj", call.Name)
		require.Equal(t, []string{"log", "--no-graph", "--reversed", "-r", "main..@-", "-T", `change_id ++ "\n"`}, call.Args)
	})

	t.Run("propagates command failures", func(t *testing.T) {
		r := testhelpers.NewFakeRunner(func(name string, args []string) (string, error) {
			return "", stackederrors.NewCommandError(name, args, "", "Error: Revision `nope` doesn't exist", errors.New("exit status 1"))
		})
		_, err := jj.New(r, "").ChangeIDs(context.Background(), "nope..@")
		var cmdErr *stackederrors.CommandError
		require.ErrorAs(t, err, &cmdErr)
		require.Contains(t, err.Error(), "doesn't exist")
	})
}

func TestStackChangeIDs(t *testing.T) {
	tests := []struct {
		name string
		tip  string
		want string
	}{
		{name: "defaults to the working copy", tip: "", want: "main..@"},
		{name: "uses the supplied tip", tip: "xyz789", want: "main..xyz789"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := testhelpers.StaticRunner("abc123")
			_, err := jj.New(r, "").StackChangeIDs(context.Background(), "main", tt.tip)
			require.NoError(t, err)
			args := r.LastCall().Args
			require.Equal(t, tt.want, args[4])
		})
	}
}

func TestEmptyChangeIDs(t *testing.T) {
	r := testhelpers.StaticRunner("empty1\nempty2\n")
	ids, err := jj.New(r, "").EmptyChangeIDs(context.Background(), "main")
	require.NoError(t, err)
	require.Equal(t, []string{"empty1", "empty2"}, ids)
	require.Equal(t, "(main..@-) & empty()", r.LastCall().Args[4])
}

func TestDescription(t *testing.T) {
	r := testhelpers.StaticRunner("Add parser\n\nLonger body")
	desc, err := jj.New(r, "").Description(context.Background(), "xyz789")
	require.NoError(t, err)
	require.Equal(t, "Add parser\n\nLonger body", desc)
	require.Equal(t, []string{"log", "--no-graph", "-T", "description", "-r", "xyz789"}, r.LastCall().Args)
}

func TestParseBookmark(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "feat-7: abc123", want: "feat-7"},
		{input: "simple-branch", want: "simple-branch"},
		{input: "", want: ""},
		{input: "  branch-name  ", want: "branch-name"},
		{input: "feat-2: qpvuntsm 3e2f 'msg'\n  @origin: qpvuntsm 3e2f 'msg'", want: "feat-2"},
		{input: "feat-3 (deleted)\n  @origin: qpvuntsm 3e2f 'msg'", want: "feat-3"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			require.Equal(t, tt.want, jj.ParseBookmark(tt.input))
		})
	}
}

func TestBookmark(t *testing.T) {
	t.Run("returns the bookmark name", func(t *testing.T) {
		r := testhelpers.StaticRunner("feature-branch: abc123")
		name, ok, err := jj.New(r, "").Bookmark(context.Background(), "abc123")
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, "feature-branch", name)
		require.Equal(t, []string{"bookmark", "list", "-r", "abc123"}, r.LastCall().Args)
	})

	t.Run("reports absence without error", func(t *testing.T) {
		r := testhelpers.StaticRunner("")
		name, ok, err := jj.New(r, "").Bookmark(context.Background(), "abc123")
		require.NoError(t, err)
		require.False(t, ok)
		require.Empty(t, name)
	})
}

func TestCreateBookmark(t *testing.T) {
	r := testhelpers.StaticRunner("")
	err := jj.New(r, "upstream").CreateBookmark(context.Background(), "abc123", "user/pr-42")
	require.NoError(t, err)
	require.Equal(t, []string{
		"jj bookmark create -r abc123 user/pr-42",
		"jj bookmark track user/pr-42@upstream",
	}, r.CommandLines())
}

func TestCreateBookmarkStopsWhenCreateFails(t *testing.T) {
	r := testhelpers.NewFakeRunner(func(name string, args []string) (string, error) {
		return "", stackederrors.NewCommandError(name, args, "", "Error: Bookmark already exists", errors.New("exit status 1"))
	})
	err := jj.New(r, "").CreateBookmark(context.Background(), "abc123", "feat-1")
	require.Error(t, err)
	require.Len(t, r.Calls, 1)
}

func TestRemoteCommands(t *testing.T) {
	tests := []struct {
		name string
		run  func(c *jj.Client) error
		want string
	}{
		{
			name: "push single bookmark",
			run:  func(c *jj.Client) error { return c.Push(context.Background(), "feature-branch") },
			want: "jj git push --remote origin -b feature-branch",
		},
		{
			name: "push all bookmarks",
			run:  func(c *jj.Client) error { return c.PushAll(context.Background()) },
			want: "jj git push --remote origin --all",
		},
		{
			name: "fetch",
			run:  func(c *jj.Client) error { return c.Fetch(context.Background()) },
			want: "jj git fetch --remote origin",
		},
		{
			name: "rebase onto main",
			run:  func(c *jj.Client) error { return c.Rebase(context.Background(), "main") },
			want: "jj rebase -d main",
		},
		{
			name: "rebase whole branch",
			run:  func(c *jj.Client) error { return c.RebaseAll(context.Background(), "develop") },
			want: "jj rebase -b @ -d develop --skip-emptied",
		},
		{
			name: "abandon",
			run:  func(c *jj.Client) error { return c.Abandon(context.Background(), "abc123") },
			want: "jj abandon -r abc123",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := testhelpers.StaticRunner("")
			require.NoError(t, tt.run(jj.New(r, "")))
			require.Equal(t, tt.want, r.LastCall().CommandLine())
		})
	}
}

func TestLogIsInteractive(t *testing.T) {
	r := testhelpers.StaticRunner("")
	require.NoError(t, jj.New(r, "").Log(context.Background(), "main-..@"))
	call := r.LastCall()
	require.True(t, call.Interactive)
	require.Equal(t, "jj log -r main-..@", call.CommandLine())
}

func TestWorkspaceRoot(t *testing.T) {
	r := testhelpers.StaticRunner("/home/me/repo\n")
	root, err := jj.WorkspaceRoot(context.Background(), r)
	require.NoError(t, err)
	require.Equal(t, "/home/me/repo", root)
}

func TestParseRemoteList(t *testing.T) {
	out := "origin git@github.com:owner/repo.git\nupstream https://github.com/other/repo.git"

	url, ok := jj.ParseRemoteList(out, "upstream")
	require.True(t, ok)
	require.Equal(t, "https://github.com/other/repo.git", url)

	_, ok = jj.ParseRemoteList(out, "fork")
	require.False(t, ok)
}

func TestRemoteURL(t *testing.T) {
	t.Run("reads a colocated git repository", func(t *testing.T) {
		dir := t.TempDir()
		repo, err := gogit.PlainInit(dir, false)
		require.NoError(t, err)
		_, err = repo.CreateRemote(&gitconfig.RemoteConfig{
			Name: "origin",
			URLs: []string{"git@github.com:owner/repo.git"},
		})
		require.NoError(t, err)

		r := testhelpers.StaticRunner("")
		url, err := jj.New(r, "").RemoteURL(context.Background(), dir)
		require.NoError(t, err)
		require.Equal(t, "git@github.com:owner/repo.git", url)
		require.Empty(t, r.Calls)
	})

	t.Run("reads the internal git store", func(t *testing.T) {
		dir := t.TempDir()
		repo, err := gogit.PlainInit(filepath.Join(dir, ".jj", "repo", "store", "git"), true)
		require.NoError(t, err)
		_, err = repo.CreateRemote(&gitconfig.RemoteConfig{
			Name: "origin",
			URLs: []string{"https://github.com/owner/repo.git"},
		})
		require.NoError(t, err)

		r := testhelpers.StaticRunner("")
		url, err := jj.New(r, "").RemoteURL(context.Background(), dir)
		require.NoError(t, err)
		require.Equal(t, "https://github.com/owner/repo.git", url)
	})

	t.Run("falls back to jj git remote list", func(t *testing.T) {
		r := testhelpers.StaticRunner("origin https://github.com/owner/repo.git")
		url, err := jj.New(r, "").RemoteURL(context.Background(), t.TempDir())
		require.NoError(t, err)
		require.Equal(t, "https://github.com/owner/repo.git", url)
		require.Equal(t, "jj git remote list", r.LastCall().CommandLine())
	})
}

// Package jj wraps the jj (Jujutsu) command line for the operations stacked needs:
// resolving revsets to change ids, reading descriptions and bookmarks, creating and
// tracking bookmarks, pushing, fetching, rebasing and abandoning changes.
package jj

import (
	"context"
	"fmt"
	"strings"

	"stacked.dev/stacked/internal/runner"
)

const (
	binary = "jj"

	// DefaultRemote is the git remote used when none is configured
	DefaultRemote = "origin"

	// WorkingCopy is the revset for the working-copy change
	WorkingCopy = "@"
)

// Client runs jj commands through a CommandRunner
type Client struct {
	runner runner.CommandRunner
	remote string
}

// New creates a Client. An empty remote falls back to DefaultRemote.
func New(r runner.CommandRunner, remote string) *Client {
	if remote == "" {
		remote = DefaultRemote
	}
	return &Client{runner: r, remote: remote}
}

// Remote returns the git remote bookmarks are tracked against
func (c *Client) Remote() string {
	return c.remote
}

// WorkspaceRoot returns the root directory of the current jj workspace
func WorkspaceRoot(ctx context.Context, r runner.CommandRunner) (string, error) {
	out, err := r.Run(ctx, binary, "workspace", "root")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (c *Client) run(ctx context.Context, args ...string) (string, error) {
	return c.runner.Run(ctx, binary, args...)
}

// ChangeIDs returns the change ids matched by revset, oldest first
func (c *Client) ChangeIDs(ctx context.Context, revset string) ([]string, error) {
	out, err := c.run(ctx, "log", "--no-graph", "--reversed", "-r", revset, "-T", `change_id ++ "\n"`)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve revset %s: %w", revset, err)
	}
	return splitLines(out), nil
}

// StackRevset returns the revset for the changes reachable from tip but not from mainBranch
func StackRevset(mainBranch, tip string) string {
	if tip == "" {
		tip = WorkingCopy
	}
	return mainBranch + ".." + tip
}

// StackChangeIDs returns the changes between mainBranch and tip (tip inclusive), oldest first
func (c *Client) StackChangeIDs(ctx context.Context, mainBranch, tip string) ([]string, error) {
	return c.ChangeIDs(ctx, StackRevset(mainBranch, tip))
}

// EmptyChangeIDs returns the empty changes below the working copy, oldest first.
// The working-copy change itself is excluded.
func (c *Client) EmptyChangeIDs(ctx context.Context, mainBranch string) ([]string, error) {
	return c.ChangeIDs(ctx, fmt.Sprintf("(%s..@-) & empty()", mainBranch))
}

// Description returns the full description of a change
func (c *Client) Description(ctx context.Context, changeID string) (string, error) {
	out, err := c.run(ctx, "log", "--no-graph", "-T", "description", "-r", changeID)
	if err != nil {
		return "", fmt.Errorf("failed to read description of %s: %w", changeID, err)
	}
	return out, nil
}

// Bookmark returns the bookmark attached to a change. ok is false when it has none.
func (c *Client) Bookmark(ctx context.Context, changeID string) (string, bool, error) {
	out, err := c.run(ctx, "bookmark", "list", "-r", changeID)
	if err != nil {
		return "", false, fmt.Errorf("failed to list bookmarks of %s: %w", changeID, err)
	}
	name := ParseBookmark(out)
	return name, name != "", nil
}

// ParseBookmark extracts the bookmark name from `jj bookmark list` output.
// Only the first line is considered; the name ends at the first colon or space,
// so a deleted bookmark ("name (deleted)") still yields its bare name.
func ParseBookmark(output string) string {
	line, _, _ := strings.Cut(output, "\n")
	name, _, _ := strings.Cut(line, ":")
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// CreateBookmark creates a bookmark on a change and tracks it on the remote
func (c *Client) CreateBookmark(ctx context.Context, changeID, name string) error {
	if _, err := c.run(ctx, "bookmark", "create", "-r", changeID, name); err != nil {
		return fmt.Errorf("failed to create bookmark %s: %w", name, err)
	}
	if _, err := c.run(ctx, "bookmark", "track", name+"@"+c.remote); err != nil {
		return fmt.Errorf("failed to track bookmark %s: %w", name, err)
	}
	return nil
}

// Push pushes a single bookmark to the remote
func (c *Client) Push(ctx context.Context, bookmark string) error {
	if _, err := c.run(ctx, "git", "push", "--remote", c.remote, "-b", bookmark); err != nil {
		return fmt.Errorf("failed to push bookmark %s: %w", bookmark, err)
	}
	return nil
}

// PushAll pushes every local bookmark to the remote
func (c *Client) PushAll(ctx context.Context) error {
	if _, err := c.run(ctx, "git", "push", "--remote", c.remote, "--all"); err != nil {
		return fmt.Errorf("failed to push bookmarks: %w", err)
	}
	return nil
}

// Fetch fetches from the remote
func (c *Client) Fetch(ctx context.Context) error {
	if _, err := c.run(ctx, "git", "fetch", "--remote", c.remote); err != nil {
		return fmt.Errorf("failed to fetch: %w", err)
	}
	return nil
}

// Rebase rebases the working-copy branch onto dest
func (c *Client) Rebase(ctx context.Context, dest string) error {
	if _, err := c.run(ctx, "rebase", "-d", dest); err != nil {
		return fmt.Errorf("failed to rebase onto %s: %w", dest, err)
	}
	return nil
}

// RebaseAll moves every change of the working-copy branch onto dest in one step,
// abandoning changes whose content already landed in dest.
func (c *Client) RebaseAll(ctx context.Context, dest string) error {
	if _, err := c.run(ctx, "rebase", "-b", WorkingCopy, "-d", dest, "--skip-emptied"); err != nil {
		return fmt.Errorf("failed to rebase stack onto %s: %w", dest, err)
	}
	return nil
}

// Abandon abandons a change
func (c *Client) Abandon(ctx context.Context, changeID string) error {
	if _, err := c.run(ctx, "abandon", "-r", changeID); err != nil {
		return fmt.Errorf("failed to abandon %s: %w", changeID, err)
	}
	return nil
}

// Log shows `jj log` for revset on the terminal
func (c *Client) Log(ctx context.Context, revset string) error {
	return c.runner.RunInteractive(ctx, binary, "log", "-r", revset)
}

func splitLines(output string) []string {
	var lines []string
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

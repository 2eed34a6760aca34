package jj

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	gogit "github.com/go-git/go-git/v5"
)

// gitStorePath is where a non-colocated jj repository keeps its git backend
var gitStorePath = filepath.Join(".jj", "repo", "store", "git")

// RemoteURL returns the URL of the configured remote. The git backend is read
// directly with go-git (colocated first, then the internal store); if neither
// can be opened the URL is taken from `jj git remote list`.
func (c *Client) RemoteURL(ctx context.Context, workspaceRoot string) (string, error) {
	if workspaceRoot != "" {
		if url, err := remoteURLFromGit(workspaceRoot, c.remote); err == nil {
			return url, nil
		}
	}

	out, err := c.run(ctx, "git", "remote", "list")
	if err != nil {
		return "", fmt.Errorf("failed to list remotes: %w", err)
	}
	url, ok := ParseRemoteList(out, c.remote)
	if !ok {
		return "", fmt.Errorf("remote %s is not configured", c.remote)
	}
	return url, nil
}

// ParseRemoteList finds the URL of remote in `jj git remote list` output
func ParseRemoteList(output, remote string) (string, bool) {
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 2 && fields[0] == remote {
			return fields[1], true
		}
	}
	return "", false
}

func remoteURLFromGit(workspaceRoot, remote string) (string, error) {
	repo, err := gogit.PlainOpenWithOptions(workspaceRoot, &gogit.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		repo, err = gogit.PlainOpen(filepath.Join(workspaceRoot, gitStorePath))
		if err != nil {
			return "", fmt.Errorf("no git backend found: %w", err)
		}
	}

	r, err := repo.Remote(remote)
	if err != nil {
		return "", err
	}
	urls := r.Config().URLs
	if len(urls) == 0 {
		return "", fmt.Errorf("remote %s has no URL", remote)
	}
	return urls[0], nil
}

package github

import (
	"context"
	"fmt"
	"os"
	"strings"

	"stacked.dev/stacked/internal/runner"
)

// RepoInfo contains parsed information from a git remote URL
type RepoInfo struct {
	Hostname string
	Owner    string
	Repo     string
}

// ParseGitHubRemoteURL parses a git remote URL and extracts hostname, owner, and repo
// Supports both github.com and GitHub Enterprise URLs
// Examples:
//   - https://github.com/owner/repo.git
//   - git@github.com:owner/repo.git
//   - ssh://git@github.company.com/owner/repo.git
func ParseGitHubRemoteURL(remoteURL string) (*RepoInfo, error) {
	remoteURL = strings.TrimSpace(remoteURL)
	remoteURL = strings.TrimSuffix(remoteURL, "/")
	remoteURL = strings.TrimSuffix(remoteURL, ".git")

	var hostname, path string

	switch {
	case strings.Contains(remoteURL, "://"):
		// https://hostname/owner/repo or ssh://git@hostname/owner/repo
		rest := remoteURL[strings.Index(remoteURL, "://")+3:]
		if at := strings.Index(rest, "@"); at >= 0 && at < strings.Index(rest+"/", "/") {
			rest = rest[at+1:]
		}
		parts := strings.SplitN(rest, "/", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid remote URL %q: must be protocol://hostname/owner/repo", remoteURL)
		}
		hostname, path = parts[0], parts[1]
		// drop an explicit port
		if colon := strings.Index(hostname, ":"); colon >= 0 {
			hostname = hostname[:colon]
		}
	case strings.Contains(remoteURL, "@"):
		// git@hostname:owner/repo
		hostAndPath := strings.SplitN(remoteURL, "@", 2)[1]
		parts := strings.SplitN(hostAndPath, ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid SSH remote URL %q", remoteURL)
		}
		hostname, path = parts[0], parts[1]
	default:
		return nil, fmt.Errorf("unsupported remote URL %q", remoteURL)
	}

	pathParts := strings.Split(strings.Trim(path, "/"), "/")
	if len(pathParts) < 2 {
		return nil, fmt.Errorf("invalid remote URL %q: path must be owner/repo", remoteURL)
	}
	owner := pathParts[len(pathParts)-2]
	repo := pathParts[len(pathParts)-1]

	if hostname == "" || owner == "" || repo == "" {
		return nil, fmt.Errorf("failed to parse hostname, owner, or repo from remote URL %q", remoteURL)
	}

	return &RepoInfo{
		Hostname: hostname,
		Owner:    owner,
		Repo:     repo,
	}, nil
}

// Token returns a GitHub token from GITHUB_TOKEN, GH_TOKEN or `gh auth token`
func Token(ctx context.Context, r runner.CommandRunner) (string, error) {
	for _, name := range []string{"GITHUB_TOKEN", "GH_TOKEN"} {
		if token := os.Getenv(name); token != "" {
			return token, nil
		}
	}

	output, err := r.Run(ctx, "gh", "auth", "token")
	if err != nil {
		return "", fmt.Errorf("failed to get GitHub token (set GITHUB_TOKEN or run `gh auth login`): %w", err)
	}

	token := strings.TrimSpace(output)
	if token == "" {
		return "", fmt.Errorf("empty GitHub token")
	}

	return token, nil
}

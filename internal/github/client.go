// Package github provides the review host adapter backed by the GitHub API.
package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v62/github"
	"golang.org/x/oauth2"

	stackederrors "stacked.dev/stacked/internal/errors"
)

// PRState is the review state of a pull request
type PRState string

const (
	// StateOpen is an open pull request that is ready for review
	StateOpen PRState = "OPEN"
	// StateDraft is an open pull request still marked as draft
	StateDraft PRState = "DRAFT"
	// StateMerged is a merged pull request
	StateMerged PRState = "MERGED"
	// StateClosed is a pull request closed without merging
	StateClosed PRState = "CLOSED"
)

// IsOpen reports whether the pull request is still open (draft or not)
func (s PRState) IsOpen() bool {
	return s == StateOpen || s == StateDraft
}

// PullRequest contains information about a pull request
// This is a simplified struct to avoid coupling to go-github library
type PullRequest struct {
	Number int
	NodeID string
	URL    string
	Title  string
	Body   string
	Head   string
	Base   string
	Draft  bool
	State  PRState
}

// CreatePROptions contains options for creating a pull request
type CreatePROptions struct {
	Title string
	Body  string
	Head  string
	Base  string
	Draft bool
}

// Client implements the review host on top of the GitHub REST and GraphQL APIs
type Client struct {
	client     *github.Client
	httpClient *http.Client
	graphqlURL string
	owner      string
	repo       string
}

// NewClient creates an authenticated Client for the repository behind remoteURL
func NewClient(ctx context.Context, token, remoteURL string) (*Client, error) {
	repoInfo, err := ParseGitHubRemoteURL(remoteURL)
	if err != nil {
		return nil, fmt.Errorf("failed to get repository info: %w", err)
	}

	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	httpClient := oauth2.NewClient(ctx, ts)
	client := github.NewClient(httpClient)
	graphqlURL := "https://api.github.com/graphql"

	// Configure for GitHub Enterprise if not github.com
	if repoInfo.Hostname != "github.com" {
		baseURL, err := url.Parse(fmt.Sprintf("https://%s/api/v3/", repoInfo.Hostname))
		if err != nil {
			return nil, fmt.Errorf("failed to parse base URL for hostname %s: %w", repoInfo.Hostname, err)
		}
		uploadURL, err := url.Parse(fmt.Sprintf("https://%s/api/uploads/", repoInfo.Hostname))
		if err != nil {
			return nil, fmt.Errorf("failed to parse upload URL for hostname %s: %w", repoInfo.Hostname, err)
		}
		client.BaseURL = baseURL
		client.UploadURL = uploadURL
		graphqlURL = fmt.Sprintf("https://%s/api/graphql", repoInfo.Hostname)
	}

	return &Client{
		client:     client,
		httpClient: httpClient,
		graphqlURL: graphqlURL,
		owner:      repoInfo.Owner,
		repo:       repoInfo.Repo,
	}, nil
}

// NewClientWithBaseURL creates a Client that talks to baseURL for both the REST and
// GraphQL APIs. It is used against API-compatible servers and in tests.
func NewClientWithBaseURL(httpClient *http.Client, baseURL, owner, repo string) (*Client, error) {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL %s: %w", baseURL, err)
	}

	client := github.NewClient(httpClient)
	client.BaseURL = parsed
	client.UploadURL = parsed

	return &Client{
		client:     client,
		httpClient: httpClient,
		graphqlURL: baseURL + "graphql",
		owner:      owner,
		repo:       repo,
	}, nil
}

// OwnerRepo returns the repository owner and name
func (c *Client) OwnerRepo() (string, string) {
	return c.owner, c.repo
}

// FindPR returns the most recent pull request whose head is branch, or nil if there is none
func (c *Client) FindPR(ctx context.Context, branch string) (*PullRequest, error) {
	prs, _, err := c.client.PullRequests.List(ctx, c.owner, c.repo, &github.PullRequestListOptions{
		Head:  fmt.Sprintf("%s:%s", c.owner, branch),
		State: "all",
		ListOptions: github.ListOptions{
			PerPage: 1,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list pull requests for %s: %w", branch, err)
	}

	if len(prs) == 0 {
		return nil, nil
	}

	return toPullRequest(prs[0]), nil
}

// requirePR is FindPR for operations that cannot proceed without a pull request
func (c *Client) requirePR(ctx context.Context, branch string) (*PullRequest, error) {
	pr, err := c.FindPR(ctx, branch)
	if err != nil {
		return nil, err
	}
	if pr == nil {
		return nil, stackederrors.NewPRNotFoundError(branch)
	}
	return pr, nil
}

// toPullRequest converts a github.PullRequest to PullRequest
func toPullRequest(pr *github.PullRequest) *PullRequest {
	if pr == nil {
		return nil
	}

	info := &PullRequest{
		Number: pr.GetNumber(),
		NodeID: pr.GetNodeID(),
		URL:    pr.GetHTMLURL(),
		Title:  pr.GetTitle(),
		Body:   pr.GetBody(),
		Draft:  pr.GetDraft(),
	}
	if pr.Head != nil {
		info.Head = pr.Head.GetRef()
	}
	if pr.Base != nil {
		info.Base = pr.Base.GetRef()
	}

	switch {
	case pr.GetMerged() || pr.MergedAt != nil:
		info.State = StateMerged
	case strings.EqualFold(pr.GetState(), "closed"):
		info.State = StateClosed
	case info.Draft:
		info.State = StateDraft
	default:
		info.State = StateOpen
	}

	return info
}

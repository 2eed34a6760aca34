package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/go-github/v62/github"
)

// MergeMethodSquash is the merge strategy used for every stacked pull request
const MergeMethodSquash = "squash"

// CreatePR creates a new pull request and returns its URL
func (c *Client) CreatePR(ctx context.Context, opts CreatePROptions) (string, error) {
	pr := &github.NewPullRequest{
		Title: github.String(opts.Title),
		Head:  github.String(opts.Head),
		Base:  github.String(opts.Base),
		Draft: github.Bool(opts.Draft),
	}

	if opts.Body != "" {
		pr.Body = github.String(opts.Body)
	}

	createdPR, _, err := c.client.PullRequests.Create(ctx, c.owner, c.repo, pr)
	if err != nil {
		return "", fmt.Errorf("failed to create pull request for %s: %w", opts.Head, err)
	}

	return createdPR.GetHTMLURL(), nil
}

// UpdateBody replaces the body of pull request number
func (c *Client) UpdateBody(ctx context.Context, number int, body string) error {
	update := &github.PullRequest{
		Body: github.String(body),
	}
	if _, _, err := c.client.PullRequests.Edit(ctx, c.owner, c.repo, number, update); err != nil {
		return fmt.Errorf("failed to update PR #%d: %w", number, err)
	}
	return nil
}

// UpdateBase changes the base branch of the pull request for branch
func (c *Client) UpdateBase(ctx context.Context, branch, base string) error {
	pr, err := c.requirePR(ctx, branch)
	if err != nil {
		return err
	}

	update := &github.PullRequest{
		Base: &github.PullRequestBranch{
			Ref: github.String(base),
		},
	}
	if _, _, err := c.client.PullRequests.Edit(ctx, c.owner, c.repo, pr.Number, update); err != nil {
		return fmt.Errorf("failed to update base branch for PR %s: %w", branch, err)
	}
	return nil
}

// State returns the state of the pull request for branch. ok is false if there is none.
func (c *Client) State(ctx context.Context, branch string) (PRState, bool, error) {
	pr, err := c.FindPR(ctx, branch)
	if err != nil {
		return "", false, err
	}
	if pr == nil {
		return "", false, nil
	}
	return pr.State, true, nil
}

// IsDraft reports whether the pull request for branch is a draft
func (c *Client) IsDraft(ctx context.Context, branch string) (bool, error) {
	pr, err := c.requirePR(ctx, branch)
	if err != nil {
		return false, fmt.Errorf("failed to get PR draft status for branch %s: %w", branch, err)
	}
	return pr.Draft, nil
}

// MarkReady marks the draft pull request for branch as ready for review.
// The REST API cannot change draft status, so this goes through GraphQL.
func (c *Client) MarkReady(ctx context.Context, branch string) error {
	pr, err := c.requirePR(ctx, branch)
	if err != nil {
		return err
	}
	if pr.NodeID == "" {
		return fmt.Errorf("PR #%d does not have a Node ID", pr.Number)
	}
	if err := c.markReadyForReview(ctx, pr.NodeID); err != nil {
		return fmt.Errorf("failed to mark PR as ready for branch %s: %w", branch, err)
	}
	return nil
}

// Merge squash-merges the pull request for branch
func (c *Client) Merge(ctx context.Context, branch string) error {
	pr, err := c.requirePR(ctx, branch)
	if err != nil {
		return err
	}

	result, _, err := c.client.PullRequests.Merge(ctx, c.owner, c.repo, pr.Number, "", &github.PullRequestOptions{
		MergeMethod: MergeMethodSquash,
	})
	if err != nil {
		return fmt.Errorf("failed to merge PR for branch %s: %w", branch, err)
	}
	if result != nil && result.Merged != nil && !*result.Merged {
		return fmt.Errorf("failed to merge PR for branch %s: %s", branch, result.GetMessage())
	}
	return nil
}

const markReadyMutation = `mutation MarkPullRequestReadyForReview($pullRequestId: ID!) {
	markPullRequestReadyForReview(input: {pullRequestId: $pullRequestId}) {
		pullRequest {
			id
			isDraft
		}
	}
}`

// markReadyForReview runs the markPullRequestReadyForReview GraphQL mutation
func (c *Client) markReadyForReview(ctx context.Context, nodeID string) error {
	requestBody := map[string]interface{}{
		"query": markReadyMutation,
		"variables": map[string]interface{}{
			"pullRequestId": nodeID,
		},
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return fmt.Errorf("failed to marshal GraphQL request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.graphqlURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create GraphQL request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute GraphQL request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read GraphQL response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GraphQL request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var graphqlResponse struct {
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(body, &graphqlResponse); err != nil {
		return fmt.Errorf("failed to parse GraphQL response: %w", err)
	}

	if len(graphqlResponse.Errors) > 0 {
		messages := make([]string, len(graphqlResponse.Errors))
		for i, e := range graphqlResponse.Errors {
			messages[i] = e.Message
		}
		return fmt.Errorf("GraphQL markPullRequestReadyForReview mutation failed: %s", strings.Join(messages, "; "))
	}

	return nil
}

package testhelpers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/stretchr/testify/require"

	githubpkg "stacked.dev/stacked/internal/github"
)

// MockGitHubServerConfig configures the behavior of a mock GitHub server
type MockGitHubServerConfig struct {
	mu sync.Mutex

	// PRs holds every pull request in creation order
	PRs []*github.PullRequest
	// Merged records the merge method used per PR number
	Merged map[int]string
	// Failures maps an operation (list, create, edit, merge, graphql) to the HTTP status it answers with
	Failures map[string]int
	// Owner and Repo for the mock server
	Owner string
	Repo  string
}

// NewMockGitHubServerConfig creates a new mock server config with defaults
func NewMockGitHubServerConfig() *MockGitHubServerConfig {
	return &MockGitHubServerConfig{
		Merged:   make(map[int]string),
		Failures: make(map[string]int),
		Owner:    "owner",
		Repo:     "repo",
	}
}

// AddPR seeds a pull request for head and returns its number
func (c *MockGitHubServerConfig) AddPR(head, base string, state githubpkg.PRState) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	pr := c.newPR(head, base, "", "")
	switch state {
	case githubpkg.StateDraft:
		pr.Draft = github.Bool(true)
	case githubpkg.StateMerged:
		pr.State = github.String("closed")
		pr.Merged = github.Bool(true)
		pr.MergedAt = &github.Timestamp{Time: time.Now()}
	case githubpkg.StateClosed:
		pr.State = github.String("closed")
	}
	return pr.GetNumber()
}

// PR returns the stored pull request with number, or nil
func (c *MockGitHubServerConfig) PR(number int) *github.PullRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.byNumber(number)
}

func (c *MockGitHubServerConfig) newPR(head, base, title, body string) *github.PullRequest {
	number := len(c.PRs) + 1
	pr := &github.PullRequest{
		Number:  github.Int(number),
		NodeID:  github.String(fmt.Sprintf("PR_node%d", number)),
		Title:   github.String(title),
		Body:    github.String(body),
		State:   github.String("open"),
		Draft:   github.Bool(false),
		Head:    &github.PullRequestBranch{Ref: github.String(head)},
		Base:    &github.PullRequestBranch{Ref: github.String(base)},
		HTMLURL: github.String(fmt.Sprintf("https://github.com/%s/%s/pull/%d", c.Owner, c.Repo, number)),
	}
	c.PRs = append(c.PRs, pr)
	return pr
}

func (c *MockGitHubServerConfig) byNumber(number int) *github.PullRequest {
	for _, pr := range c.PRs {
		if pr.GetNumber() == number {
			return pr
		}
	}
	return nil
}

// byHead returns the most recent PR for head
func (c *MockGitHubServerConfig) byHead(head string) *github.PullRequest {
	for i := len(c.PRs) - 1; i >= 0; i-- {
		if c.PRs[i].GetHead().GetRef() == head {
			return c.PRs[i]
		}
	}
	return nil
}

func (c *MockGitHubServerConfig) fail(w http.ResponseWriter, op string) bool {
	status, ok := c.Failures[op]
	if !ok {
		return false
	}
	writeJSON(w, status, map[string]string{"message": op + " failed"})
	return true
}

// NewMockGitHubServer creates an httptest server that mocks the GitHub REST and GraphQL endpoints
func NewMockGitHubServer(t *testing.T, config *MockGitHubServerConfig) *httptest.Server {
	t.Helper()
	if config == nil {
		config = NewMockGitHubServerConfig()
	}

	mux := http.NewServeMux()
	base := "/repos/" + config.Owner + "/" + config.Repo + "/pulls"

	mux.HandleFunc("GET "+base, func(w http.ResponseWriter, r *http.Request) {
		config.mu.Lock()
		defer config.mu.Unlock()
		if config.fail(w, "list") {
			return
		}

		// head is "owner:branch"
		head := strings.TrimPrefix(r.URL.Query().Get("head"), config.Owner+":")
		prs := []*github.PullRequest{}
		if pr := config.byHead(head); head != "" && pr != nil {
			prs = append(prs, pr)
		}
		writeJSON(w, http.StatusOK, prs)
	})

	mux.HandleFunc("POST "+base, func(w http.ResponseWriter, r *http.Request) {
		config.mu.Lock()
		defer config.mu.Unlock()
		if config.fail(w, "create") {
			return
		}

		var newPR github.NewPullRequest
		if err := json.NewDecoder(r.Body).Decode(&newPR); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		pr := config.newPR(newPR.GetHead(), newPR.GetBase(), newPR.GetTitle(), newPR.GetBody())
		pr.Draft = github.Bool(newPR.GetDraft())
		writeJSON(w, http.StatusCreated, pr)
	})

	mux.HandleFunc("GET "+base+"/{number}", func(w http.ResponseWriter, r *http.Request) {
		config.mu.Lock()
		defer config.mu.Unlock()

		pr := config.byNumber(pathNumber(r))
		if pr == nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
			return
		}
		writeJSON(w, http.StatusOK, pr)
	})

	mux.HandleFunc("PATCH "+base+"/{number}", func(w http.ResponseWriter, r *http.Request) {
		config.mu.Lock()
		defer config.mu.Unlock()
		if config.fail(w, "edit") {
			return
		}

		pr := config.byNumber(pathNumber(r))
		if pr == nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
			return
		}

		// The API sends base as a plain string, not {"ref": ...}
		var update struct {
			Title *string `json:"title,omitempty"`
			Body  *string `json:"body,omitempty"`
			Base  *string `json:"base,omitempty"`
		}
		if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if update.Title != nil {
			pr.Title = update.Title
		}
		if update.Body != nil {
			pr.Body = update.Body
		}
		if update.Base != nil {
			pr.Base = &github.PullRequestBranch{Ref: update.Base}
		}
		writeJSON(w, http.StatusOK, pr)
	})

	mux.HandleFunc("PUT "+base+"/{number}/merge", func(w http.ResponseWriter, r *http.Request) {
		config.mu.Lock()
		defer config.mu.Unlock()
		if config.fail(w, "merge") {
			return
		}

		pr := config.byNumber(pathNumber(r))
		if pr == nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
			return
		}
		if pr.GetDraft() {
			writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"message": "Pull Request is still a draft"})
			return
		}

		var req struct {
			MergeMethod string `json:"merge_method"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)

		pr.State = github.String("closed")
		pr.Merged = github.Bool(true)
		pr.MergedAt = &github.Timestamp{Time: time.Now()}
		config.Merged[pr.GetNumber()] = req.MergeMethod

		writeJSON(w, http.StatusOK, &github.PullRequestMergeResult{
			Merged:  github.Bool(true),
			Message: github.String("Pull Request successfully merged"),
		})
	})

	mux.HandleFunc("POST /graphql", func(w http.ResponseWriter, r *http.Request) {
		config.mu.Lock()
		defer config.mu.Unlock()
		if config.fail(w, "graphql") {
			return
		}

		var req struct {
			Query     string         `json:"query"`
			Variables map[string]any `json:"variables"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		nodeID, _ := req.Variables["pullRequestId"].(string)
		for _, pr := range config.PRs {
			if pr.GetNodeID() == nodeID {
				pr.Draft = github.Bool(false)
				writeJSON(w, http.StatusOK, map[string]any{
					"data": map[string]any{
						"markPullRequestReadyForReview": map[string]any{
							"pullRequest": map[string]any{"id": nodeID, "isDraft": false},
						},
					},
				})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"errors": []map[string]string{{"message": "Could not resolve to a node with the global id of '" + nodeID + "'"}},
		})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

// NewMockGitHubClient creates a review host client configured to use a mock server
func NewMockGitHubClient(t *testing.T, config *MockGitHubServerConfig) *githubpkg.Client {
	t.Helper()
	if config == nil {
		config = NewMockGitHubServerConfig()
	}
	server := NewMockGitHubServer(t, config)
	client, err := githubpkg.NewClientWithBaseURL(server.Client(), server.URL, config.Owner, config.Repo)
	require.NoError(t, err)
	return client
}

func pathNumber(r *http.Request) int {
	n, _ := strconv.Atoi(r.PathValue("number"))
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

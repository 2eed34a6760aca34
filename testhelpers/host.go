package testhelpers

import (
	"context"
	"fmt"
	"sync"

	"stacked.dev/stacked/internal/github"
)

// BaseUpdate is one UpdateBase call seen by a FakeHost
type BaseUpdate struct {
	Branch string
	Base   string
}

// FakeHost is an in-memory review host. It mirrors the host-side rules the
// engines rely on: a PR needs a pushed head, drafts cannot be merged, and when
// MainBranch is set only PRs based on it can be merged.
type FakeHost struct {
	mu sync.Mutex

	MainBranch string
	// RequirePushed rejects CreatePR for heads that were never pushed
	RequirePushed bool

	prs        []*github.PullRequest
	remote     map[string]bool
	nextNumber int

	Calls       []string
	Created     []github.CreatePROptions
	BaseUpdates []BaseUpdate
	Merged      []string
	Readied     []string
	// Failures makes an operation (by name, e.g. "Merge") return the error
	Failures map[string]error
}

// NewFakeHost creates a FakeHost whose first PR is numbered firstNumber
func NewFakeHost(mainBranch string, firstNumber int) *FakeHost {
	return &FakeHost{
		MainBranch: mainBranch,
		remote:     make(map[string]bool),
		nextNumber: firstNumber,
		Failures:   make(map[string]error),
	}
}

// MarkPushed records that branch exists on the remote
func (h *FakeHost) MarkPushed(branch string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.remote[branch] = true
}

// AddPR seeds a PR and returns its number
func (h *FakeHost) AddPR(head, base string, state github.PRState) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.remote[head] = true
	pr := h.add(head, base, state == github.StateDraft)
	pr.State = state
	return pr.Number
}

// PR returns a copy of the latest PR for head, or nil
func (h *FakeHost) PR(head string) *github.PullRequest {
	h.mu.Lock()
	defer h.mu.Unlock()
	if pr := h.find(head); pr != nil {
		cp := *pr
		return &cp
	}
	return nil
}

// IsMerged reports whether the PR for head is merged
func (h *FakeHost) IsMerged(head string) bool {
	pr := h.PR(head)
	return pr != nil && pr.State == github.StateMerged
}

// Count returns how often op was called
func (h *FakeHost) Count(op string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	var n int
	for _, c := range h.Calls {
		if c == op {
			n++
		}
	}
	return n
}

func (h *FakeHost) add(head, base string, draft bool) *github.PullRequest {
	number := h.nextNumber
	h.nextNumber++
	state := github.StateOpen
	if draft {
		state = github.StateDraft
	}
	pr := &github.PullRequest{
		Number: number,
		NodeID: fmt.Sprintf("PR_node%d", number),
		URL:    fmt.Sprintf("https://github.com/owner/repo/pull/%d", number),
		Head:   head,
		Base:   base,
		Draft:  draft,
		State:  state,
	}
	h.prs = append(h.prs, pr)
	return pr
}

func (h *FakeHost) find(head string) *github.PullRequest {
	for i := len(h.prs) - 1; i >= 0; i-- {
		if h.prs[i].Head == head {
			return h.prs[i]
		}
	}
	return nil
}

func (h *FakeHost) byNumber(number int) *github.PullRequest {
	for _, pr := range h.prs {
		if pr.Number == number {
			return pr
		}
	}
	return nil
}

func (h *FakeHost) record(op string) error {
	h.Calls = append(h.Calls, op)
	return h.Failures[op]
}

func (h *FakeHost) require(head string) (*github.PullRequest, error) {
	pr := h.find(head)
	if pr == nil {
		return nil, fmt.Errorf("no pull request for %s", head)
	}
	return pr, nil
}

// FindPR returns a copy of the PR for branch, or nil
func (h *FakeHost) FindPR(_ context.Context, branch string) (*github.PullRequest, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.record("FindPR"); err != nil {
		return nil, err
	}
	pr := h.find(branch)
	if pr == nil {
		return nil, nil
	}
	cp := *pr
	return &cp, nil
}

// CreatePR opens a PR and returns its URL
func (h *FakeHost) CreatePR(_ context.Context, opts github.CreatePROptions) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.record("CreatePR"); err != nil {
		return "", err
	}
	if h.RequirePushed && !h.remote[opts.Head] {
		return "", fmt.Errorf("head %s does not exist on the remote", opts.Head)
	}
	if pr := h.find(opts.Head); pr != nil && pr.State.IsOpen() {
		return "", fmt.Errorf("a pull request already exists for %s", opts.Head)
	}
	pr := h.add(opts.Head, opts.Base, opts.Draft)
	pr.Title = opts.Title
	pr.Body = opts.Body
	h.Created = append(h.Created, opts)
	return pr.URL, nil
}

// UpdateBody replaces the body of PR number
func (h *FakeHost) UpdateBody(_ context.Context, number int, body string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.record("UpdateBody"); err != nil {
		return err
	}
	pr := h.byNumber(number)
	if pr == nil {
		return fmt.Errorf("no pull request #%d", number)
	}
	pr.Body = body
	return nil
}

// UpdateBase re-points the PR for branch
func (h *FakeHost) UpdateBase(_ context.Context, branch, base string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.record("UpdateBase"); err != nil {
		return err
	}
	pr, err := h.require(branch)
	if err != nil {
		return err
	}
	pr.Base = base
	h.BaseUpdates = append(h.BaseUpdates, BaseUpdate{Branch: branch, Base: base})
	return nil
}

// State returns the PR state for branch
func (h *FakeHost) State(_ context.Context, branch string) (github.PRState, bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.record("State"); err != nil {
		return "", false, err
	}
	pr := h.find(branch)
	if pr == nil {
		return "", false, nil
	}
	return pr.State, true, nil
}

// IsDraft reports whether the PR for branch is a draft
func (h *FakeHost) IsDraft(_ context.Context, branch string) (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.record("IsDraft"); err != nil {
		return false, err
	}
	pr, err := h.require(branch)
	if err != nil {
		return false, err
	}
	return pr.Draft, nil
}

// MarkReady clears the draft flag of the PR for branch
func (h *FakeHost) MarkReady(_ context.Context, branch string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.record("MarkReady"); err != nil {
		return err
	}
	pr, err := h.require(branch)
	if err != nil {
		return err
	}
	pr.Draft = false
	if pr.State == github.StateDraft {
		pr.State = github.StateOpen
	}
	h.Readied = append(h.Readied, branch)
	return nil
}

// Merge squash-merges the PR for branch
func (h *FakeHost) Merge(_ context.Context, branch string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.record("Merge"); err != nil {
		return err
	}
	pr, err := h.require(branch)
	if err != nil {
		return err
	}
	switch {
	case pr.Draft:
		return fmt.Errorf("pull request #%d is still a draft", pr.Number)
	case !pr.State.IsOpen():
		return fmt.Errorf("pull request #%d is %s", pr.Number, pr.State)
	case h.MainBranch != "" && pr.Base != h.MainBranch:
		return fmt.Errorf("pull request #%d is based on %s, not %s", pr.Number, pr.Base, h.MainBranch)
	}
	pr.State = github.StateMerged
	h.Merged = append(h.Merged, branch)
	return nil
}

// LinkFakes wires revs and host together: pushes make branches visible to the
// host and RebaseAll drops changes whose PR was merged
func LinkFakes(revs *FakeRevisions, host *FakeHost) {
	revs.OnPush = host.MarkPushed
	revs.Squashed = host.IsMerged
}

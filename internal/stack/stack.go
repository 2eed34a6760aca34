// Package stack resolves a revision range into the ordered changes and bookmarks
// that make up a stack of pull requests, and renders the stack index that links
// those pull requests together.
//
// Stack order is oldest change first. That single ordering drives bookmark
// numbering, PR base assignment and merge sequencing.
package stack

import (
	"context"

	"stacked.dev/stacked/internal/github"
)

// Revisions is the revision-control service the engines depend on
type Revisions interface {
	StackChangeIDs(ctx context.Context, mainBranch, tip string) ([]string, error)
	EmptyChangeIDs(ctx context.Context, mainBranch string) ([]string, error)
	Description(ctx context.Context, changeID string) (string, error)
	// Bookmark returns the bookmark on changeID; ok is false when there is none
	Bookmark(ctx context.Context, changeID string) (name string, ok bool, err error)
	CreateBookmark(ctx context.Context, changeID, name string) error
	Push(ctx context.Context, bookmark string) error
	PushAll(ctx context.Context) error
	Fetch(ctx context.Context) error
	Rebase(ctx context.Context, destination string) error
	RebaseAll(ctx context.Context, destination string) error
	Abandon(ctx context.Context, changeID string) error
	Log(ctx context.Context, revset string) error
}

// ReviewHost is the code-review service the engines depend on
type ReviewHost interface {
	// FindPR returns nil when branch has no pull request
	FindPR(ctx context.Context, branch string) (*github.PullRequest, error)
	CreatePR(ctx context.Context, opts github.CreatePROptions) (string, error)
	UpdateBody(ctx context.Context, number int, body string) error
	UpdateBase(ctx context.Context, branch, base string) error
	// State returns ok=false when branch has no pull request
	State(ctx context.Context, branch string) (state github.PRState, ok bool, err error)
	IsDraft(ctx context.Context, branch string) (bool, error)
	MarkReady(ctx context.Context, branch string) error
	Merge(ctx context.Context, branch string) error
}

// Resolver turns revision ranges into stack entries
type Resolver struct {
	revs       Revisions
	mainBranch string
}

// NewResolver creates a Resolver for stacks based on mainBranch
func NewResolver(revs Revisions, mainBranch string) *Resolver {
	return &Resolver{revs: revs, mainBranch: mainBranch}
}

// ChangeIDs returns the changes between the main branch and tip, oldest first.
// An empty tip means the working copy.
func (r *Resolver) ChangeIDs(ctx context.Context, tip string) ([]string, error) {
	return r.revs.StackChangeIDs(ctx, r.mainBranch, tip)
}

// Bookmarks returns the bookmarks attached to the stack in stack order, skipping
// changes without one. A non-empty stopAt ends the walk after that bookmark; the
// caller detects a missing stopAt by checking the last element.
func (r *Resolver) Bookmarks(ctx context.Context, stopAt string) ([]string, error) {
	ids, err := r.ChangeIDs(ctx, "")
	if err != nil {
		return nil, err
	}

	var bookmarks []string
	for _, id := range ids {
		name, ok, err := r.revs.Bookmark(ctx, id)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		bookmarks = append(bookmarks, name)
		if stopAt != "" && name == stopAt {
			break
		}
	}
	return bookmarks, nil
}

// Contains reports whether bookmarks ends with target, i.e. the walk reached it
func Contains(bookmarks []string, target string) bool {
	return len(bookmarks) > 0 && bookmarks[len(bookmarks)-1] == target
}

package testhelpers

import (
	"context"
	"fmt"
	"sync"
)

// FakeChange is one change in a FakeRevisions stack
type FakeChange struct {
	ID          string
	Description string
	Bookmark    string
	Empty       bool
}

// FakeRevisions is an in-memory revision service. Changes are held in stack
// order (oldest first); the last change plays the working copy.
type FakeRevisions struct {
	mu sync.Mutex

	Changes []*FakeChange

	// Calls records every operation as "op arg"
	Calls []string
	// Created lists bookmarks created, in order
	Created []string
	// Pushed lists bookmarks pushed individually, in order
	Pushed    []string
	Abandoned []string
	// Failures makes an operation (by name, e.g. "Push") return the error
	Failures map[string]error

	// Squashed reports whether a bookmark's change landed upstream; RebaseAll
	// drops those changes the way --skip-emptied does
	Squashed func(bookmark string) bool
	// OnPush is invoked for every bookmark that reaches the remote
	OnPush func(bookmark string)
}

// NewFakeRevisions creates a FakeRevisions holding changes
func NewFakeRevisions(changes ...FakeChange) *FakeRevisions {
	f := &FakeRevisions{Failures: make(map[string]error)}
	for i := range changes {
		c := changes[i]
		f.Changes = append(f.Changes, &c)
	}
	return f
}

// BookmarkOf returns the bookmark currently on change id
func (f *FakeRevisions) BookmarkOf(id string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c := f.find(id); c != nil {
		return c.Bookmark
	}
	return ""
}

// Count returns how often op was called
func (f *FakeRevisions) Count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int
	for _, c := range f.Calls {
		if c == op || len(c) > len(op) && c[:len(op)+1] == op+" " {
			n++
		}
	}
	return n
}

func (f *FakeRevisions) record(op string, arg string) error {
	if arg == "" {
		f.Calls = append(f.Calls, op)
	} else {
		f.Calls = append(f.Calls, op+" "+arg)
	}
	return f.Failures[op]
}

func (f *FakeRevisions) find(id string) *FakeChange {
	for _, c := range f.Changes {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// StackChangeIDs returns every change up to and including tip
func (f *FakeRevisions) StackChangeIDs(_ context.Context, mainBranch, tip string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("StackChangeIDs", mainBranch+".."+tip); err != nil {
		return nil, err
	}

	var ids []string
	for _, c := range f.Changes {
		ids = append(ids, c.ID)
		if tip != "" && tip != "@" && c.ID == tip {
			break
		}
	}
	return ids, nil
}

// EmptyChangeIDs returns empty changes below the working copy
func (f *FakeRevisions) EmptyChangeIDs(_ context.Context, mainBranch string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("EmptyChangeIDs", mainBranch); err != nil {
		return nil, err
	}

	var ids []string
	for i, c := range f.Changes {
		if c.Empty && i < len(f.Changes)-1 {
			ids = append(ids, c.ID)
		}
	}
	return ids, nil
}

// Description returns the change description
func (f *FakeRevisions) Description(_ context.Context, changeID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("Description", changeID); err != nil {
		return "", err
	}
	c := f.find(changeID)
	if c == nil {
		return "", fmt.Errorf("revision %s doesn't exist", changeID)
	}
	return c.Description, nil
}

// Bookmark returns the bookmark on the change
func (f *FakeRevisions) Bookmark(_ context.Context, changeID string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("Bookmark", changeID); err != nil {
		return "", false, err
	}
	c := f.find(changeID)
	if c == nil || c.Bookmark == "" {
		return "", false, nil
	}
	return c.Bookmark, true, nil
}

// CreateBookmark attaches name to the change
func (f *FakeRevisions) CreateBookmark(_ context.Context, changeID, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("CreateBookmark", changeID+" "+name); err != nil {
		return err
	}
	c := f.find(changeID)
	if c == nil {
		return fmt.Errorf("revision %s doesn't exist", changeID)
	}
	for _, other := range f.Changes {
		if other.Bookmark == name {
			return fmt.Errorf("bookmark %s already exists", name)
		}
	}
	c.Bookmark = name
	f.Created = append(f.Created, name)
	return nil
}

// Push publishes one bookmark
func (f *FakeRevisions) Push(_ context.Context, bookmark string) error {
	f.mu.Lock()
	if err := f.record("Push", bookmark); err != nil {
		f.mu.Unlock()
		return err
	}
	f.Pushed = append(f.Pushed, bookmark)
	onPush := f.OnPush
	f.mu.Unlock()

	if onPush != nil {
		onPush(bookmark)
	}
	return nil
}

// PushAll publishes every bookmark
func (f *FakeRevisions) PushAll(_ context.Context) error {
	f.mu.Lock()
	if err := f.record("PushAll", ""); err != nil {
		f.mu.Unlock()
		return err
	}
	var bookmarks []string
	for _, c := range f.Changes {
		if c.Bookmark != "" {
			bookmarks = append(bookmarks, c.Bookmark)
		}
	}
	onPush := f.OnPush
	f.mu.Unlock()

	if onPush != nil {
		for _, b := range bookmarks {
			onPush(b)
		}
	}
	return nil
}

// Fetch records the call
func (f *FakeRevisions) Fetch(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.record("Fetch", "")
}

// Rebase records the call
func (f *FakeRevisions) Rebase(_ context.Context, destination string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.record("Rebase", destination)
}

// RebaseAll drops changes whose bookmark was squashed upstream
func (f *FakeRevisions) RebaseAll(_ context.Context, destination string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("RebaseAll", destination); err != nil {
		return err
	}
	if f.Squashed == nil {
		return nil
	}

	kept := f.Changes[:0]
	for _, c := range f.Changes {
		if c.Bookmark != "" && f.Squashed(c.Bookmark) {
			continue
		}
		kept = append(kept, c)
	}
	f.Changes = kept
	return nil
}

// Abandon removes the change from the stack
func (f *FakeRevisions) Abandon(_ context.Context, changeID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("Abandon", changeID); err != nil {
		return err
	}
	for i, c := range f.Changes {
		if c.ID == changeID {
			f.Changes = append(f.Changes[:i], f.Changes[i+1:]...)
			f.Abandoned = append(f.Abandoned, changeID)
			return nil
		}
	}
	return fmt.Errorf("revision %s doesn't exist", changeID)
}

// Log records the call
func (f *FakeRevisions) Log(_ context.Context, revset string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.record("Log", revset)
}

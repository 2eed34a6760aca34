// Package push publishes a stack: every change gets a bookmark and a pull
// request based on the previous change's bookmark, and every pull request body
// ends with an index of the whole stack.
package push

import (
	"errors"
	"fmt"

	"stacked.dev/stacked/internal/github"
	"stacked.dev/stacked/internal/jj"
	"stacked.dev/stacked/internal/runtime"
	"stacked.dev/stacked/internal/stack"
	"stacked.dev/stacked/internal/tui"
)

// ErrPrefixRequired is returned when no bookmark prefix is given
var ErrPrefixRequired = errors.New("a bookmark prefix is required")

// Options contains options for the push command
type Options struct {
	// Prefix names new bookmarks as Prefix + stack position
	Prefix string
	// Tip is the newest change of the stack; empty means the working copy
	Tip string
}

// Entry describes one change of the pushed stack
type Entry struct {
	ChangeID        string
	Description     string
	Bookmark        string
	PRNumber        int
	URL             string
	State           github.PRState
	BookmarkCreated bool
	PRCreated       bool
	BaseUpdated     bool
}

// Result lists the pushed stack in stack order
type Result struct {
	Entries []Entry
}

// Numbers returns the PR numbers in stack order
func (r *Result) Numbers() []int {
	numbers := make([]int, len(r.Entries))
	for i, e := range r.Entries {
		numbers[i] = e.PRNumber
	}
	return numbers
}

// Action performs the push operation. It is strictly sequential and stops at
// the first failure; re-running is safe because existing bookmarks and pull
// requests are reused.
func Action(ctx *runtime.Context, opts Options) (*Result, error) {
	if opts.Prefix == "" {
		return nil, ErrPrefixRequired
	}

	splog := ctx.Splog
	mainBranch := ctx.Config.MainBranch

	ids, err := ctx.Resolver().ChangeIDs(ctx.Context, opts.Tip)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve stack: %w", err)
	}
	if len(ids) == 0 {
		tip := opts.Tip
		if tip == "" {
			tip = jj.WorkingCopy
		}
		splog.Info("Nothing to push: no changes between %s and %s", mainBranch, tip)
		return &Result{}, nil
	}

	result := &Result{}
	previous := ""
	for i, id := range ids {
		base := previous
		if base == "" {
			base = mainBranch
		}

		entry, err := syncChange(ctx, opts.Prefix, i+1, id, base)
		if err != nil {
			return nil, err
		}
		result.Entries = append(result.Entries, *entry)
		// merged or closed PRs drop out of the chain
		if entry.State.IsOpen() {
			previous = entry.Bookmark
		}
	}

	if err := updateBodies(ctx, result); err != nil {
		return nil, err
	}

	printSummary(splog, result)
	return result, nil
}

// syncChange makes sure the change at 1-based position n has a pushed bookmark
// and a pull request based on base
func syncChange(ctx *runtime.Context, prefix string, n int, id, base string) (*Entry, error) {
	revs := ctx.Revisions
	host := ctx.Host
	splog := ctx.Splog

	description, err := revs.Description(ctx.Context, id)
	if err != nil {
		return nil, fmt.Errorf("failed to read description of %s: %w", id, err)
	}
	entry := &Entry{ChangeID: id, Description: description}

	bookmark, ok, err := revs.Bookmark(ctx.Context, id)
	if err != nil {
		return nil, fmt.Errorf("failed to read bookmark of %s: %w", id, err)
	}
	if !ok {
		bookmark = stack.BookmarkName(prefix, n)
		if err := revs.CreateBookmark(ctx.Context, id, bookmark); err != nil {
			return nil, fmt.Errorf("failed to create bookmark %s: %w", bookmark, err)
		}
		entry.BookmarkCreated = true
		splog.Debug("Created bookmark %s on %s", bookmark, id)
	}
	entry.Bookmark = bookmark

	// The host only resolves pull requests for branches that exist remotely
	if err := revs.Push(ctx.Context, bookmark); err != nil {
		return nil, fmt.Errorf("failed to push %s: %w", bookmark, err)
	}

	pr, err := host.FindPR(ctx.Context, bookmark)
	if err != nil {
		return nil, err
	}

	if pr == nil {
		url, err := host.CreatePR(ctx.Context, github.CreatePROptions{
			Title: stack.Title(bookmark, description),
			Head:  bookmark,
			Base:  base,
			Draft: ctx.Config.Draft,
		})
		if err != nil {
			return nil, err
		}
		splog.Debug("Created PR for %s: %s", bookmark, url)

		// The create response is not relied on for the number
		pr, err = host.FindPR(ctx.Context, bookmark)
		if err != nil {
			return nil, err
		}
		if pr == nil {
			return nil, fmt.Errorf("created a pull request for %s but could not find it", bookmark)
		}
		entry.PRCreated = true
	} else if pr.State.IsOpen() && pr.Base != base {
		if err := host.UpdateBase(ctx.Context, bookmark, base); err != nil {
			return nil, err
		}
		entry.BaseUpdated = true
		splog.Debug("Retargeted %s from %s to %s", bookmark, pr.Base, base)
	} else if !pr.State.IsOpen() {
		splog.Warn("PR #%d for %s is %s", pr.Number, bookmark, pr.State)
	}

	entry.PRNumber = pr.Number
	entry.URL = pr.URL
	entry.State = pr.State
	return entry, nil
}

// updateBodies rewrites every body with the full stack index
func updateBodies(ctx *runtime.Context, result *Result) error {
	numbers := result.Numbers()
	for _, e := range result.Entries {
		body := stack.RenderBody(e.Description, numbers, e.PRNumber)
		if err := ctx.Host.UpdateBody(ctx.Context, e.PRNumber, body); err != nil {
			return err
		}
	}
	return nil
}

func printSummary(splog *tui.Splog, result *Result) {
	for _, e := range result.Entries {
		var note string
		switch {
		case e.PRCreated:
			note = " (created)"
		case e.BaseUpdated:
			note = " (retargeted)"
		}
		splog.Success("%s %s %s%s", tui.ColorPRNumber(e.PRNumber), tui.ColorBookmark(e.Bookmark), tui.ColorURL(e.URL), note)
	}
}

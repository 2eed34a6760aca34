package stack

import (
	"fmt"
	"strconv"
	"strings"
)

// BookmarkName returns the bookmark for 1-based stack position n
func BookmarkName(prefix string, n int) string {
	return prefix + strconv.Itoa(n)
}

// Title returns the PR title for a bookmark and its change description
func Title(bookmark, description string) string {
	return fmt.Sprintf("%s: %s", bookmark, FirstLine(description))
}

// FirstLine returns the first line of a description
func FirstLine(description string) string {
	line, _, _ := strings.Cut(description, "\n")
	return strings.TrimSpace(line)
}

// IndexBlock renders the stack index for the PR numbered current. numbers are in
// stack order; the block lists them newest first and marks current. A stack of
// one PR has no index.
func IndexBlock(numbers []int, current int) string {
	if len(numbers) <= 1 {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n---")
	for i := len(numbers) - 1; i >= 0; i-- {
		if numbers[i] == current {
			fmt.Fprintf(&b, "\n* **->** #%d", numbers[i])
		} else {
			fmt.Fprintf(&b, "\n* #%d", numbers[i])
		}
	}
	return b.String()
}

// RenderBody returns the PR body: the change description followed by the stack index
func RenderBody(description string, numbers []int, current int) string {
	return description + "\n" + IndexBlock(numbers, current)
}

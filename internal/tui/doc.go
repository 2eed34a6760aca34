// Package tui provides the terminal side of stacked.
//
// It handles:
//   - Structured logging and status reporting (Splog)
//   - Prompts (survey for confirmations, bubbletea for free text)
//   - Terminal styling and colors (using lipgloss)
package tui

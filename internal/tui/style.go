package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

var (
	bookmarkStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	prNumberStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("13")).Bold(true)
	greenStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	yellowStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	urlStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Underline(true)
)

// ColorBookmark colors a bookmark name
func ColorBookmark(name string) string { return bookmarkStyle.Render(name) }

// ColorPRNumber colors a PR number as #N
func ColorPRNumber(number int) string { return prNumberStyle.Render(fmt.Sprintf("#%d", number)) }

// ColorGreen colors text green
func ColorGreen(text string) string { return greenStyle.Render(text) }

// ColorYellow colors text yellow
func ColorYellow(text string) string { return yellowStyle.Render(text) }

// ColorDim makes text dim/gray
func ColorDim(text string) string { return dimStyle.Render(text) }

// ColorURL styles a link
func ColorURL(url string) string { return urlStyle.Render(url) }

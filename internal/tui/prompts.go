package tui

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	stackederrors "stacked.dev/stacked/internal/errors"
)

// Prompter asks the user questions
type Prompter interface {
	// Input asks for a line of free text
	Input(prompt string) (string, error)
	// Confirm asks a yes/no question
	Confirm(message string, defaultValue bool) (bool, error)
}

// checkInteractiveAllowed returns an error if interactive mode is disabled for testing
func checkInteractiveAllowed() error {
	if os.Getenv("STACKED_TEST_NO_INTERACTIVE") != "" {
		return stackederrors.ErrInteractiveDisabled
	}
	return nil
}

// IsAffirmative reports whether answer is "y" or "yes", ignoring case and surrounding space
func IsAffirmative(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}

// TerminalPrompter prompts on the terminal. On a TTY it uses bubbletea for
// free text and survey for confirmations; otherwise it reads plain lines.
type TerminalPrompter struct {
	in     *bufio.Reader
	out    io.Writer
	useTTY bool
}

// NewTerminalPrompter creates a prompter on stdin/stdout
func NewTerminalPrompter() *TerminalPrompter {
	return &TerminalPrompter{
		in:     bufio.NewReader(os.Stdin),
		out:    os.Stdout,
		useTTY: IsTTY(),
	}
}

// NewLinePrompter creates a prompter that reads answers line by line from in
func NewLinePrompter(in io.Reader, out io.Writer) *TerminalPrompter {
	return &TerminalPrompter{
		in:  bufio.NewReader(in),
		out: out,
	}
}

// Input asks for free text and returns the answer without its line ending
func (p *TerminalPrompter) Input(prompt string) (string, error) {
	if err := checkInteractiveAllowed(); err != nil {
		return "", err
	}
	if p.useTTY {
		return promptTextInput(prompt)
	}
	return p.readLine(prompt)
}

// Confirm asks a yes/no question; an empty answer takes defaultValue
func (p *TerminalPrompter) Confirm(message string, defaultValue bool) (bool, error) {
	if err := checkInteractiveAllowed(); err != nil {
		return false, err
	}

	if p.useTTY {
		result := defaultValue
		prompt := &survey.Confirm{
			Message: message,
			Default: defaultValue,
		}
		if err := survey.AskOne(prompt, &result); err != nil {
			return false, err
		}
		return result, nil
	}

	suffix := " [y/N] "
	if defaultValue {
		suffix = " [Y/n] "
	}
	answer, err := p.readLine(message + suffix)
	if err != nil {
		return false, err
	}
	if strings.TrimSpace(answer) == "" {
		return defaultValue, nil
	}
	return IsAffirmative(answer), nil
}

func (p *TerminalPrompter) readLine(prompt string) (string, error) {
	if _, err := fmt.Fprint(p.out, prompt); err != nil {
		return "", err
	}
	// end of input answers with whatever was typed, possibly nothing
	line, err := p.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read answer: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// textInputModel is a single-line text prompt
type textInputModel struct {
	textInput textinput.Model
	prompt    string
	done      bool
	err       error
}

func (m textInputModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m textInputModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.Type {
		case tea.KeyEnter:
			m.done = true
			return m, tea.Quit
		case tea.KeyCtrlC, tea.KeyEsc:
			m.err = fmt.Errorf("canceled")
			m.done = true
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

func (m textInputModel) View() string {
	if m.done {
		return ""
	}
	return lipgloss.NewStyle().Render(m.prompt + m.textInput.View())
}

func promptTextInput(prompt string) (string, error) {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Focus()
	ti.CharLimit = 200
	ti.Width = 40

	p := tea.NewProgram(textInputModel{textInput: ti, prompt: prompt}, tea.WithInput(os.Stdin), tea.WithOutput(os.Stdout))
	model, err := p.Run()
	if err != nil {
		return "", err
	}

	final, ok := model.(textInputModel)
	if !ok {
		return "", fmt.Errorf("unexpected model type")
	}
	if final.err != nil {
		return "", final.err
	}
	return final.textInput.Value(), nil
}

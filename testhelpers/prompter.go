package testhelpers

import (
	"errors"
	"sync"
)

// ErrNoAnswer is returned by FakePrompter when it runs out of scripted answers
var ErrNoAnswer = errors.New("no scripted answer left")

// FakePrompter answers prompts from scripted queues and records what was asked
type FakePrompter struct {
	mu       sync.Mutex
	Answers  []string
	Confirms []bool
	Asked    []string
}

// NewFakePrompter creates a FakePrompter answering Input calls with answers
func NewFakePrompter(answers ...string) *FakePrompter {
	return &FakePrompter{Answers: answers}
}

// Input pops the next scripted answer
func (p *FakePrompter) Input(prompt string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Asked = append(p.Asked, prompt)
	if len(p.Answers) == 0 {
		return "", ErrNoAnswer
	}
	answer := p.Answers[0]
	p.Answers = p.Answers[1:]
	return answer, nil
}

// Confirm pops the next scripted confirmation
func (p *FakePrompter) Confirm(message string, _ bool) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Asked = append(p.Asked, message)
	if len(p.Confirms) == 0 {
		return false, ErrNoAnswer
	}
	answer := p.Confirms[0]
	p.Confirms = p.Confirms[1:]
	return answer, nil
}

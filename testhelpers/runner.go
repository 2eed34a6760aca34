// Package testhelpers provides fakes for the revision service, the review host and
// the command runner, plus a mock GitHub API server.
package testhelpers

import (
	"context"
	"strings"
	"sync"
)

// RecordedCall is one invocation seen by a FakeRunner
type RecordedCall struct {
	Name        string
	Args        []string
	Interactive bool
}

// CommandLine returns the call as a single space separated string
func (c RecordedCall) CommandLine() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// FakeRunner implements runner.CommandRunner by recording calls and delegating
// the result to Handler. A nil Handler returns empty output.
type FakeRunner struct {
	mu      sync.Mutex
	Calls   []RecordedCall
	Handler func(name string, args []string) (string, error)
}

// NewFakeRunner creates a FakeRunner with the given handler
func NewFakeRunner(handler func(name string, args []string) (string, error)) *FakeRunner {
	return &FakeRunner{Handler: handler}
}

// StaticRunner returns a FakeRunner that answers every call with output
func StaticRunner(output string) *FakeRunner {
	return NewFakeRunner(func(string, []string) (string, error) {
		return output, nil
	})
}

// QueueRunner returns a FakeRunner that answers calls with outputs in order,
// then with empty output once the queue is exhausted
func QueueRunner(outputs ...string) *FakeRunner {
	var i int
	return NewFakeRunner(func(string, []string) (string, error) {
		if i >= len(outputs) {
			return "", nil
		}
		out := outputs[i]
		i++
		return out, nil
	})
}

// Run records the call and returns the handler's result
func (f *FakeRunner) Run(_ context.Context, name string, args ...string) (string, error) {
	f.mu.Lock()
	f.Calls = append(f.Calls, RecordedCall{Name: name, Args: append([]string(nil), args...)})
	handler := f.Handler
	f.mu.Unlock()

	if handler == nil {
		return "", nil
	}
	return handler(name, args)
}

// RunInteractive records the call; the handler's output is discarded
func (f *FakeRunner) RunInteractive(_ context.Context, name string, args ...string) error {
	f.mu.Lock()
	f.Calls = append(f.Calls, RecordedCall{Name: name, Args: append([]string(nil), args...), Interactive: true})
	handler := f.Handler
	f.mu.Unlock()

	if handler == nil {
		return nil
	}
	_, err := handler(name, args)
	return err
}

// LastCall returns the most recent call, or the zero value if none
func (f *FakeRunner) LastCall() RecordedCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Calls) == 0 {
		return RecordedCall{}
	}
	return f.Calls[len(f.Calls)-1]
}

// CommandLines returns every recorded call as a command line
func (f *FakeRunner) CommandLines() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	lines := make([]string, len(f.Calls))
	for i, c := range f.Calls {
		lines[i] = c.CommandLine()
	}
	return lines
}

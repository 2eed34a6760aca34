// Package runtime provides the execution context for stacked commands.
//
// It encapsulates the dependencies an action needs for one invocation: the
// loaded configuration, the logger, the revision service, the review host
// and the prompter.
package runtime

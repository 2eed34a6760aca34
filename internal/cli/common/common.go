// Package common provides shared helper functions for CLI commands.
package common

import (
	"errors"

	"github.com/spf13/cobra"

	stackederrors "stacked.dev/stacked/internal/errors"
	"stacked.dev/stacked/internal/runtime"
	"stacked.dev/stacked/internal/tui"
)

// Run builds a runtime context with factory and hands it to fn. Console output
// goes to the command's output stream and every message is also appended to the
// log file. A freshly written default config ends the command successfully.
func Run(cmd *cobra.Command, factory runtime.Factory, opts runtime.Options, fn func(ctx *runtime.Context) error) error {
	splog, err := tui.NewSplogWithWriter(cmd.OutOrStdout(), tui.GetLogFilePath())
	if err != nil {
		// The log file is best effort
		splog, _ = tui.NewSplogWithWriter(cmd.OutOrStdout(), "")
		splog.Debug("log file disabled: %v", err)
	}
	defer func() { _ = splog.Close() }()

	splog.Debug("running %s (run %s)", cmd.CommandPath(), splog.RunID())

	ctx, err := factory(cmd.Context(), splog, opts)
	if errors.Is(err, stackederrors.ErrConfigCreated) {
		splog.Info("%v", err)
		return nil
	}
	if err != nil {
		splog.Debug("failed to set up context: %v", err)
		return err
	}

	if err := fn(ctx); err != nil {
		splog.Debug("%s failed: %v", cmd.CommandPath(), err)
		return err
	}
	return nil
}

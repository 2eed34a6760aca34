// Package cli wires the stacked commands into a cobra command tree.
package cli

import (
	"github.com/spf13/cobra"

	"stacked.dev/stacked/internal/runtime"
)

// BuildInfo is stamped into the binary at build time
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// NewRootCmd creates the root cobra command. factory builds the runtime
// context for every subcommand that touches a repository.
func NewRootCmd(info BuildInfo, factory runtime.Factory) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "stacked",
		Short: "Stacked keeps a chain of GitHub pull requests in sync with a jj stack",
		Long: `Stacked keeps a chain of GitHub pull requests in sync with a stack of jj changes.

Every change between the main branch and the working copy gets a bookmark and
a pull request based on the change before it. Merging retires the stack from
the bottom and re-targets whatever is left.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newPushCmd(factory))
	rootCmd.AddCommand(newMergeCmd(factory))
	rootCmd.AddCommand(newUpCmd(factory))
	rootCmd.AddCommand(newVersionCmd(info))

	return rootCmd
}

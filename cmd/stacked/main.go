package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"stacked.dev/stacked/internal/cli"
	"stacked.dev/stacked/internal/runtime"
	"stacked.dev/stacked/internal/tui"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tui.ConfigureColor()

	rootCmd := cli.NewRootCmd(cli.BuildInfo{Version: version, Commit: commit, Date: date}, runtime.GetContext)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if splog, logErr := tui.NewSplogWithWriter(os.Stderr, ""); logErr == nil {
			splog.Error("%v", err)
		}
		stop()
		os.Exit(1)
	}
}

// Package main is the entry point for the ranchup CLI.
//
// ranchup upgrades one service on a Rancher cluster to a new image
// without downtime: it starts an in-service upgrade, waits for Rancher to
// report it as upgraded and finishes it, or rolls it back when anything
// goes wrong. It is meant to run as the last step of a CI pipeline.
//
// For detailed usage information, run:
//
//	ranchup --help
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/imamik/ranchup/cmd/ranchup/commands"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

// run executes the CLI. An interrupt or SIGTERM cancels the command's
// context, so a running upgrade is rolled back before the process exits.
func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

// Copyright 2026 The Foreman Project.
// Licensed under the GPLv3, see LICENSE file for details.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/theforeman/foreman-installer/cmd"
)

func main() {
	os.Exit(Main(os.Args))
}

// Main runs the hooks command with args and returns the exit code.
func Main(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmdCtx, err := cmd.DefaultContext(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR %v\n", err)
		return 2
	}
	return cmd.Main(NewHooksCommand(), cmdCtx, args[1:])
}

// Package main is the entry point for the rorv CLI application.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/eykd/rorv/cmd"
)

func main() {
	// Cancelled on SIGINT so in-flight registry lookups stop early.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	code := cmd.Main(ctx, os.Args[1:])
	cancel()
	os.Exit(code)
}

package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/arthur-debert/dupes/internal/cli"
	"github.com/pterm/pterm"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd := cli.NewRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		pterm.Error.Println(err)
		stop()
		os.Exit(1)
	}
}

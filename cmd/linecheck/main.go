package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"linecheck/internal/cli"

	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cli.NewRootCommand().ExecuteContext(ctx); err != nil {
		// the report already shows unreadable files
		if !errors.Is(err, cli.ErrScanFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		stop()
		os.Exit(1)
	}
}

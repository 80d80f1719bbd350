package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"appraiser_directory/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := cli.Execute(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "sitetool:", err)
		os.Exit(1)
	}
}

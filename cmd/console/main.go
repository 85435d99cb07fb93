package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"smart_apartment/console"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd := console.NewRootCmd(console.DefaultContainer, os.Stdin)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

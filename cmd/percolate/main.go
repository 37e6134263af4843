package main

import (
	"context"
	"os"
	"os/signal"

	"percolation_tool/pkg/cli"
)

func main() {
	// Ctrl+C 时取消还没开始的试验
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := cli.Execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

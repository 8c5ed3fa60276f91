package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jarmon/jarmonbuild/cmd/jarmonbuild/commands"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := commands.Execute(ctx, os.Args[1:])
	cancel()
	os.Exit(code)
}

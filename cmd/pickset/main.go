// Command pickset runs the image review API and its operator commands.
//
// @title       Pickset API
// @version     1.0
// @description Side-by-side image review: queues, uploads, selections and progress.
// @BasePath    /api/v1
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/tbourn/go-pickset-backend/internal/cli"
)

// Version is set at build time via -ldflags "-X main.Version=...".
var Version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := cli.Execute(ctx, Version, os.Args[1:])
	stop()
	os.Exit(code)
}

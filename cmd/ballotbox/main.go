package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"ballotbox/internal/app/bootstrap"
)

// Console process entrypoint.
// Data flow:
// 1) Load config and restore persisted ballot state.
// 2) Build app wiring (ports + adapters + use cases).
// 3) Drive the numbered menu over stdin/stdout until exit or EOF.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.BuildConsole(ctx, os.Args[1:], os.Stdin, os.Stdout)
	if err != nil {
		log.Fatalf("bootstrap console failed: %v", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Printf("console shutdown close failed: %v", err)
		}
	}()

	if err := app.Run(ctx); err != nil && ctx.Err() == nil {
		log.Printf("ballotbox stopped with error: %v", err)
	}
}

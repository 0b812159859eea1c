package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/benz9527/xtree/internal/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := app.Execute(ctx, os.Stdout, os.Args[1:]...); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "xtree: %+v\n", err)
		stop()
		os.Exit(1)
	}
}

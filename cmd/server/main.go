package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/DAVIDafergan/tatpro-intake/internal/app"
	"github.com/DAVIDafergan/tatpro-intake/internal/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := app.NewServer(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
	if err := srv.Run(ctx); err != nil {
		log.Fatal(err)
	}
}

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/aussiebroadwan/tenancy/internal/tenancy/app"
)

func main() {
	cfg, err := app.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = application.Run(ctx)
	stop()
	if err != nil {
		log.Fatalf("application error: %v", err)
	}
}

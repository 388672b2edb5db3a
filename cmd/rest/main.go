package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"prompt-builder-bot/internal/bootstrap"
	"prompt-builder-bot/internal/config"
	"prompt-builder-bot/internal/server"
	"prompt-builder-bot/internal/tracer"
	"prompt-builder-bot/pkg/database"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	shutdownTracer := tracer.InitTracer(cfg.App.OtelEnabled, cfg.App.OtelEndpoint)
	defer shutdownTracer(context.Background())

	// Empty DB_CONNECTION_STRING runs without the prompt archive
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	container := bootstrap.NewContainer(ctx, gormDB, cfg)
	defer container.Close()
	container.Start(ctx)

	srv := server.New(cfg, container)

	go func() {
		<-ctx.Done()
		log.Println("Shutting down...")
		if err := srv.Shutdown(); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}()

	if err := srv.Run(); err != nil {
		log.Printf("Server stopped: %v", err)
	}
}

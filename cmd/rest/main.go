package main

import (
	"context"
	"log"

	"ai-bizchat-be/internal/bootstrap"
	"ai-bizchat-be/internal/config"
	"ai-bizchat-be/internal/server"
	"ai-bizchat-be/internal/tracer"
	"ai-bizchat-be/pkg/database"
)

func main() {
	cfg := config.Load()

	shutdownTracer := tracer.InitTracer()
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			log.Printf("Warning: tracer shutdown failed: %v", err)
		}
	}()

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	intents, err := bootstrap.LoadIntents(cfg.Chat.IntentsPath)
	if err != nil {
		log.Fatalf("Failed to load intents: %v", err)
	}
	log.Printf("[INFO] Loaded %d intents from %s", len(intents), cfg.Chat.IntentsPath)

	container := bootstrap.NewContainer(db, cfg, intents)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Lead events are consumed in the background for the lifetime of the process.
	go func() {
		if err := container.ConsumerService.Consume(ctx); err != nil {
			container.Logger.Error("main", "lead consumer stopped", map[string]interface{}{"error": err.Error()})
		}
	}()

	container.WarmupService.Start(ctx)
	if cfg.Chat.WarmupOnStart {
		go container.WarmupService.Run(ctx)
	}

	srv := server.New(cfg, container)
	if err := srv.Run(); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}

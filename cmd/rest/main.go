package main

import (
	"context"
	"log"

	"terapia-chat-be/internal/bootstrap"
	"terapia-chat-be/internal/config"
	"terapia-chat-be/internal/server"
	"terapia-chat-be/internal/tracer"
	"terapia-chat-be/pkg/database"
)

func main() {
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	cfg := config.Load()

	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	container := bootstrap.NewContainer(gormDB, cfg)

	// Background workers: event fan-out and the expiry sweeper.
	ctx := context.Background()
	if err := container.NotifierService.Run(ctx); err != nil {
		log.Printf("Background notifier error: %v", err)
	}
	go container.SweeperService.Run(ctx)

	srv := server.New(cfg, container)

	log.Fatal(srv.Run())
}

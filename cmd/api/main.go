package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jwebster45206/adventure-engine/internal/config"
	"github.com/jwebster45206/adventure-engine/internal/handlers"
	"github.com/jwebster45206/adventure-engine/internal/logger"
	"github.com/jwebster45206/adventure-engine/internal/storage"
	"github.com/jwebster45206/adventure-engine/pkg/scenario"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	log := logger.Setup(cfg)

	log.Info("Starting Adventure Engine API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"content_path", cfg.ContentPath)

	sc, err := scenario.LoadFile(cfg.ContentPath)
	if err != nil {
		log.Error("Failed to load scenario", "error", err)
		os.Exit(1)
	}
	if err := sc.Validate(); err != nil {
		log.Error("Scenario failed validation", "error", err)
		os.Exit(1)
	}
	for _, issue := range sc.Lint() {
		log.Warn("Scenario content problem", "scenario", sc.Name, "issue", issue.String())
	}

	var store storage.Store
	if cfg.RedisURL == "" {
		log.Warn("REDIS_URL not set, games are kept in memory")
		store = storage.NewMemoryStore()
	} else {
		redisStore, err := storage.NewRedisStore(cfg.RedisURL, cfg.SaveTTL, log)
		if err != nil {
			log.Error("Failed to create redis store", "error", err)
			os.Exit(1)
		}
		storageCtx, storageCancel := context.WithTimeout(context.Background(), 2*time.Minute)
		err = redisStore.WaitForConnection(storageCtx, 30, 2*time.Second)
		storageCancel()
		if err != nil {
			log.Error("Failed to connect to storage", "error", err)
			os.Exit(1)
		}
		store = redisStore
	}
	log.Info("Storage connection established successfully")

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handlers.NewRouter(sc, store, log),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "addr", server.Addr, "scenario", sc.Name)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Server is shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	if err := store.Close(); err != nil {
		log.Error("Error closing storage connection", "error", err)
	}

	log.Info("Server exited")
}

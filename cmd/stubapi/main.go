package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-cinema-client/internal/config"
	jwtinfra "github.com/go-cinema-client/internal/infrastructure/jwt"
	"github.com/go-cinema-client/internal/infrastructure/memdb"
	transporthttp "github.com/go-cinema-client/internal/transport/http"
	"github.com/joho/godotenv"
)

// stubapi runs the in-memory reference backend so the client engine can
// be developed and demoed without the production API. All state dies
// with the process.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment")
	}

	cfg := config.Load()

	provider, err := jwtinfra.NewProvider(cfg.TokenSecret, cfg.TokenExpiry)
	if err != nil {
		log.Fatalf("token provider: %v", err)
	}

	router := transporthttp.NewRouter(cfg, memdb.New(), provider)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Reference backend starting on :%s (env=%s)", cfg.AppPort, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}
	log.Println("Stopped")
}

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/clipforge/engine/internal/config"
	"github.com/clipforge/engine/internal/queue"
	"github.com/clipforge/engine/internal/server"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP ingest API that accepts jobs for workers to process",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			q, err := queue.New(cfg.RedisURL)
			if err != nil {
				return err
			}
			defer q.Close()
			log.Println("connected to redis queue")

			handler := server.NewHandler(q)
			router := server.NewRouter(handler, server.Config{
				APIKey:             os.Getenv("CLIPPER_API_KEY"),
				CorsAllowedOrigins: cfg.CorsAllowedOrigins,
			})

			httpServer := &http.Server{
				Addr:    ":" + cfg.ServerPort,
				Handler: router,
			}

			go func() {
				log.Printf("clipper serve listening on :%s", cfg.ServerPort)
				if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatalf("server error: %v", err)
				}
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			<-quit

			log.Println("shutting down server...")
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := httpServer.Shutdown(ctx); err != nil {
				log.Fatalf("server forced to shutdown: %v", err)
			}
			log.Println("server exited")
			return nil
		},
	}
}

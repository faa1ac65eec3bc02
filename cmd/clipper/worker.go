package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/clipforge/engine/internal/batch"
	"github.com/clipforge/engine/internal/config"
	"github.com/clipforge/engine/internal/queue"
)

func newWorkerCmd() *cobra.Command {
	var concurrency int

	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Drain the ingest queue, running the clip pipeline for each job",
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

			ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			done := make(chan struct{})
			for i := 0; i < concurrency; i++ {
				go func(id int) {
					processQueue(ctx, id, q, cfg)
					done <- struct{}{}
				}(i)
			}

			for i := 0; i < concurrency; i++ {
				<-done
			}
			log.Println("worker shut down")
			return nil
		},
	}

	cmd.Flags().IntVar(&concurrency, "concurrency", 2, "number of jobs to process concurrently")
	return cmd
}

func processQueue(ctx context.Context, id int, q *queue.Queue, cfg *config.Config) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		job, err := q.Dequeue(ctx, 5*time.Second)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("[worker %d] dequeue error: %v", id, err)
			continue
		}
		if job == nil {
			continue
		}

		log.Printf("[worker %d] processing job %s (%s)", id, job.ID, job.SourcePath)

		jobCfg := *cfg
		if job.TopK > 0 {
			jobCfg.TopK = job.TopK
		}
		outputDir := cfg.OutputDir
		if job.OutputDir != "" {
			outputDir = job.OutputDir
		}

		coordinator, err := batch.New(&jobCfg)
		if err != nil {
			log.Printf("[worker %d] job %s failed to build coordinator: %v", id, job.ID, err)
			continue
		}

		if _, err := coordinator.Run(ctx, job.SourcePath, outputDir); err != nil {
			log.Printf("[worker %d] job %s failed: %v", id, job.ID, err)
			continue
		}
		log.Printf("[worker %d] job %s completed", id, job.ID)
	}
}

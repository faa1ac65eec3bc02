// Package queue is a thin Redis-backed job queue for the `clipper worker`
// mode, where ingestion jobs (one per source video) are pushed by an
// external caller and drained by one or more long-running workers.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// QueueIngest is the single queue this package drives: one job per source
// video to run through the full clip pipeline.
const QueueIngest = "queue:ingest_video"

// Queue wraps a Redis client for job enqueue/dequeue.
type Queue struct {
	client *redis.Client
}

// Job describes one source video to process.
type Job struct {
	ID         uuid.UUID `json:"id"`
	SourcePath string    `json:"source_path"`
	TopK       int       `json:"top_k"`
	OutputDir  string    `json:"output_dir"`
	CreatedAt  time.Time `json:"created_at"`
}

// New connects to redisURL and verifies connectivity with a 5s ping.
func New(redisURL string) (*Queue, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Queue{client: client}, nil
}

// Close releases the Redis client.
func (q *Queue) Close() error {
	return q.client.Close()
}

// Enqueue pushes a job onto the ingest queue.
func (q *Queue) Enqueue(ctx context.Context, job *Job) error {
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	job.CreatedAt = time.Now()

	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}
	return q.client.RPush(ctx, QueueIngest, data).Err()
}

// Dequeue blocks up to timeout waiting for a job, returning nil if none
// arrives in that window.
func (q *Queue) Dequeue(ctx context.Context, timeout time.Duration) (*Job, error) {
	result, err := q.client.BLPop(ctx, timeout, QueueIngest).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to dequeue: %w", err)
	}
	if len(result) != 2 {
		return nil, fmt.Errorf("unexpected redis response")
	}

	var job Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job: %w", err)
	}
	return &job, nil
}

// Length returns the number of jobs waiting in the ingest queue.
func (q *Queue) Length(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, QueueIngest).Result()
}

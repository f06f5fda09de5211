// Package queue moves async summarize jobs through Redis.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"summarizer-worker/config"
	"summarizer-worker/internal/core/domain"
	"summarizer-worker/internal/core/ports"
)

// dequeueTimeout bounds each BRPOP so shutdown is never stuck on Redis
const dequeueTimeout = 5 * time.Second

// RedisQueue implements the queue port on Redis lists. Pending jobs
// travel through a single list; job records live under their own keys
// with a TTL so clients can poll status after completion.
type RedisQueue struct {
	client *redis.Client
	config *config.WorkerConfig
}

// NewRedisQueue connects to Redis and verifies the connection
func NewRedisQueue(redisConfig *config.RedisConfig, workerConfig *config.WorkerConfig) (*RedisQueue, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", redisConfig.Host, redisConfig.Port),
		Password: redisConfig.Password,
		DB:       redisConfig.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return &RedisQueue{
		client: client,
		config: workerConfig,
	}, nil
}

// Enqueue marks the job pending and pushes it onto the queue
func (q *RedisQueue) Enqueue(ctx context.Context, job *ports.SummarizeJob) error {
	job.Status = ports.JobStatusPending
	job.CreatedAt = time.Now()
	job.UpdatedAt = time.Now()
	job.MaxRetries = q.config.RetryCount

	jobData, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	if err := q.client.LPush(ctx, q.config.QueueName, jobData).Err(); err != nil {
		return fmt.Errorf("failed to enqueue job: %w", err)
	}

	if err := q.storeJob(ctx, job, jobData); err != nil {
		return err
	}
	return nil
}

// Dequeue blocks for up to the dequeue timeout and returns the next
// job marked as processing. redis.Nil is returned on timeout so the
// worker loop can poll again.
func (q *RedisQueue) Dequeue(ctx context.Context) (*ports.SummarizeJob, error) {
	result, err := q.client.BRPop(ctx, dequeueTimeout, q.config.QueueName).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) || ctx.Err() != nil {
			return nil, err
		}
		return nil, fmt.Errorf("failed to dequeue job: %w", err)
	}

	if len(result) < 2 {
		return nil, fmt.Errorf("invalid queue result")
	}

	var job ports.SummarizeJob
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job: %w", err)
	}

	job.Status = ports.JobStatusProcessing
	job.UpdatedAt = time.Now()

	if err := q.updateJob(ctx, &job); err != nil {
		return nil, fmt.Errorf("failed to update job status: %w", err)
	}

	return &job, nil
}

// Complete records the result and marks the job completed
func (q *RedisQueue) Complete(ctx context.Context, jobID string, result *domain.SummaryResult) error {
	job, err := q.Get(ctx, jobID)
	if err != nil {
		return err
	}

	now := time.Now()
	job.Status = ports.JobStatusCompleted
	job.Result = result
	job.UpdatedAt = now
	job.CompletedAt = &now

	return q.updateJob(ctx, job)
}

// Fail records the error. Jobs under the retry limit go back onto the
// queue after the configured delay; the rest are marked failed.
func (q *RedisQueue) Fail(ctx context.Context, jobID string, errorMsg string) error {
	job, err := q.Get(ctx, jobID)
	if err != nil {
		return err
	}

	job.RetryCount++
	job.Error = errorMsg
	job.UpdatedAt = time.Now()

	if job.RetryCount >= job.MaxRetries {
		job.Status = ports.JobStatusFailed
		return q.updateJob(ctx, job)
	}

	job.Status = ports.JobStatusPending
	if err := q.updateJob(ctx, job); err != nil {
		return err
	}

	go func() {
		time.Sleep(q.config.RetryDelay)
		jobData, err := json.Marshal(job)
		if err != nil {
			return
		}
		q.client.LPush(context.Background(), q.config.QueueName, jobData)
	}()

	return nil
}

// Get loads a job record by identifier
func (q *RedisQueue) Get(ctx context.Context, jobID string) (*ports.SummarizeJob, error) {
	jobData, err := q.client.Get(ctx, q.jobKey(jobID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	var job ports.SummarizeJob
	if err := json.Unmarshal([]byte(jobData), &job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job: %w", err)
	}

	return &job, nil
}

// Depth returns the number of pending jobs in the queue
func (q *RedisQueue) Depth(ctx context.Context) (int64, error) {
	depth, err := q.client.LLen(ctx, q.config.QueueName).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get queue length: %w", err)
	}
	return depth, nil
}

// Ping checks the Redis connection
func (q *RedisQueue) Ping(ctx context.Context) error {
	return q.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (q *RedisQueue) Close() error {
	return q.client.Close()
}

func (q *RedisQueue) jobKey(jobID string) string {
	return fmt.Sprintf("job:%s", jobID)
}

func (q *RedisQueue) storeJob(ctx context.Context, job *ports.SummarizeJob, jobData []byte) error {
	if err := q.client.Set(ctx, q.jobKey(job.ID), jobData, q.jobTTL()).Err(); err != nil {
		return fmt.Errorf("failed to store job details: %w", err)
	}
	return nil
}

func (q *RedisQueue) updateJob(ctx context.Context, job *ports.SummarizeJob) error {
	jobData, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}
	return q.storeJob(ctx, job, jobData)
}

func (q *RedisQueue) jobTTL() time.Duration {
	if q.config.JobTTL > 0 {
		return q.config.JobTTL
	}
	return 24 * time.Hour
}

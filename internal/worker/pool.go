package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"vidsum-backend/internal/models"
	"vidsum-backend/internal/repository"
	"vidsum-backend/internal/services"
)

const (
	summarizeQueue = "queue:summarize"
	maxRetries     = 3
)

// Pool consumes queued summarize jobs: webhook call, title enrichment,
// persist, completion event. Jobs are locked per-id so concurrent workers
// (and concurrent processes) never run the same job twice.
type Pool struct {
	redis       *redis.Client
	summarizer  *services.SummarizerService
	youtube     *services.YouTubeService
	publisher   *services.EventPublisher
	jobRepo     *repository.JobRepo
	summaryRepo *repository.SummaryRepo
	workerCount int
	stopChan    chan struct{}
}

func NewPool(
	redisClient *redis.Client,
	summarizer *services.SummarizerService,
	youtube *services.YouTubeService,
	publisher *services.EventPublisher,
	jobRepo *repository.JobRepo,
	summaryRepo *repository.SummaryRepo,
	workerCount int,
) *Pool {
	return &Pool{
		redis:       redisClient,
		summarizer:  summarizer,
		youtube:     youtube,
		publisher:   publisher,
		jobRepo:     jobRepo,
		summaryRepo: summaryRepo,
		workerCount: workerCount,
		stopChan:    make(chan struct{}),
	}
}

func (p *Pool) Start() {
	for i := 0; i < p.workerCount; i++ {
		go p.worker(i)
	}
	log.Printf("Started %d worker goroutines", p.workerCount)
}

func (p *Pool) Stop() {
	close(p.stopChan)
}

func (p *Pool) worker(id int) {
	for {
		select {
		case <-p.stopChan:
			log.Printf("Worker %d shutting down", id)
			return
		default:
		}

		ctx := context.Background()

		// BLPOP with 30s timeout
		result, err := p.redis.BLPop(ctx, 30*time.Second, summarizeQueue).Result()
		if err != nil {
			continue // Timeout or error, retry
		}
		if len(result) < 2 {
			continue
		}

		var job models.Job
		if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
			log.Printf("Worker %d: failed to parse job: %v", id, err)
			continue
		}

		// Try to acquire lock
		lockKey := fmt.Sprintf("job_lock:%s", job.ID.String())
		locked, err := p.redis.SetNX(ctx, lockKey, "1", 10*time.Minute).Result()
		if err != nil || !locked {
			continue // Another worker has this job
		}

		log.Printf("Worker %d: processing job %s for %s", id, job.ID, job.OwnerEmail)

		p.jobRepo.UpdateStatus(ctx, job.ID, "processing")

		if err := p.processJob(ctx, &job); err != nil {
			p.handleFailure(ctx, &job, err)
		} else {
			p.handleSuccess(ctx, &job)
		}

		p.redis.Del(ctx, lockKey)
	}
}

func (p *Pool) processJob(ctx context.Context, job *models.Job) error {
	summary, err := p.summarizer.Summarize(ctx, job.VideoURL)
	if err != nil {
		return err
	}
	summary.OwnerEmail = job.OwnerEmail

	if summary.VideoTitle == "YouTube Video" && summary.VideoID != "" {
		meta := p.youtube.Metadata(ctx, summary.VideoID)
		summary.VideoTitle = meta.Title
	}

	if err := p.summaryRepo.Create(ctx, summary); err != nil {
		return fmt.Errorf("failed to persist summary: %w", err)
	}

	if err := p.jobRepo.SetSummaryID(ctx, job.ID, summary.ID); err != nil {
		log.Printf("failed to link job %s to summary %s: %v", job.ID, summary.ID, err)
	}
	job.SummaryID = &summary.ID

	p.publisher.Publish(ctx, job.OwnerEmail, models.WSMessage{
		Type:    "summary_completed",
		Payload: models.CompletedEvent{JobID: job.ID, Summary: summary},
	})

	return nil
}

func (p *Pool) handleSuccess(ctx context.Context, job *models.Job) {
	p.jobRepo.UpdateStatus(ctx, job.ID, "completed")
	log.Printf("Job %s completed successfully", job.ID)
}

func (p *Pool) handleFailure(ctx context.Context, job *models.Job, err error) {
	// Bad input never heals by retrying; everything else gets backoff.
	var vErr *services.ValidationError
	retryable := !errors.As(err, &vErr)

	job.RetryCount++
	errMsg := err.Error()

	if retryable && job.RetryCount < maxRetries {
		log.Printf("Job %s failed (attempt %d): %s, retrying", job.ID, job.RetryCount, errMsg)
		p.jobRepo.UpdateStatus(ctx, job.ID, "pending")
		p.jobRepo.UpdateError(ctx, job.ID, errMsg, job.RetryCount)

		// Re-queue after backoff
		jobBytes, _ := json.Marshal(job)
		backoff := time.Duration(1<<uint(job.RetryCount)) * time.Second
		p.requeueAfter(jobBytes, backoff)
		return
	}

	log.Printf("Job %s failed permanently: %s", job.ID, errMsg)
	p.failPermanently(ctx, job, errMsg)
}

// requeueAfter pushes the job back onto the queue once the backoff elapses.
// A pool that has been stopped in the meantime drops the push; the job row
// stays pending and a restarted process can pick it up.
func (p *Pool) requeueAfter(jobBytes []byte, backoff time.Duration) {
	time.AfterFunc(backoff, func() {
		if p.stopped() {
			return
		}
		p.redis.LPush(context.Background(), summarizeQueue, string(jobBytes))
	})
}

func (p *Pool) stopped() bool {
	select {
	case <-p.stopChan:
		return true
	default:
		return false
	}
}

func (p *Pool) failPermanently(ctx context.Context, job *models.Job, errMsg string) {
	p.jobRepo.UpdateStatus(ctx, job.ID, "failed")
	p.jobRepo.UpdateError(ctx, job.ID, errMsg, job.RetryCount)

	p.publisher.Publish(ctx, job.OwnerEmail, models.WSMessage{
		Type: "summary_failed",
		Payload: models.ErrorEvent{
			JobID:        job.ID,
			ErrorCode:    "JOB_FAILED",
			ErrorMessage: errMsg,
		},
	})
}

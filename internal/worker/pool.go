package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueReceipt = "jobs:receipt"

	JobTypeReceipt = "receipt"

	// MaxJobAttempts is how many times a job runs before it is moved to the DLQ.
	MaxJobAttempts = 3

	popTimeout = 5 * time.Second
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type     string          `json:"type"`
	Payload  json.RawMessage `json:"payload"`
	Attempts int             `json:"attempts"`
}

// ReceiptJobPayload identifies the sale whose receipt must be rendered.
type ReceiptJobPayload struct {
	TenantID string `json:"tenant_id"`
	SaleID   string `json:"sale_id"`
}

// Handler processes the payload of one job type. A returned error schedules a retry.
type Handler interface {
	Process(ctx context.Context, payload json.RawMessage) error
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueReceipt pushes a receipt rendering job for a committed sale.
func (d *Dispatcher) EnqueueReceipt(ctx context.Context, tenantID, saleID uuid.UUID) error {
	return d.enqueue(ctx, QueueReceipt, JobTypeReceipt, ReceiptJobPayload{
		TenantID: tenantID.String(),
		SaleID:   saleID.String(),
	})
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	encoded, err := json.Marshal(Job{Type: jobType, Payload: data})
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

// Pool is a set of goroutines consuming QueueReceipt.
type Pool struct {
	rdb      *redis.Client
	handlers map[string]Handler
	wg       sync.WaitGroup
}

// StartWorkerPool launches numWorkers goroutines.
// Each goroutine blocks on BRPOP, zero CPU when idle. They exit when ctx is cancelled.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, numWorkers int, handlers map[string]Handler) *Pool {
	p := &Pool{rdb: rdb, handlers: handlers}
	for i := 0; i < numWorkers; i++ {
		p.wg.Add(1)
		go p.run(ctx, i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
	return p
}

// Wait blocks until every worker has returned.
func (p *Pool) Wait() { p.wg.Wait() }

func (p *Pool) run(ctx context.Context, id int) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop, waits up to popTimeout then loops to check ctx
			result, err := p.rdb.BRPop(ctx, popTimeout, QueueReceipt).Result()
			if err != nil {
				if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
					log.Warn().Err(err).Int("worker", id).Msg("worker: pop failed")
					time.Sleep(time.Second)
				}
				continue
			}
			if len(result) < 2 {
				continue
			}
			p.processJob(ctx, result[0], result[1])
		}
	}
}

func (p *Pool) processJob(ctx context.Context, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		SendToDLQ(ctx, p.rdb, queue, "unknown", json.RawMessage(fmt.Sprintf("%q", raw)), "malformed job", 0)
		return
	}
	h, ok := p.handlers[job.Type]
	if !ok {
		SendToDLQ(ctx, p.rdb, queue, job.Type, job.Payload, "no handler for job type", job.Attempts)
		return
	}

	job.Attempts++
	err := h.Process(ctx, job.Payload)
	if err == nil {
		log.Debug().Str("type", job.Type).Int("attempt", job.Attempts).Msg("job processed")
		return
	}
	if job.Attempts >= MaxJobAttempts {
		SendToDLQ(ctx, p.rdb, queue, job.Type, job.Payload, err.Error(), job.Attempts)
		return
	}

	log.Warn().Err(err).Str("type", job.Type).Int("attempt", job.Attempts).Msg("job failed, requeueing")
	encoded, mErr := json.Marshal(job)
	if mErr != nil {
		log.Error().Err(mErr).Msg("failed to re-encode job")
		return
	}
	if pErr := p.rdb.LPush(ctx, queue, encoded).Err(); pErr != nil {
		log.Error().Err(pErr).Str("queue", queue).Msg("failed to requeue job")
	}
}

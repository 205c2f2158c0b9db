package queue

import (
	"context"
	"hash/fnv"

	"github.com/rs/zerolog"

	"github.com/crewlink/crewlink-api/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Dispatcher routes stats recompute tasks to a fixed set of workers using
// consistent hashing on the user ID, so recomputes for one user never run
// concurrently with each other.
type Dispatcher struct {
	workers []chan ports.RecomputeTask
	service ports.StatsService
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, service ports.StatsService, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan ports.RecomputeTask, numWorkers),
		service: service,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.RecomputeTask, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue sends a task to the worker responsible for its user.
// Non-blocking up to channelBuffer capacity.
func (d *Dispatcher) Enqueue(task ports.RecomputeTask) {
	d.workers[d.shardIndex(task.UserID)] <- task
}

// shardIndex maps a user ID deterministically to a worker index.
func (d *Dispatcher) shardIndex(userID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.RecomputeTask) {
	for {
		select {
		case <-ctx.Done():
			return
		case task, ok := <-ch:
			if !ok {
				return
			}
			if err := d.service.Recompute(ctx, task.UserID); err != nil {
				d.log.Error().Err(err).
					Str("user_id", task.UserID).
					Str("reason", task.Reason).
					Int("worker_id", id).
					Msg("stats recompute failed")
			}
		}
	}
}

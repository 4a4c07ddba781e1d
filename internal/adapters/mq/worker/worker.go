// Package worker runs the sharded pool that folds completion events into
// worker performance records. Events are routed to a shard by worker ID,
// and each shard is a single goroutine, so all completions for one worker
// apply strictly in arrival order without any store-level locking.
package worker

import (
	"context"
	"fmt"
	"hash/fnv"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/okian/delega/internal/adapters/mq/queue"
	"github.com/okian/delega/pkg/logger"
	"github.com/okian/delega/pkg/metrics"
)

// Default pool configuration constants.
const (
	defaultShardBuffer  = 256
	shutdownGracePeriod = 30 * time.Second
)

// Event is what the pool reads off the queue.
type Event = queue.Event

// Processor folds one completion event into the performance state.
type Processor interface {
	Process(ctx context.Context, e Event) error
}

// Queue defines how the pool receives events.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Event
}

// Pool routes events to per-worker shards and processes them.
type Pool struct {
	queue     Queue
	processor Processor
	shards    []chan Event
	buffer    int

	wg   sync.WaitGroup
	done chan struct{}

	log logger.Logger
}

// NewPool creates a sharded pool. A non-positive shardCount defaults to
// the number of CPUs.
func NewPool(shardCount int, q Queue, proc Processor, opts ...Option) *Pool {
	if shardCount < 1 {
		shardCount = runtime.NumCPU()
	}

	p := &Pool{
		queue:     q,
		processor: proc,
		shards:    make([]chan Event, shardCount),
		buffer:    defaultShardBuffer,
		done:      make(chan struct{}),
		log:       logger.Get().Named("fold-pool"),
	}
	for _, opt := range opts {
		opt(p)
	}
	for i := range p.shards {
		p.shards[i] = make(chan Event, p.buffer)
	}

	metrics.UpdateWorkerShards(shardCount)
	return p
}

// Start launches the dispatcher and one goroutine per shard.
func (p *Pool) Start(ctx context.Context) {
	for i, ch := range p.shards {
		p.wg.Add(1)
		go p.runShard(ctx, strconv.Itoa(i), ch)
	}

	go func() {
		defer close(p.done)
		p.dispatch(ctx)
		for _, ch := range p.shards {
			close(ch)
		}
	}()
}

// dispatch routes queue events to their shard until the queue drains or
// the context is cancelled. Routing is by worker ID so one worker's
// events never interleave across shards.
func (p *Pool) dispatch(ctx context.Context) {
	events := p.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			shard := p.shards[shardIndex(e.WorkerID, len(p.shards))]
			select {
			case shard <- e:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (p *Pool) runShard(ctx context.Context, name string, ch <-chan Event) {
	defer p.wg.Done()

	log := p.log.Named("shard-" + name)
	for e := range ch {
		if err := p.processor.Process(ctx, e); err != nil {
			metrics.RecordCompletionError()
			log.Error(ctx, "completion fold failed",
				logger.String("event_id", e.EventID),
				logger.String("worker_id", e.WorkerID),
				logger.Error(err),
			)
		}
	}
}

// Shutdown closes the queue, waits for in-flight events to drain, and
// stops the shards.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.log.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	graceCtx, cancel := context.WithTimeout(ctx, shutdownGracePeriod)
	defer cancel()

	finished := make(chan struct{})
	go func() {
		<-p.done
		p.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		return nil
	case <-graceCtx.Done():
		return fmt.Errorf("pool shutdown timed out: %w", graceCtx.Err())
	}
}

func shardIndex(workerID string, shards int) int {
	h := fnv.New32a()
	h.Write([]byte(workerID))
	return int(h.Sum32() % uint32(shards))
}

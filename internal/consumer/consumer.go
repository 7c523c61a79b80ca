// Package consumer drives the account-update stream: classify each update,
// decode poll accounts, and hand decoded polls to the persistence sink
// without coupling the consumption loop to storage latency.
package consumer

import (
	"context"
	"sync"
	"time"

	"github.com/chainsift/pollwatch/internal/accounts"
	"github.com/chainsift/pollwatch/internal/logging"
	"github.com/chainsift/pollwatch/internal/metrics"
	"github.com/chainsift/pollwatch/internal/source"
)

// Sink accepts decoded polls for durable upsert keyed by poll_id. It must
// tolerate concurrent calls; the worker pool invokes it from several
// goroutines at once.
type Sink interface {
	UpsertPoll(ctx context.Context, p *accounts.Poll) error
}

// StopReason records which of the two racing conditions ended the run.
type StopReason string

const (
	// StopCanceled means the run context was cancelled (interrupt signal).
	StopCanceled StopReason = "canceled"
	// StopSourceClosed means the update source ended the sequence on its own.
	StopSourceClosed StopReason = "source closed"
)

// Config bounds the persistence worker pool.
type Config struct {
	// Workers is the number of concurrent upsert workers.
	Workers int

	// QueueSize is the capacity of the persistence queue. A full queue
	// blocks the consumption loop rather than growing without bound.
	QueueSize int

	// DrainTimeout caps how long shutdown waits for queued upserts to
	// finish before abandoning them.
	DrainTimeout time.Duration
}

func (c Config) withDefaults() Config {
	if c.Workers <= 0 {
		c.Workers = 4
	}
	if c.QueueSize <= 0 {
		c.QueueSize = 256
	}
	if c.DrainTimeout <= 0 {
		c.DrainTimeout = 10 * time.Second
	}
	return c
}

// Consumer pulls updates from a source and forwards decoded polls to a sink.
type Consumer struct {
	src  source.Source
	sink Sink
	log  *logging.Logger
	cfg  Config

	queue chan *accounts.Poll

	mu     sync.Mutex
	reason StopReason
}

// New creates a consumer. Zero config fields fall back to defaults.
func New(src source.Source, sink Sink, log *logging.Logger, cfg Config) *Consumer {
	cfg = cfg.withDefaults()
	metrics.QueueCapacity.Set(float64(cfg.QueueSize))
	return &Consumer{
		src:   src,
		sink:  sink,
		log:   log,
		cfg:   cfg,
		queue: make(chan *accounts.Poll, cfg.QueueSize),
	}
}

// Run consumes updates until ctx is cancelled or the source's sequence ends,
// whichever happens first. On exit it tears the subscription down exactly
// once, then drains queued upserts under the configured timeout. Decode and
// persistence failures never stop the loop; Run returns nil on a clean stop
// and the source's terminal transport error otherwise.
func (c *Consumer) Run(ctx context.Context) error {
	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()

	var workers sync.WaitGroup
	for i := 0; i < c.cfg.Workers; i++ {
		workers.Add(1)
		go c.worker(workerCtx, &workers)
	}

loop:
	for {
		select {
		case <-ctx.Done():
			c.setReason(StopCanceled)
			break loop
		case u, ok := <-c.src.Updates():
			if !ok {
				c.setReason(StopSourceClosed)
				break loop
			}
			c.handle(ctx, u)
		}
	}

	c.log.Info("consumption loop stopped", "reason", string(c.StopReason()))

	if err := c.src.Unsubscribe(); err != nil {
		c.log.Warn("unsubscribe failed", "error", err)
	}

	c.drain(cancelWorkers, &workers)

	if err := c.src.Err(); err != nil {
		return err
	}
	return nil
}

// handle classifies one update and, for poll accounts, decodes and enqueues
// it. Every other kind is observed and skipped.
func (c *Consumer) handle(ctx context.Context, u source.Update) {
	kind := accounts.Classify(u.Data)
	metrics.UpdatesTotal.WithLabelValues(kind.String()).Inc()

	log := c.log.With("update_id", u.ID, "pubkey", u.Pubkey, "slot", u.Slot)

	switch kind {
	case accounts.KindPoll:
		poll, err := accounts.DecodePoll(u.Data[accounts.DiscriminatorLen:])
		if err != nil {
			metrics.DecodeFailures.Inc()
			log.Warn("could not decode poll account", "error", err)
			return
		}
		log.Info("poll account updated",
			"poll_id", poll.PollID,
			"owner", poll.Owner.String(),
			"name", poll.Name,
			"description", poll.Description,
			"start", poll.Start,
			"end", poll.End,
			"candidates", poll.CandidateCount,
			"winner", poll.Winner.String(),
		)
		c.enqueue(ctx, poll, log)
	case accounts.KindCandidate:
		log.Info("candidate account update")
	case accounts.KindVote:
		log.Info("vote account update")
	default:
		log.Info("unknown account type")
	}
}

// enqueue hands a decoded poll to the worker pool. The queue is bounded, so
// when storage is slower than the arrival rate the loop blocks here instead
// of accumulating unbounded in-flight work.
func (c *Consumer) enqueue(ctx context.Context, p *accounts.Poll, log *logging.Logger) {
	select {
	case c.queue <- p:
		metrics.QueueDepth.Set(float64(len(c.queue)))
	case <-ctx.Done():
		log.Warn("dropping poll, shutdown in progress", "poll_id", p.PollID)
	}
}

// worker upserts queued polls until the queue is closed and empty.
func (c *Consumer) worker(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()

	for p := range c.queue {
		metrics.QueueDepth.Set(float64(len(c.queue)))

		start := time.Now()
		err := c.sink.UpsertPoll(ctx, p)
		metrics.UpsertDuration.Observe(time.Since(start).Seconds())

		if err != nil {
			// Non-fatal: the record is dropped, the stream continues.
			metrics.UpsertsTotal.WithLabelValues("error").Inc()
			c.log.Warn("poll upsert failed", "poll_id", p.PollID, "error", err)
			continue
		}
		metrics.UpsertsTotal.WithLabelValues("ok").Inc()
	}
}

// drain closes the queue and waits for in-flight upserts, cancelling them if
// the drain timeout expires first.
func (c *Consumer) drain(cancelWorkers context.CancelFunc, workers *sync.WaitGroup) {
	close(c.queue)

	done := make(chan struct{})
	go func() {
		workers.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(c.cfg.DrainTimeout):
		c.log.Warn("drain timeout exceeded, abandoning queued upserts")
		cancelWorkers()
		<-done
	}
}

// StopReason reports why the last Run exited. Empty until the loop stops.
func (c *Consumer) StopReason() StopReason {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reason
}

func (c *Consumer) setReason(r StopReason) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.reason == "" {
		c.reason = r
	}
}

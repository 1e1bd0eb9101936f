package relation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/certkit/Legra/orchestrator"
)

// QueueStore is the queue side of the Store.
type QueueStore interface {
	NextPending(ctx context.Context, timeout time.Duration) (string, error)
	LoadRequest(ctx context.Context, correlationID string) (orchestrator.CreationRequest, error)
	Defer(ctx context.Context, req orchestrator.CreationRequest) error
	RedeliverDeferred(ctx context.Context) (int, error)
}

// RequestHandler runs one creation request end to end.
type RequestHandler interface {
	HandleCreationRequest(ctx context.Context, req orchestrator.CreationRequest) error
}

// Consumer pops pending request ids, loads the latest payload for each, and
// hands it to the handler. Popping is destructive, so only the lease holder
// consumes; other units would lose requests the orchestrator refuses to run.
// A second loop redelivers deferred ids on a ticker so gated requests are
// retried once the gate clears.
type Consumer struct {
	Store   QueueStore
	Handler RequestHandler
	Leader  orchestrator.LeadershipOracle

	RedeliverEvery time.Duration
	PollTimeout    time.Duration

	stopChan chan struct{}
	doneChan chan struct{}
}

func NewConsumer(store *Store, orch *orchestrator.Orchestrator, leader orchestrator.LeadershipOracle) *Consumer {
	return &Consumer{
		Store:          store,
		Handler:        orch,
		Leader:         leader,
		RedeliverEvery: time.Second * time.Duration(Env_RedeliverySeconds),
		PollTimeout:    time.Second,
		stopChan:       make(chan struct{}),
		doneChan:       make(chan struct{}),
	}
}

// Start runs the consume and redelivery loops until Stop is called.
// Blocking, run it in a goroutine (or errgroup).
func (c *Consumer) Start() error {
	logger.Debug().Msg("starting relation consumer")
	go c.redeliveryLoop()

	for {
		select {
		case <-c.stopChan:
			close(c.doneChan)
			return nil
		default:
		}
		c.tick()
	}
}

// tick consumes one request if this unit holds the lease, else backs off.
func (c *Consumer) tick() {
	ctx := context.Background()
	isLeader, err := c.Leader.IsLeader(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("error checking leadership")
		time.Sleep(c.PollTimeout)
		return
	}
	if !isLeader {
		time.Sleep(c.PollTimeout)
		return
	}
	c.consumeOne(ctx)
}

func (c *Consumer) consumeOne(ctx context.Context) {
	correlationID, err := c.Store.NextPending(ctx, c.PollTimeout)
	if errors.Is(err, ErrNotFound) {
		return
	}
	if err != nil {
		logger.Error().Err(err).Msg("error polling pending queue")
		time.Sleep(c.PollTimeout)
		return
	}

	req, err := c.Store.LoadRequest(ctx, correlationID)
	if errors.Is(err, ErrNotFound) {
		logger.Warn().Str("correlationID", correlationID).Msg("pending id without a stored request, dropping")
		return
	}
	if err != nil {
		logger.Error().Err(err).Str("correlationID", correlationID).Msg("error loading request")
		return
	}

	err = c.Handler.HandleCreationRequest(ctx, req)
	if errors.Is(err, orchestrator.ErrNotLeader) {
		// lost the lease between the tick check and the handler, the pop
		// already happened so park the request for the actual leader
		logger.Debug().Str("correlationID", correlationID).Msg("lost leadership mid-request, re-parking")
		if deferErr := c.Store.Defer(ctx, req); deferErr != nil {
			logger.Error().Err(deferErr).Str("correlationID", correlationID).Msg("error re-parking request")
		}
		return
	}
	if err != nil {
		logger.Error().Err(err).Str("correlationID", correlationID).Msg("error handling creation request")
		// infrastructure failure, park the id so the ticker retries it
		if deferErr := c.Store.Defer(ctx, req); deferErr != nil {
			logger.Error().Err(deferErr).Str("correlationID", correlationID).Msg("error deferring failed request")
		}
	}
}

func (c *Consumer) redeliveryLoop() {
	ticker := time.NewTicker(c.RedeliverEvery)
	defer ticker.Stop()
	for {
		select {
		case <-c.stopChan:
			return
		case <-ticker.C:
			moved, err := c.Store.RedeliverDeferred(context.Background())
			if err != nil {
				logger.Error().Err(err).Msg("error redelivering deferred requests")
				continue
			}
			if moved > 0 {
				logger.Debug().Int("moved", moved).Msg("redelivered deferred requests")
			}
		}
	}
}

// Stop halts both loops, waiting for the in-flight request to finish or the
// context to expire.
func (c *Consumer) Stop(ctx context.Context) error {
	close(c.stopChan)
	select {
	case <-c.doneChan:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("error waiting for consumer to stop: %w", ctx.Err())
	}
}

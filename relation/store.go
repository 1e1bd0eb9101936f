package relation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/certkit/Legra/orchestrator"
	"github.com/go-redis/redis/v8"
)

var ErrNotFound = errors.New("not found")

const (
	keyRequestPrefix     = "legra:req:"
	keyPublicationPrefix = "legra:pub:"
	keyPending           = "legra:pending"
	keyDeferred          = "legra:deferred"
	keyQueued            = "legra:queued"
	keyLeader            = "legra:leader"
)

// Store is the redis-backed relation state: request payloads, pending and
// deferred id lists, and outbound publications. Request payloads are
// last-write-wins per correlation id.
type Store struct {
	rdb *redis.Client
}

func NewStore(redisURL string) (*Store, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("error in redis.ParseURL: %w", err)
	}
	return &Store{rdb: redis.NewClient(opt)}, nil
}

func (s *Store) Close() error {
	return s.rdb.Close()
}

// SaveRequest stores the payload and enqueues its id for the consumer. An id
// already sitting on the pending or deferred list is not enqueued again, the
// payload update alone is enough (last write wins, single copy in flight).
func (s *Store) SaveRequest(ctx context.Context, req orchestrator.CreationRequest) error {
	jsonBytes, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("error in json.Marshal: %w", err)
	}
	err = s.rdb.Set(ctx, keyRequestPrefix+req.CorrelationID, jsonBytes, 0).Err()
	if err != nil {
		return fmt.Errorf("error in rdb.Set: %w", err)
	}
	added, err := s.rdb.SAdd(ctx, keyQueued, req.CorrelationID).Result()
	if err != nil {
		return fmt.Errorf("error in rdb.SAdd: %w", err)
	}
	if added == 0 {
		return nil
	}
	err = s.rdb.LPush(ctx, keyPending, req.CorrelationID).Err()
	if err != nil {
		return fmt.Errorf("error in rdb.LPush: %w", err)
	}
	return nil
}

// LoadRequest returns the latest payload for a correlation id.
func (s *Store) LoadRequest(ctx context.Context, correlationID string) (orchestrator.CreationRequest, error) {
	var req orchestrator.CreationRequest
	jsonBytes, err := s.rdb.Get(ctx, keyRequestPrefix+correlationID).Bytes()
	if errors.Is(err, redis.Nil) {
		return req, fmt.Errorf("%w: request %s", ErrNotFound, correlationID)
	}
	if err != nil {
		return req, fmt.Errorf("error in rdb.Get: %w", err)
	}
	err = json.Unmarshal(jsonBytes, &req)
	if err != nil {
		return req, fmt.Errorf("error in json.Unmarshal: %w", err)
	}
	return req, nil
}

// Defer parks a request id for later redelivery.
func (s *Store) Defer(ctx context.Context, req orchestrator.CreationRequest) error {
	added, err := s.rdb.SAdd(ctx, keyQueued, req.CorrelationID).Result()
	if err != nil {
		return fmt.Errorf("error in rdb.SAdd: %w", err)
	}
	if added == 0 {
		return nil
	}
	err = s.rdb.LPush(ctx, keyDeferred, req.CorrelationID).Err()
	if err != nil {
		return fmt.Errorf("error in rdb.LPush: %w", err)
	}
	return nil
}

// NextPending blocks up to timeout for the next queued id. Returns
// ErrNotFound (wrapped) when the timeout elapses with nothing queued.
func (s *Store) NextPending(ctx context.Context, timeout time.Duration) (string, error) {
	vals, err := s.rdb.BRPop(ctx, timeout, keyPending).Result()
	if errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("%w: pending queue empty", ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("error in rdb.BRPop: %w", err)
	}
	// BRPOP returns [key, value]
	correlationID := vals[1]
	err = s.rdb.SRem(ctx, keyQueued, correlationID).Err()
	if err != nil {
		return "", fmt.Errorf("error in rdb.SRem: %w", err)
	}
	return correlationID, nil
}

// RedeliverDeferred moves every deferred id back onto the pending list,
// returning how many moved.
func (s *Store) RedeliverDeferred(ctx context.Context) (int, error) {
	moved := 0
	for {
		_, err := s.rdb.RPopLPush(ctx, keyDeferred, keyPending).Result()
		if errors.Is(err, redis.Nil) {
			return moved, nil
		}
		if err != nil {
			return moved, fmt.Errorf("error in rdb.RPopLPush: %w", err)
		}
		moved++
	}
}

// Publish stores the issued chain for a correlation id. Publications are
// immutable once written, the cache layer relies on that.
func (s *Store) Publish(ctx context.Context, correlationID string, pub orchestrator.Publication) error {
	jsonBytes, err := json.Marshal(pub)
	if err != nil {
		return fmt.Errorf("error in json.Marshal: %w", err)
	}
	err = s.rdb.Set(ctx, keyPublicationPrefix+correlationID, jsonBytes, 0).Err()
	if err != nil {
		return fmt.Errorf("error in rdb.Set: %w", err)
	}
	return nil
}

// GetPublication returns the publication for a correlation id, ErrNotFound
// (wrapped) while nothing is published yet.
func (s *Store) GetPublication(ctx context.Context, correlationID string) (orchestrator.Publication, error) {
	var pub orchestrator.Publication
	jsonBytes, err := s.rdb.Get(ctx, keyPublicationPrefix+correlationID).Bytes()
	if errors.Is(err, redis.Nil) {
		return pub, fmt.Errorf("%w: publication %s", ErrNotFound, correlationID)
	}
	if err != nil {
		return pub, fmt.Errorf("error in rdb.Get: %w", err)
	}
	err = json.Unmarshal(jsonBytes, &pub)
	if err != nil {
		return pub, fmt.Errorf("error in json.Unmarshal: %w", err)
	}
	return pub, nil
}

package relation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/certkit/Legra/internal"
	"github.com/certkit/Legra/orchestrator"
	"github.com/mailgun/groupcache/v2"
)

var (
	// Idempotency check
	registeredHandlers = false

	// Returns a `Publication` as JSON.
	ChainGroupCache *groupcache.Group
)

// RegisterCacheHandlers must only be called after groupcache is registered.
// Publications are immutable once written, so serving them from groupcache
// never goes stale.
func RegisterCacheHandlers(store *Store) {
	logger.Debug().Msg("registering cache handlers")
	if registeredHandlers {
		return
	}

	ChainGroupCache = groupcache.NewGroup("published_chains", Env_ChainCacheMB, groupcache.GetterFunc(
		func(ctx context.Context, correlationID string, dest groupcache.Sink) error {
			pub, err := store.GetPublication(ctx, correlationID)
			if err != nil {
				return fmt.Errorf("error in GetPublication: %w", err)
			}

			jsonBytes, err := json.Marshal(pub)
			if err != nil {
				return fmt.Errorf("error in json.Marshal for publication: %w", err)
			}

			internal.Metric_ChainCacheFills.Inc()

			return dest.SetBytes(jsonBytes, time.Now().Add(time.Second*time.Duration(Env_ChainCacheSeconds)))
		},
	))
	registeredHandlers = true
}

// CachedPublications reads publications through the groupcache layer.
type CachedPublications struct {
	store *Store
}

func NewCachedPublications(store *Store) *CachedPublications {
	RegisterCacheHandlers(store)
	return &CachedPublications{store: store}
}

func (c *CachedPublications) GetPublication(ctx context.Context, correlationID string) (orchestrator.Publication, error) {
	var pub orchestrator.Publication

	var b []byte
	err := ChainGroupCache.Get(ctx, correlationID, groupcache.AllocatingByteSliceSink(&b))
	if err != nil {
		// The getter's error does not survive a peer hop, so re-check the
		// store to keep ErrNotFound recognizable to callers.
		if _, storeErr := c.store.GetPublication(ctx, correlationID); storeErr != nil {
			return pub, storeErr
		}
		return pub, fmt.Errorf("error getting from groupcache: %w", err)
	}

	err = json.Unmarshal(b, &pub)
	if err != nil {
		return pub, fmt.Errorf("error in json.Unmarshal: %w", err)
	}

	internal.Metric_ChainCacheLookups.Inc()
	return pub, nil
}

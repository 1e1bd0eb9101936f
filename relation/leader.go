package relation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/certkit/Legra/utils"
	"github.com/go-redis/redis/v8"
)

// LeaderLease elects a single executing unit through a redis SETNX lease.
// The holder renews on every check; a crashed holder loses the lease when
// the TTL expires.
type LeaderLease struct {
	rdb *redis.Client
	// UnitID identifies this process for the lifetime of the lease.
	UnitID string
	TTL    time.Duration
}

func NewLeaderLease(store *Store) *LeaderLease {
	return &LeaderLease{
		rdb:    store.rdb,
		UnitID: utils.GenKSortedID("unit_"),
		TTL:    time.Second * time.Duration(Env_LeaderTTLSeconds),
	}
}

func (l *LeaderLease) IsLeader(ctx context.Context) (bool, error) {
	acquired, err := l.rdb.SetNX(ctx, keyLeader, l.UnitID, l.TTL).Result()
	if err != nil {
		return false, fmt.Errorf("error in rdb.SetNX: %w", err)
	}
	if acquired {
		return true, nil
	}

	holder, err := l.rdb.Get(ctx, keyLeader).Result()
	if errors.Is(err, redis.Nil) {
		// lease expired between the SETNX and the GET, next check wins it
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("error in rdb.Get: %w", err)
	}
	if holder != l.UnitID {
		return false, nil
	}

	err = l.rdb.Expire(ctx, keyLeader, l.TTL).Err()
	if err != nil {
		return false, fmt.Errorf("error in rdb.Expire: %w", err)
	}
	return true, nil
}

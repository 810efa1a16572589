package service

import (
	"context"
	"sync"
	"time"

	dErrors "studentregistry/pkg/domain-errors"
)

// shardedStoreTx serializes upserts per student id using sharded mutexes.
// Operations are distributed across N shards by a hash of the id, so
// concurrent upserts on different ids rarely contend while two upserts on
// the same id always take the same lock.
const numStudentShards = 128

// defaultTxTimeout is the maximum duration for an in-memory transaction.
const defaultTxTimeout = 5 * time.Second

type shardedStoreTx struct {
	shards  [numStudentShards]sync.Mutex
	store   Store
	timeout time.Duration
}

// NewShardedTx wraps an in-memory store in a sharded-lock transaction
// boundary. Used by unit tests and anywhere a real database is not wired.
func NewShardedTx(store Store) StoreTx {
	return &shardedStoreTx{store: store}
}

func (t *shardedStoreTx) RunInTx(ctx context.Context, key string, fn func(store Store) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	shard := hashTxKey(key) % numStudentShards
	t.shards[shard].Lock()
	defer t.shards[shard].Unlock()

	// Check again after acquiring the lock.
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	// No rollback path: the in-memory store's writes cannot fail once the
	// shard lock is held, so a failed fn never leaves partial state behind.
	// Real rollback lives in the Postgres runner.
	return fn(t.store)
}

// hashTxKey uses FNV-1a for even shard distribution.
func hashTxKey(s string) uint32 {
	const (
		fnvOffset = 2166136261
		fnvPrime  = 16777619
	)
	h := uint32(fnvOffset)
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= fnvPrime
	}
	return h
}

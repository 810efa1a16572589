package store

import (
	"context"
	"database/sql"
	"time"

	"studentregistry/internal/student/service"
	dErrors "studentregistry/pkg/domain-errors"
)

const defaultTxTimeout = 5 * time.Second

// TxRunner implements the service transaction boundary over Postgres. Each
// transaction takes an advisory lock on the key before running fn: FOR
// UPDATE alone cannot serialize two first inserts for the same id, since
// neither transaction sees a row to lock and the loser would abort on the
// primary key. Different keys hash to different locks and do not block
// each other.
type TxRunner struct {
	db      *sql.DB
	timeout time.Duration
}

func NewTxRunner(db *sql.DB) *TxRunner {
	return &TxRunner{db: db}
}

func (t *TxRunner) RunInTx(ctx context.Context, key string, fn func(store service.Store) error) error {
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

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Released automatically at commit or rollback.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, key); err != nil {
		return err
	}

	if err := fn(NewPostgresTx(tx)); err != nil {
		return err
	}

	return tx.Commit()
}

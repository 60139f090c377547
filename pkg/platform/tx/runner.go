package tx

import (
	"context"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Runner executes a function atomically with respect to every other
// RunAtomic block. The postgres runner wraps fn in a transaction carried
// through context; the mutex runner serializes fn under a process-wide
// lock for memory stores. Store mutations inside fn must be fail-free once
// their preconditions hold, so a serialized block is observed
// all-or-nothing in both implementations.
type Runner interface {
	RunAtomic(ctx context.Context, fn func(ctx context.Context) error) error
}

// PgxRunner runs fn inside a pgx transaction. Stores joining via From see
// the transaction; a returned error rolls everything back.
type PgxRunner struct {
	pool *pgxpool.Pool
}

func NewPgxRunner(pool *pgxpool.Pool) *PgxRunner {
	return &PgxRunner{pool: pool}
}

func (r *PgxRunner) RunAtomic(ctx context.Context, fn func(ctx context.Context) error) error {
	return pgx.BeginFunc(ctx, r.pool, func(t pgx.Tx) error {
		return fn(WithTx(ctx, t))
	})
}

// MutexRunner serializes atomic blocks for memory-backed deployments.
type MutexRunner struct {
	mu sync.Mutex
}

func NewMutexRunner() *MutexRunner {
	return &MutexRunner{}
}

func (r *MutexRunner) RunAtomic(ctx context.Context, fn func(ctx context.Context) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(ctx)
}

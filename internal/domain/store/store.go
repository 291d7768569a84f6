package store

import "context"

// TxManager scopes a function to a single storage transaction. Repositories
// invoked with the context passed to fn join that transaction; if fn returns
// an error or the context is cancelled mid-flight, every write inside rolls
// back together.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

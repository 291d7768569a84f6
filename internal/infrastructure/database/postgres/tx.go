package postgres

import (
	"context"

	"gorm.io/gorm"

	"cargo-transport/internal/domain/store"
)

type txKey struct{}

// TxManager implements store.TxManager on top of GORM transactions. The
// transaction handle travels in the context so that repositories called
// within the scoped function automatically join it.
type TxManager struct {
	db *DB
}

func NewTxManager(db *DB) *TxManager {
	return &TxManager{db: db}
}

var _ store.TxManager = (*TxManager)(nil)

func (m *TxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.db.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// conn returns the transaction bound to ctx if one is active, otherwise a
// plain context-scoped handle.
func conn(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return fallback.WithContext(ctx)
}

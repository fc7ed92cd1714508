package persistence

import (
	"context"

	"github.com/farmerp/backend/internal/domain/shared"
	"gorm.io/gorm"
)

type txKey struct{}

// GormTransactionManager implements shared.TransactionManager by carrying the
// open *gorm.DB transaction in the context.
type GormTransactionManager struct {
	db *gorm.DB
}

// NewGormTransactionManager creates a new GormTransactionManager
func NewGormTransactionManager(db *gorm.DB) *GormTransactionManager {
	return &GormTransactionManager{db: db}
}

var _ shared.TransactionManager = (*GormTransactionManager)(nil)

// RunInTx commits when fn returns nil. Nested calls join the outer
// transaction through a savepoint.
func (m *GormTransactionManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return conn(ctx, m.db).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// conn returns the transaction carried by ctx, or db when there is none
func conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}

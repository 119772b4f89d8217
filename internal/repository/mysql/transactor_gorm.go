package mysql

import (
	"context"
	"errors"

	"ecommerce-backend/internal/repository"

	driver "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

type txKey struct{}

// Transactor runs a unit of work inside one gorm transaction. The
// transaction handle travels in the context so every repository in this
// package joins it transparently.
type Transactor struct {
	db *gorm.DB
}

func NewTransactor(db *gorm.DB) *Transactor {
	return &Transactor{db: db}
}

func (t *Transactor) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
	if isLockConflict(err) {
		return repository.ErrConflict
	}
	return err
}

// dbFrom resolves the transaction from the context, falling back to the
// root connection for calls made outside RunInTx.
func dbFrom(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return fallback.WithContext(ctx)
}

// MySQL 1213 = deadlock victim, 1205 = lock wait timeout.
func isLockConflict(err error) bool {
	var me *driver.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1213 || me.Number == 1205
	}
	return false
}

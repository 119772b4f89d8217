package repository

import (
	"context"
	"errors"
)

// ErrConflict is returned when a transaction loses a lock race
// (deadlock or lock wait timeout). Callers should retry.
var ErrConflict = errors.New("concurrent modification")

// Transactor scopes a unit of work to a single database transaction.
// Repository calls made with the context passed to fn join that
// transaction.
type Transactor interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

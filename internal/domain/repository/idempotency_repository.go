package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/pos-api/internal/domain/entity"
)

// IdempotencyRepository defines the interface for idempotency key operations
type IdempotencyRepository interface {
	// GetByKey retrieves an idempotency key by its key string and subject
	GetByKey(ctx context.Context, key string, subject uuid.UUID) (*entity.IdempotencyKey, error)
	// Save stores ikey, replacing any earlier record for the same key and subject
	Save(ctx context.Context, ikey *entity.IdempotencyKey) error
	// DeleteExpired removes keys that expired before now
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

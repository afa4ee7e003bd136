package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/pos-api/internal/domain/entity"
	domainRepo "github.com/sangkips/pos-api/internal/domain/repository"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type idempotencyRepository struct {
	db *gorm.DB
}

// NewIdempotencyRepository creates a new idempotency repository
func NewIdempotencyRepository(db *gorm.DB) domainRepo.IdempotencyRepository {
	return &idempotencyRepository{db: db}
}

func (r *idempotencyRepository) GetByKey(ctx context.Context, key string, subject uuid.UUID) (*entity.IdempotencyKey, error) {
	var ikey entity.IdempotencyKey
	err := conn(ctx, r.db).
		Where("key = ? AND subject = ?", key, subject).
		First(&ikey).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &ikey, err
}

func (r *idempotencyRepository) Save(ctx context.Context, ikey *entity.IdempotencyKey) error {
	return conn(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}, {Name: "subject"}},
		DoUpdates: clause.AssignmentColumns([]string{"endpoint", "response_code", "response_body", "created_at", "expires_at"}),
	}).Create(ikey).Error
}

func (r *idempotencyRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result := conn(ctx, r.db).
		Where("expires_at < ?", now).
		Delete(&entity.IdempotencyKey{})
	return result.RowsAffected, result.Error
}

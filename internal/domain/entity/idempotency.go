package entity

import (
	"time"

	"github.com/google/uuid"
)

// IdempotencyKey stores a processed request so a terminal can safely retry it
type IdempotencyKey struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Key          string    `gorm:"uniqueIndex:idx_idempotency_key_subject;size:255;not null" json:"key"`
	Subject      uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_idempotency_key_subject;not null" json:"subject"` // authenticated terminal or staff id
	Endpoint     string    `gorm:"size:255;not null" json:"endpoint"`
	ResponseCode int       `gorm:"not null" json:"response_code"`
	ResponseBody string    `gorm:"type:text" json:"response_body"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	ExpiresAt    time.Time `gorm:"not null;index" json:"expires_at"`
}

// TableName returns the table name for IdempotencyKey
func (IdempotencyKey) TableName() string {
	return "idempotency_keys"
}

// IsExpired reports whether the key is past its expiry at the given time
func (i *IdempotencyKey) IsExpired(now time.Time) bool {
	return now.After(i.ExpiresAt)
}

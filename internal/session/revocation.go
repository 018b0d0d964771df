package session

import (
	"context"
	"fmt"
	"time"

	"inkwell/internal/database"
	"inkwell/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RevocationStore remembers token IDs ended by logout until the token expires.
type RevocationStore interface {
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type redisRevocations struct {
	client *redis.Client
	now    func() time.Time
}

// NewRedisRevocations keeps revoked token IDs under blacklist:<jti> keys that
// expire with the token. It returns nil for a nil client.
func NewRedisRevocations(client *redis.Client) RevocationStore {
	if client == nil {
		return nil
	}
	return &redisRevocations{client: client, now: time.Now}
}

func (r *redisRevocations) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	ttl := expiresAt.Sub(r.now())
	if ttl <= 0 {
		return nil
	}
	return r.client.Set(ctx, revokedKeyPrefix+jti, "1", ttl).Err()
}

func (r *redisRevocations) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := r.client.Exists(ctx, revokedKeyPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

type storeRevocations struct {
	db  *gorm.DB
	now func() time.Time
}

// NewStoreRevocations keeps revoked token IDs in the revoked_sessions table.
// Used when no Redis client is available.
func NewStoreRevocations(db *gorm.DB) RevocationStore {
	return &storeRevocations{db: db, now: time.Now}
}

func (s *storeRevocations) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	now := s.now()
	if !expiresAt.After(now) {
		return nil
	}
	_, err := database.WithRetry(ctx, "revoked_sessions.create", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := tx.Where("expires_at <= ?", now).Delete(&models.RevokedSession{}).Error; err != nil {
				return err
			}
			return tx.Clauses(clause.OnConflict{DoNothing: true}).
				Create(&models.RevokedSession{JTI: jti, ExpiresAt: expiresAt}).Error
		})
	})
	if err != nil {
		return fmt.Errorf("store revocation: %w", err)
	}
	return nil
}

func (s *storeRevocations) IsRevoked(ctx context.Context, jti string) (bool, error) {
	return database.WithRetry(ctx, "revoked_sessions.exists", func(ctx context.Context) (bool, error) {
		var n int64
		err := s.db.WithContext(ctx).Model(&models.RevokedSession{}).
			Where("jti = ? AND expires_at > ?", jti, s.now()).
			Count(&n).Error
		return n > 0, err
	})
}

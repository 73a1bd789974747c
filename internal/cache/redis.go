package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/avialine/groupfare/config"
	"github.com/avialine/groupfare/internal/domain"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client  *redis.Client
	bidsTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, bidsTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:  redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		bidsTTL: bidsTTL,
	}
}

func (c *RedisCache) GetBids(ctx context.Context) ([]domain.Bid, error) {
	data, err := c.client.Get(ctx, bidsKey()).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var bids []domain.Bid
	if err := json.Unmarshal(data, &bids); err != nil {
		return nil, err
	}
	return bids, nil
}

func (c *RedisCache) SetBids(ctx context.Context, bids []domain.Bid) error {
	payload, err := json.Marshal(bids)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, bidsKey(), payload, c.bidsTTL).Err()
}

func (c *RedisCache) InvalidateBids(ctx context.Context) error {
	return c.client.Del(ctx, bidsKey()).Err()
}

// AcquireBidLock serializes one user's submission attempts against a bid.
// Capacity itself is enforced by the row lock in the repository; this is a
// fast-path guard against duplicate submits.
func (c *RedisCache) AcquireBidLock(ctx context.Context, bidID, userID int64, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, bidLockKey(bidID, userID), "locked", ttl).Result()
}

func (c *RedisCache) ReleaseBidLock(ctx context.Context, bidID, userID int64) error {
	return c.client.Del(ctx, bidLockKey(bidID, userID)).Err()
}

func bidsKey() string {
	return "cache:bids"
}

func bidLockKey(bidID, userID int64) string {
	return fmt.Sprintf("lock:bid:%d:user:%d", bidID, userID)
}

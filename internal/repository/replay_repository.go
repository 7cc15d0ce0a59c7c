package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// QRReplayRepo records used QR token ids in Redis so each token checks
// in at most once during its lifetime.
type QRReplayRepo struct {
	rdb    *redis.Client
	prefix string
}

func NewQRReplayRepo(rdb *redis.Client, prefix string) *QRReplayRepo {
	if prefix == "" {
		prefix = "qr:used"
	}
	return &QRReplayRepo{rdb: rdb, prefix: prefix}
}

func (r *QRReplayRepo) key(id string) string { return r.prefix + ":" + id }

// Claim marks id as used for ttl. It reports false when id was already
// claimed.
func (r *QRReplayRepo) Claim(ctx context.Context, id string, ttl time.Duration) (bool, error) {
	if ttl < time.Second {
		ttl = time.Second
	}
	return r.rdb.SetNX(ctx, r.key(id), 1, ttl).Result()
}

// Release forgets id so the token can be presented again.
func (r *QRReplayRepo) Release(ctx context.Context, id string) error {
	return r.rdb.Del(ctx, r.key(id)).Err()
}

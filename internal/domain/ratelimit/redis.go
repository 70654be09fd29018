package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/okian/tutorbot/internal/domain/model"
)

// admitScript prunes, checks and records atomically. Scores are unix
// milliseconds; ZREMRANGEBYSCORE is inclusive so a stamp exactly one window
// old is pruned, matching the in-memory backend.
//
// Returns {allowed, count, oldest}.
var admitScript = redis.NewScript(`
local key    = KEYS[1]
local now    = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local cap    = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)
local allowed = 0
if count < cap then
  redis.call('ZADD', key, now, ARGV[4])
  count = count + 1
  allowed = 1
end
if count > 0 then
  redis.call('PEXPIRE', key, window)
end

local oldest = 0
local first = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
if first[2] then
  oldest = tonumber(first[2])
end
return {allowed, count, oldest}
`)

// Redis is a sliding-window limiter shared by every replica that points at
// the same Redis. Each user is one sorted set; keys expire one window after
// their last admission, so idle users cost nothing.
type Redis struct {
	cfg    config
	client redis.Cmdable
}

// NewRedis returns a limiter backed by client.
func NewRedis(client redis.Cmdable, opts ...Option) *Redis {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Redis{cfg: cfg, client: client}
}

func (r *Redis) key(user model.UserID) string {
	return r.cfg.prefix + user.String()
}

func (r *Redis) windowStart(now time.Time) int64 {
	return now.UnixMilli() - r.cfg.window.Milliseconds()
}

// Admit implements Limiter.
func (r *Redis) Admit(ctx context.Context, user model.UserID) (Decision, error) {
	now := r.cfg.clock()
	res, err := admitScript.Run(ctx, r.client, []string{r.key(user)},
		now.UnixMilli(), r.cfg.window.Milliseconds(), r.cfg.cap, uuid.NewString(),
	).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("%w: admit: %w", ErrStoreUnavailable, err)
	}
	if len(res) != 3 {
		return Decision{}, fmt.Errorf("%w: admit: unexpected reply %v", ErrStoreUnavailable, res)
	}

	d := Decision{Allowed: res[0] == 1, Remaining: r.cfg.cap - int(res[1])}
	if d.Remaining < 0 {
		d.Remaining = 0
	}
	if res[1] > 0 {
		d.RetryAfter = r.resetFrom(res[2], now)
	}
	return d, nil
}

// Remaining implements Limiter.
func (r *Redis) Remaining(ctx context.Context, user model.UserID) (int, error) {
	now := r.cfg.clock()
	n, err := r.client.ZCount(ctx, r.key(user), "("+strconv.FormatInt(r.windowStart(now), 10), "+inf").Result()
	if err != nil {
		return 0, fmt.Errorf("%w: count: %w", ErrStoreUnavailable, err)
	}
	if rem := r.cfg.cap - int(n); rem > 0 {
		return rem, nil
	}
	return 0, nil
}

// TimeUntilReset implements Limiter.
func (r *Redis) TimeUntilReset(ctx context.Context, user model.UserID) (time.Duration, error) {
	now := r.cfg.clock()
	zs, err := r.client.ZRangeByScoreWithScores(ctx, r.key(user), &redis.ZRangeBy{
		Min:   "(" + strconv.FormatInt(r.windowStart(now), 10),
		Max:   "+inf",
		Count: 1,
	}).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: oldest: %w", ErrStoreUnavailable, err)
	}
	if len(zs) == 0 {
		return 0, nil
	}
	return r.resetFrom(int64(zs[0].Score), now), nil
}

func (r *Redis) resetFrom(oldestMs int64, now time.Time) time.Duration {
	d := time.UnixMilli(oldestMs).Add(r.cfg.window).Sub(now)
	if d < 0 {
		return 0
	}
	return d
}

// Cap implements Limiter.
func (r *Redis) Cap() int { return r.cfg.cap }

// Window implements Limiter.
func (r *Redis) Window() time.Duration { return r.cfg.window }

package ratelimit

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

var fixedWindowScript = redis.NewScript(`
-- KEYS[1] = counter key
-- ARGV[1] = max requests (int)
-- ARGV[2] = window_ms (int)
--
-- Returns: {allowed (0/1), retry_after_ms}
local current = redis.call('INCR', KEYS[1])
if current == 1 then
  redis.call('PEXPIRE', KEYS[1], ARGV[2])
else
  -- Ensure TTL exists even if key already existed without TTL
  if redis.call('PTTL', KEYS[1]) < 0 then
    redis.call('PEXPIRE', KEYS[1], ARGV[2])
  end
end

if current > tonumber(ARGV[1]) then
  local ttl = redis.call('PTTL', KEYS[1])
  if ttl < 0 then
    ttl = tonumber(ARGV[2])
  end
  return {0, ttl}
end
return {1, 0}
`)

// Redis is a shared-store fixed-window limiter for multi-process deployments.
// Same contract as Memory; the window lives in a keyed counter with a TTL so
// crashed processes cannot leak permanent state.
type Redis struct {
	rdb *redis.Client
}

func NewRedis(rdb *redis.Client) *Redis {
	return &Redis{rdb: rdb}
}

func (r *Redis) Allow(ctx context.Context, key string, maxRequests int, window time.Duration) (Decision, error) {
	if key == "" || maxRequests <= 0 || window <= 0 {
		return Decision{}, ErrInvalidArgument
	}
	if r.rdb == nil {
		return Decision{}, errors.New("ratelimit: redis client is nil")
	}

	res, err := fixedWindowScript.Run(ctx, r.rdb, []string{key}, maxRequests, window.Milliseconds()).Int64Slice()
	if err != nil {
		return Decision{}, err
	}
	return decisionFromReply(res)
}

// decisionFromReply maps the script's {allowed, retry_after_ms} reply.
func decisionFromReply(res []int64) (Decision, error) {
	if len(res) != 2 {
		return Decision{}, errors.New("ratelimit: unexpected script result")
	}
	if res[0] == 1 {
		return Decision{Allowed: true}, nil
	}
	return Decision{Allowed: false, RetryAfter: time.Duration(res[1]) * time.Millisecond}, nil
}

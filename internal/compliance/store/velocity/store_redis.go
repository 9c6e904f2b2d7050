package velocity

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"transferguard/internal/compliance/rules"
	"transferguard/pkg/domain"
)

// recordScript performs the window commit atomically server-side: reset the
// window when expired, otherwise add to the running amount. Running it as a
// single Lua script is what makes concurrent commits to the same address
// safe across multiple engine instances.
var recordScript = redis.NewScript(`
local start = tonumber(redis.call('HGET', KEYS[1], 'window_start'))
local amount = tonumber(redis.call('HGET', KEYS[1], 'amount'))
local add = tonumber(ARGV[1])
local now = tonumber(ARGV[2])
local duration = tonumber(ARGV[3])
if start == nil or now >= start + duration then
  redis.call('HSET', KEYS[1], 'window_start', now, 'amount', add)
else
  redis.call('HSET', KEYS[1], 'amount', amount + add)
end
redis.call('PEXPIRE', KEYS[1], duration)
return redis.call('HGET', KEYS[1], 'amount')
`)

// RedisStore keeps windows in Redis so velocity limits hold across engine
// replicas. Keys expire one window-duration after the last commit.
type RedisStore struct {
	client redis.UniversalClient
}

func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func key(addr domain.Address) string {
	return "transferguard:velocity:" + addr.String()
}

func (s *RedisStore) Get(ctx context.Context, addr domain.Address) (rules.WindowState, error) {
	fields, err := s.client.HGetAll(ctx, key(addr)).Result()
	if err != nil {
		return rules.WindowState{}, fmt.Errorf("get velocity window: %w", err)
	}
	if len(fields) == 0 {
		return rules.WindowState{}, nil
	}

	var state rules.WindowState
	if raw, ok := fields["window_start"]; ok {
		var startMillis int64
		if _, err := fmt.Sscan(raw, &startMillis); err != nil {
			return rules.WindowState{}, fmt.Errorf("parse window start %q: %w", raw, err)
		}
		state.WindowStart = time.UnixMilli(startMillis)
	}
	if raw, ok := fields["amount"]; ok {
		if _, err := fmt.Sscan(raw, &state.Amount); err != nil {
			return rules.WindowState{}, fmt.Errorf("parse window amount %q: %w", raw, err)
		}
	}
	return state, nil
}

func (s *RedisStore) Record(ctx context.Context, addr domain.Address, amount uint64, now time.Time, duration time.Duration) error {
	err := recordScript.Run(ctx, s.client, []string{key(addr)},
		amount, now.UnixMilli(), duration.Milliseconds(),
	).Err()
	if err != nil {
		return fmt.Errorf("record velocity transfer: %w", err)
	}
	return nil
}

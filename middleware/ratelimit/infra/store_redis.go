package infra

import (
	"context"
	"fmt"
	"strings"
	"time"

	"vibecoding-gateway/middleware/ratelimit/domain"

	"github.com/redis/go-redis/v9"
)

// takeScript roda a sequência de janela fixa de forma atômica no Redis.
//
// KEYS[1] chave do contador, ARGV[1] janela em ms, ARGV[2] max.
// Retorna {taken, count, ttl_ms}.
var takeScript = redis.NewScript(`
local window = tonumber(ARGV[1])
local max = tonumber(ARGV[2])
local ttl = redis.call('PTTL', KEYS[1])
local count = 0
if ttl > 0 then
  count = tonumber(redis.call('GET', KEYS[1]) or '0')
else
  redis.call('DEL', KEYS[1])
  ttl = window
end
if count >= max then
  return {0, count, ttl}
end
count = redis.call('INCR', KEYS[1])
if count == 1 then
  redis.call('PEXPIRE', KEYS[1], window)
end
return {1, count, ttl}
`)

// RedisStore guarda os contadores de janela fixa no Redis, assim todas as
// instâncias do gateway aplicam um único limite. A expiração da chave substitui
// a limpeza.
type RedisStore struct {
	rdb    redis.Scripter
	prefix string
	now    func() time.Time
}

type RedisStoreOption func(*RedisStore)

func WithKeyPrefix(prefix string) RedisStoreOption {
	return func(s *RedisStore) { s.prefix = strings.Trim(prefix, ":") }
}

// WithRedisClock substitui time.Now ao converter o TTL restante em ResetAt.
func WithRedisClock(now func() time.Time) RedisStoreOption {
	return func(s *RedisStore) { s.now = now }
}

func NewRedisStore(rdb redis.Scripter, opts ...RedisStoreOption) *RedisStore {
	s := &RedisStore{
		rdb:    rdb,
		prefix: "ratelimit:window",
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Take implementa domain.CounterStore.
func (s *RedisStore) Take(ctx context.Context, key domain.Key, window time.Duration, max int) (domain.Usage, bool, error) {
	const op = "infra.RedisStore.Take"

	ms := window.Milliseconds()
	if ms <= 0 {
		ms = 1
	}

	res, err := takeScript.Run(ctx, s.rdb, []string{s.prefix + ":" + string(key)}, ms, max).Int64Slice()
	if err != nil {
		return domain.Usage{}, false, fmt.Errorf("%s: %w", op, err)
	}
	if len(res) != 3 {
		return domain.Usage{}, false, fmt.Errorf("%s: unexpected script reply %v", op, res)
	}

	u := domain.Usage{
		Count:   int(res[1]),
		ResetAt: s.now().Add(time.Duration(res[2]) * time.Millisecond),
	}
	return u, res[0] == 1, nil
}

package infra

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"vibecoding-gateway/middleware/ratelimit/domain"

	"github.com/redis/go-redis/v9"
)

// StatsBucket é a resolução da série temporal do RedisStatsStore.
type StatsBucket string

const (
	BucketMinute StatsBucket = "minute"
	BucketHour   StatsBucket = "hour"
	BucketNone   StatsBucket = "none"
)

func (b StatsBucket) key(prefix string, at time.Time) (string, bool) {
	at = at.UTC()
	switch b {
	case BucketMinute:
		return prefix + ":minute:" + at.Format("200601021504"), true
	case BucketHour:
		return prefix + ":hour:" + at.Format("2006010215"), true
	default:
		return "", false
	}
}

const (
	fieldAllowed = "allowed"
	fieldDenied  = "denied"
	fieldPremium = "premium"
)

// RedisStatsStore agrega as decisões em hashes Redis com os campos
// allowed, denied e premium:
//
//	{prefix}:total                 cumulativo
//	{prefix}:policy:{policy}       cumulativo, por política
//	{prefix}:minute:YYYYMMDDHHMM   por bucket, expira após ttl
//	{prefix}:key:{key}             por chave se trackKeys, expira após ttl
//
// Todas as instâncias do gateway escrevem nos mesmos hashes, então os totais
// cobrem o deploy inteiro.
type RedisStatsStore struct {
	rdb redis.Cmdable

	prefix    string
	ttl       time.Duration
	bucket    StatsBucket
	trackKeys bool
}

type RedisStatsOption func(*RedisStatsStore)

func WithStatsPrefix(prefix string) RedisStatsOption {
	return func(s *RedisStatsStore) { s.prefix = strings.Trim(prefix, ":") }
}

// WithStatsTTL aplica apenas em chaves de série temporal / por key.
// Total é cumulativo e não expira.
func WithStatsTTL(d time.Duration) RedisStatsOption {
	return func(s *RedisStatsStore) { s.ttl = d }
}

// WithStatsBucket aceita "minute", "hour" ou "none"; qualquer outro valor
// desliga a série temporal.
func WithStatsBucket(bucket string) RedisStatsOption {
	return func(s *RedisStatsStore) {
		s.bucket = StatsBucket(strings.ToLower(strings.TrimSpace(bucket)))
	}
}

func WithStatsTrackKeys(track bool) RedisStatsOption {
	return func(s *RedisStatsStore) { s.trackKeys = track }
}

func NewRedisStatsStore(rdb redis.Cmdable, opts ...RedisStatsOption) *RedisStatsStore {
	s := &RedisStatsStore{
		rdb:    rdb,
		prefix: "ratelimit:stats",
		ttl:    24 * time.Hour,
		bucket: BucketMinute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Record implementa domain.StatsStore numa única ida ao Redis (pipeline).
// Store nil não registra nada.
func (s *RedisStatsStore) Record(ctx context.Context, ev domain.StatsEvent) error {
	const op = "infra.RedisStatsStore.Record"

	if s == nil || s.rdb == nil {
		return nil
	}

	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}
	outcome := fieldDenied
	if ev.Allowed {
		outcome = fieldAllowed
	}

	incr := func(pipe redis.Pipeliner, key string, expire bool) {
		pipe.HIncrBy(ctx, key, outcome, 1)
		if ev.Premium {
			pipe.HIncrBy(ctx, key, fieldPremium, 1)
		}
		if expire && s.ttl > 0 {
			pipe.Expire(ctx, key, s.ttl)
		}
	}

	_, err := s.rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		incr(pipe, s.prefix+":total", false)
		if policy := strings.TrimSpace(ev.Policy); policy != "" {
			incr(pipe, s.prefix+":policy:"+policy, false)
		}
		if key, ok := s.bucket.key(s.prefix, at); ok {
			incr(pipe, key, true)
		}
		if k := strings.TrimSpace(string(ev.Key)); s.trackKeys && k != "" {
			incr(pipe, s.prefix+":key:"+k, true)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Totals lê os contadores cumulativos.
func (s *RedisStatsStore) Totals(ctx context.Context) (Counters, error) {
	return s.read(ctx, s.prefix+":total")
}

// PolicyTotals lê os contadores cumulativos de uma política.
func (s *RedisStatsStore) PolicyTotals(ctx context.Context, policy string) (Counters, error) {
	return s.read(ctx, s.prefix+":policy:"+policy)
}

// BucketTotals lê os contadores do bucket que contém at. Zero quando os
// buckets estão desligados ou o bucket expirou.
func (s *RedisStatsStore) BucketTotals(ctx context.Context, at time.Time) (Counters, error) {
	key, ok := s.bucket.key(s.prefix, at)
	if !ok {
		return Counters{}, nil
	}
	return s.read(ctx, key)
}

func (s *RedisStatsStore) read(ctx context.Context, key string) (Counters, error) {
	const op = "infra.RedisStatsStore.read"

	fields, err := s.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		return Counters{}, fmt.Errorf("%s: %w", op, err)
	}

	var c Counters
	for name, dst := range map[string]*int64{
		fieldAllowed: &c.Allowed,
		fieldDenied:  &c.Denied,
		fieldPremium: &c.Premium,
	} {
		raw, ok := fields[name]
		if !ok {
			continue
		}
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Counters{}, fmt.Errorf("%s: %s %s: %w", op, key, name, err)
		}
		*dst = n
	}
	return c, nil
}

package cache

import (
	"context"
	"fmt"
	"sync"

	"github.com/farmerp/backend/internal/domain/procurement"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const defaultSequencePrefix = "farmerp:order_seq:"

// seedAndIncr raises the counter to the floor when it is missing or behind,
// then increments it. Both steps run atomically on the server.
var seedAndIncr = redis.NewScript(`
local current = tonumber(redis.call('GET', KEYS[1]) or '0')
local floor = tonumber(ARGV[1])
if current < floor then
  redis.call('SET', KEYS[1], floor)
end
return redis.call('INCR', KEYS[1])
`)

// SequenceFloor reports the highest sequence value already used by a firm.
// The database generator's table is the usual source.
type SequenceFloor interface {
	LastSequence(ctx context.Context, firmID uuid.UUID) (int64, error)
}

// SequenceClient is the subset of the Redis client the generator uses
type SequenceClient interface {
	redis.Scripter
	Incr(ctx context.Context, key string) *redis.IntCmd
}

// RedisOrderNumberGenerator issues per-firm sequence values with INCR.
// The first call per firm in a process seeds the counter from floor, so a
// flushed Redis never reissues numbers the database already holds.
type RedisOrderNumberGenerator struct {
	client SequenceClient
	prefix string
	floor  SequenceFloor
	seeded sync.Map
}

// NewRedisOrderNumberGenerator creates a generator. floor may be nil.
func NewRedisOrderNumberGenerator(client SequenceClient, prefix string, floor SequenceFloor) *RedisOrderNumberGenerator {
	if prefix == "" {
		prefix = defaultSequencePrefix
	}
	return &RedisOrderNumberGenerator{client: client, prefix: prefix, floor: floor}
}

var _ procurement.OrderNumberGenerator = (*RedisOrderNumberGenerator)(nil)

// Key returns the Redis key that holds firmID's counter
func (g *RedisOrderNumberGenerator) Key(firmID uuid.UUID) string {
	return g.prefix + firmID.String()
}

// Next returns the firm's next sequence value
func (g *RedisOrderNumberGenerator) Next(ctx context.Context, firmID uuid.UUID) (int64, error) {
	key := g.Key(firmID)

	if _, done := g.seeded.Load(firmID); done || g.floor == nil {
		v, err := g.client.Incr(ctx, key).Result()
		if err != nil {
			return 0, fmt.Errorf("incr %s: %w", key, err)
		}
		return v, nil
	}

	floor, err := g.floor.LastSequence(ctx, firmID)
	if err != nil {
		return 0, fmt.Errorf("read sequence floor for firm %s: %w", firmID, err)
	}
	v, err := seedAndIncr.Run(ctx, g.client, []string{key}, floor).Int64()
	if err != nil {
		return 0, fmt.Errorf("seed %s: %w", key, err)
	}
	g.seeded.Store(firmID, struct{}{})
	return v, nil
}

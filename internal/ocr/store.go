package ocr

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultKey = "assistant:screen_context"

// Store keeps a short rolling log of completed screen contexts in a redis
// sorted set scored by completion time.
type Store struct {
	redis *redis.Client
	key   string
	ttl   time.Duration
}

func NewStore(redisClient *redis.Client, ttl time.Duration) *Store {
	if ttl == 0 {
		ttl = 10 * time.Minute
	}
	return &Store{
		redis: redisClient,
		key:   defaultKey,
		ttl:   ttl,
	}
}

func (s *Store) Record(ctx context.Context, sc ScreenContext) error {
	data, err := json.Marshal(sc)
	if err != nil {
		return fmt.Errorf("marshal screen context: %w", err)
	}

	score := sc.CompletedAt.UnixMilli()
	cutoff := sc.CompletedAt.Add(-s.ttl).UnixMilli()

	pipe := s.redis.Pipeline()
	pipe.ZAdd(ctx, s.key, redis.Z{Score: float64(score), Member: data})
	pipe.ZRemRangeByScore(ctx, s.key, "-inf", "("+strconv.FormatInt(cutoff, 10))
	pipe.Expire(ctx, s.key, s.ttl)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Store) Latest(ctx context.Context) (*ScreenContext, error) {
	results, err := s.redis.ZRevRangeWithScores(ctx, s.key, 0, 0).Result()
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return decodeMember(results[0].Member)
}

// Range returns contexts completed between since and until, oldest first.
func (s *Store) Range(ctx context.Context, since, until time.Time, limit int) ([]ScreenContext, error) {
	opt := &redis.ZRangeBy{
		Min:   strconv.FormatInt(since.UnixMilli(), 10),
		Max:   strconv.FormatInt(until.UnixMilli(), 10),
		Count: int64(limit),
	}

	results, err := s.redis.ZRangeByScoreWithScores(ctx, s.key, opt).Result()
	if err != nil {
		return nil, err
	}

	out := make([]ScreenContext, 0, len(results))
	for _, r := range results {
		sc, err := decodeMember(r.Member)
		if err != nil {
			continue
		}
		out = append(out, *sc)
	}
	return out, nil
}

func (s *Store) Clear(ctx context.Context) error {
	return s.redis.Del(ctx, s.key).Err()
}

func decodeMember(member any) (*ScreenContext, error) {
	data, ok := member.(string)
	if !ok {
		return nil, fmt.Errorf("invalid screen context member type %T", member)
	}
	var sc ScreenContext
	if err := json.Unmarshal([]byte(data), &sc); err != nil {
		return nil, fmt.Errorf("decode screen context: %w", err)
	}
	return &sc, nil
}

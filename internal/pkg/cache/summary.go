package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/salon-payroll-go/internal/domain/payroll"
	"github.com/redis/go-redis/v9"
)

const (
	summaryKeyPrefix    = "payroll_summary:"
	generationKeyPrefix = "payroll_summary_gen:"
)

// SummaryCache stores period summaries keyed by month/year. Every
// Invalidate bumps the period's generation; Set only stores a summary read
// under the generation that is still current.
type SummaryCache interface {
	Get(ctx context.Context, month, year int) (payroll.PeriodSummaryResponse, bool, error)
	Generation(ctx context.Context, month, year int) (int64, error)
	Set(ctx context.Context, month, year int, generation int64, summary payroll.PeriodSummaryResponse) (bool, error)
	Invalidate(ctx context.Context, month, year int) error
}

var errStaleGeneration = errors.New("payroll summary generation changed")

type RedisSummaryCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSummaryCache(client *redis.Client, ttl time.Duration) *RedisSummaryCache {
	return &RedisSummaryCache{client: client, ttl: ttl}
}

// NewRedisClient connects and pings the server.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

func summaryKey(month, year int) string {
	return fmt.Sprintf("%s%04d-%02d", summaryKeyPrefix, year, month)
}

func generationKey(month, year int) string {
	return fmt.Sprintf("%s%04d-%02d", generationKeyPrefix, year, month)
}

func (c *RedisSummaryCache) Get(ctx context.Context, month, year int) (payroll.PeriodSummaryResponse, bool, error) {
	raw, err := c.client.Get(ctx, summaryKey(month, year)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return payroll.PeriodSummaryResponse{}, false, nil
		}
		return payroll.PeriodSummaryResponse{}, false, fmt.Errorf("failed to read payroll summary cache: %w", err)
	}

	var summary payroll.PeriodSummaryResponse
	if err := json.Unmarshal(raw, &summary); err != nil {
		return payroll.PeriodSummaryResponse{}, false, fmt.Errorf("failed to decode payroll summary cache: %w", err)
	}
	return summary, true, nil
}

// Generation returns the period's invalidation counter; zero when the period
// was never invalidated.
func (c *RedisSummaryCache) Generation(ctx context.Context, month, year int) (int64, error) {
	gen, err := c.client.Get(ctx, generationKey(month, year)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read payroll summary generation: %w", err)
	}
	return gen, nil
}

// Set stores the summary when the period's generation still equals
// generation. It reports false without error when an invalidation got there
// first.
func (c *RedisSummaryCache) Set(ctx context.Context, month, year int, generation int64, summary payroll.PeriodSummaryResponse) (bool, error) {
	raw, err := json.Marshal(summary)
	if err != nil {
		return false, fmt.Errorf("failed to encode payroll summary: %w", err)
	}

	genKey := generationKey(month, year)
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, genKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != generation {
			return errStaleGeneration
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, summaryKey(month, year), raw, c.ttl)
			return nil
		})
		return err
	}, genKey)

	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, errStaleGeneration), errors.Is(err, redis.TxFailedErr):
		return false, nil
	default:
		return false, fmt.Errorf("failed to write payroll summary cache: %w", err)
	}
}

// Invalidate drops the cached summary and bumps the generation in one
// transaction, so a Set racing with it cannot store the older totals.
func (c *RedisSummaryCache) Invalidate(ctx context.Context, month, year int) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, generationKey(month, year))
		pipe.Del(ctx, summaryKey(month, year))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to invalidate payroll summary cache: %w", err)
	}
	return nil
}

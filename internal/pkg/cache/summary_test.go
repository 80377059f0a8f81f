package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/cmlabs-hris/salon-payroll-go/internal/domain/payroll"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*RedisSummaryCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisSummaryCache(client, time.Minute), mr
}

func TestRedisSummaryCache_Miss(t *testing.T) {
	c, _ := newTestCache(t)

	_, ok, err := c.Get(context.Background(), 3, 2024)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisSummaryCache_SetGetInvalidate(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t)

	summary := payroll.PeriodSummaryResponse{
		PeriodMonth:     3,
		PeriodYear:      2024,
		TotalGross:      decimal.RequireFromString("1200"),
		TotalCommission: decimal.RequireFromString("144"),
		TotalNetPay:     decimal.RequireFromString("224"),
		StaffProcessed:  1,
		CalculatedCount: 1,
	}
	stored, err := c.Set(ctx, 3, 2024, 0, summary)
	require.NoError(t, err)
	assert.True(t, stored)
	assert.True(t, mr.Exists("payroll_summary:2024-03"))
	assert.Equal(t, time.Minute, mr.TTL("payroll_summary:2024-03"))

	got, ok, err := c.Get(ctx, 3, 2024)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, summary.TotalNetPay.Equal(got.TotalNetPay))
	assert.True(t, summary.TotalCommission.Equal(got.TotalCommission))
	assert.Equal(t, 1, got.StaffProcessed)

	require.NoError(t, c.Invalidate(ctx, 3, 2024))
	_, ok, err = c.Get(ctx, 3, 2024)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisSummaryCache_ExpiresAfterTTL(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t)

	_, err := c.Set(ctx, 12, 2023, 0, payroll.PeriodSummaryResponse{PeriodMonth: 12, PeriodYear: 2023})
	require.NoError(t, err)
	mr.FastForward(2 * time.Minute)

	_, ok, err := c.Get(ctx, 12, 2023)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisSummaryCache_InvalidateBumpsGeneration(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t)

	gen, err := c.Generation(ctx, 3, 2024)
	require.NoError(t, err)
	assert.Zero(t, gen)

	require.NoError(t, c.Invalidate(ctx, 3, 2024))
	require.NoError(t, c.Invalidate(ctx, 3, 2024))

	gen, err = c.Generation(ctx, 3, 2024)
	require.NoError(t, err)
	assert.Equal(t, int64(2), gen)
	assert.Equal(t, "2", mustGet(t, mr, "payroll_summary_gen:2024-03"))

	other, err := c.Generation(ctx, 4, 2024)
	require.NoError(t, err)
	assert.Zero(t, other)
}

func TestRedisSummaryCache_SetAfterInvalidateIsDropped(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t)

	// summary read from the database under generation 0
	gen, err := c.Generation(ctx, 3, 2024)
	require.NoError(t, err)
	old := payroll.PeriodSummaryResponse{PeriodMonth: 3, PeriodYear: 2024, CalculatedCount: 5}

	// an approval commits and invalidates before the write
	require.NoError(t, c.Invalidate(ctx, 3, 2024))

	stored, err := c.Set(ctx, 3, 2024, gen, old)
	require.NoError(t, err)
	assert.False(t, stored)
	assert.False(t, mr.Exists("payroll_summary:2024-03"))

	gen, err = c.Generation(ctx, 3, 2024)
	require.NoError(t, err)
	stored, err = c.Set(ctx, 3, 2024, gen, payroll.PeriodSummaryResponse{PeriodMonth: 3, PeriodYear: 2024, ApprovedCount: 1})
	require.NoError(t, err)
	assert.True(t, stored)

	got, ok, err := c.Get(ctx, 3, 2024)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 1, got.ApprovedCount)
}

func mustGet(t *testing.T, mr *miniredis.Miniredis, key string) string {
	t.Helper()
	v, err := mr.Get(key)
	require.NoError(t, err)
	return v
}

func TestRedisSummaryCache_ServerDown(t *testing.T) {
	c, mr := newTestCache(t)
	mr.Close()

	_, _, err := c.Get(context.Background(), 1, 2024)
	assert.Error(t, err)

	_, err = c.Generation(context.Background(), 1, 2024)
	assert.Error(t, err)

	stored, err := c.Set(context.Background(), 1, 2024, 0, payroll.PeriodSummaryResponse{})
	assert.Error(t, err)
	assert.False(t, stored)
}

package cache

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gatepass/internal/checkin"
	"gatepass/pkg/domain"
)

func newCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(client, time.Minute, logger), mr
}

func sampleResult() checkin.ScanResult {
	return checkin.ScanResult{
		RegistrationID: domain.NewRegistrationID(),
		EventID:        domain.NewEventID(),
		EventDayID:     domain.NewEventDayID(),
		PaymentMethod:  domain.PaymentOnsite,
		PaymentStatus:  domain.PaymentPending,
	}
}

func TestCache_RoundTrip(t *testing.T) {
	c, _ := newCache(t)
	ctx := context.Background()
	res := sampleResult()

	_, ok := c.GetView(ctx, res.RegistrationID, res.EventDayID)
	assert.False(t, ok)

	c.SetView(ctx, res)

	got, ok := c.GetView(ctx, res.RegistrationID, res.EventDayID)
	require.True(t, ok)
	assert.Equal(t, res.RegistrationID, got.RegistrationID)
	assert.Equal(t, res.PaymentStatus, got.PaymentStatus)
}

func TestCache_InvalidateRegistration(t *testing.T) {
	c, _ := newCache(t)
	ctx := context.Background()

	res := sampleResult()
	other := sampleResult()
	c.SetView(ctx, res)
	c.SetView(ctx, other)

	c.InvalidateRegistration(ctx, res.RegistrationID)

	_, ok := c.GetView(ctx, res.RegistrationID, res.EventDayID)
	assert.False(t, ok, "invalidated view must be gone")
	_, ok = c.GetView(ctx, other.RegistrationID, other.EventDayID)
	assert.True(t, ok, "unrelated view survives")
}

func TestCache_InvalidateDay(t *testing.T) {
	c, _ := newCache(t)
	ctx := context.Background()

	res := sampleResult()
	c.SetView(ctx, res)

	c.InvalidateDay(ctx, res.EventDayID)

	_, ok := c.GetView(ctx, res.RegistrationID, res.EventDayID)
	assert.False(t, ok)
}

func TestCache_NilIsOff(t *testing.T) {
	var c *Cache
	ctx := context.Background()
	res := sampleResult()

	// All operations are no-ops on a nil cache.
	c.SetView(ctx, res)
	_, ok := c.GetView(ctx, res.RegistrationID, res.EventDayID)
	assert.False(t, ok)
	c.InvalidateRegistration(ctx, res.RegistrationID)
	c.InvalidateDay(ctx, res.EventDayID)
}

func TestCache_ExpiredEntryMisses(t *testing.T) {
	c, mr := newCache(t)
	ctx := context.Background()
	res := sampleResult()

	c.SetView(ctx, res)
	mr.FastForward(2 * time.Minute)

	_, ok := c.GetView(ctx, res.RegistrationID, res.EventDayID)
	assert.False(t, ok)
}

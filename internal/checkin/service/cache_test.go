package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gatepass/internal/checkin"
	"gatepass/internal/checkin/store"
	"gatepass/internal/registration/cache"
	"gatepass/pkg/domain"
)

func newCachedFixture(t *testing.T) (*fixture, *cache.Cache) {
	t.Helper()
	f := newFixture(t)

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	views := cache.New(client, time.Minute, logger)

	checkins := store.NewInMemoryStore()
	checkins.SeedParticipants(f.principal, f.companion)
	svc, err := New(checkins, f.sealer, f.regs, f.svc.events, views, f.auditor, nil, logger)
	require.NoError(t, err)
	f.svc = svc
	return f, views
}

func TestResolveScan_CachedViewStaysFreshOnPayment(t *testing.T) {
	f, _ := newCachedFixture(t)
	ctx := context.Background()

	first, err := f.svc.ResolveScan(ctx, f.validToken, f.dayOne)
	require.NoError(t, err)
	assert.NotEmpty(t, first.PaymentAdvisory)

	// Payment is verified behind the cache's back. The cached view may be
	// served, but its payment fields come from the live registration.
	reg := f.regs.byID[f.regID]
	reg.PaymentStatus = domain.PaymentVerified
	f.regs.byID[f.regID] = reg

	second, err := f.svc.ResolveScan(ctx, f.validToken, f.dayOne)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentVerified, second.PaymentStatus)
	assert.Empty(t, second.PaymentAdvisory)
}

func TestRecord_InvalidatesCachedViews(t *testing.T) {
	f, _ := newCachedFixture(t)
	ctx := context.Background()

	first, err := f.svc.ResolveScan(ctx, f.validToken, f.dayOne)
	require.NoError(t, err)
	assert.False(t, first.Participants[0].CheckedIn)

	_, err = f.svc.Record(ctx, checkin.RecordRequest{
		EventDayID:     f.dayOne,
		ParticipantIDs: []domain.ParticipantID{f.principal},
	})
	require.NoError(t, err)

	second, err := f.svc.ResolveScan(ctx, f.validToken, f.dayOne)
	require.NoError(t, err)
	assert.True(t, second.Participants[0].CheckedIn, "cached pre-check-in view must not be served")
}

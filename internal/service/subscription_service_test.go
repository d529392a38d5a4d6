package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"hybe/bookinghub/internal/model"
	"hybe/bookinghub/internal/repository"
)

// fakeChain scripts the lookup chain and counts consultations.
type fakeChain struct {
	mu          sync.Mutex
	records     map[string]*model.Subscription
	unavailable bool
	lookups     int
	usages      int
}

func (f *fakeChain) Lookup(_ context.Context, id string) (*model.Subscription, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups++
	if f.unavailable {
		return nil, repository.ErrBackendUnavailable
	}
	return f.records[id], nil
}

func (f *fakeChain) RecordUsage(_ context.Context, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.usages++
	return nil
}

func (f *fakeChain) TypeCounts(_ context.Context) ([]repository.TypeCount, error) {
	if f.unavailable {
		return nil, repository.ErrBackendUnavailable
	}
	return []repository.TypeCount{
		{SubscriptionType: "elite", Count: 6},
		{SubscriptionType: "premium", Count: 5},
		{SubscriptionType: "standard", Count: 3},
	}, nil
}

func (f *fakeChain) lookupCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lookups
}

func (f *fakeChain) usageCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.usages
}

func defaultSubscriptionConfig() SubscriptionConfig {
	return SubscriptionConfig{
		PositiveCacheTTL: time.Minute,
		NegativeCacheTTL: time.Minute,
		MinIDLength:      10,
		MaxIDLength:      14,
	}
}

func newValidatorFixture(t *testing.T, chain *fakeChain, cfg SubscriptionConfig) SubscriptionService {
	t.Helper()
	store := repository.NewMemoryKVStore(0, zap.NewNop())
	t.Cleanup(store.Close)
	if chain.records == nil {
		chain.records = map[string]*model.Subscription{}
	}
	return NewSubscriptionService(store, chain, cfg, zap.NewNop())
}

func provisionElite(chain *fakeChain) {
	expires := time.Now().Add(180 * 24 * time.Hour)
	chain.records = map[string]*model.Subscription{
		"HYBDEF9876543": {
			SubscriptionID: "HYBDEF9876543",
			UserName:       "Park Jimin",
			Type:           model.TierElite,
			IsActive:       true,
			ExpiresAt:      &expires,
		},
	}
}

func waitForUsage(t *testing.T, chain *fakeChain, want int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if chain.usageCount() >= want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	require.GreaterOrEqual(t, chain.usageCount(), want)
}

func TestValidateKnownActiveID(t *testing.T) {
	chain := &fakeChain{}
	provisionElite(chain)
	svc := newValidatorFixture(t, chain, defaultSubscriptionConfig())

	result := svc.Validate(context.Background(), "HYBDEF9876543")
	require.True(t, result.IsValid)
	require.Equal(t, "elite", result.SubscriptionType)
	require.Equal(t, "Park Jimin", result.UserName)
	require.Equal(t, "Valid elite subscription for Park Jimin", result.Message)

	waitForUsage(t, chain, 1)
}

func TestValidateNormalizesInput(t *testing.T) {
	chain := &fakeChain{}
	provisionElite(chain)
	svc := newValidatorFixture(t, chain, defaultSubscriptionConfig())

	result := svc.Validate(context.Background(), "  hybdef9876543 ")
	require.True(t, result.IsValid)
}

func TestValidatePositiveResultIsCached(t *testing.T) {
	chain := &fakeChain{}
	provisionElite(chain)
	svc := newValidatorFixture(t, chain, defaultSubscriptionConfig())
	ctx := context.Background()

	first := svc.Validate(ctx, "HYBDEF9876543")
	second := svc.Validate(ctx, "HYBDEF9876543")
	require.Equal(t, first, second)
	require.Equal(t, 1, chain.lookupCount(), "repeat within the TTL must not re-query the chain")
}

func TestValidateUnknownID(t *testing.T) {
	chain := &fakeChain{}
	svc := newValidatorFixture(t, chain, defaultSubscriptionConfig())

	result := svc.Validate(context.Background(), "BOGUS0000000")
	require.False(t, result.IsValid)
	require.Empty(t, result.SubscriptionType)
	require.Equal(t,
		"Subscription ID not found, inactive, or expired. Please check your ID and try again.",
		result.Message)
}

func TestValidateNegativeResultIsCachedThenExpires(t *testing.T) {
	chain := &fakeChain{}
	cfg := defaultSubscriptionConfig()
	cfg.NegativeCacheTTL = 40 * time.Millisecond
	svc := newValidatorFixture(t, chain, cfg)
	ctx := context.Background()

	first := svc.Validate(ctx, "BOGUS0000000")
	second := svc.Validate(ctx, "BOGUS0000000")
	require.Equal(t, first, second)
	require.Equal(t, 1, chain.lookupCount())

	time.Sleep(60 * time.Millisecond)

	svc.Validate(ctx, "BOGUS0000000")
	require.Equal(t, 2, chain.lookupCount(), "negative entry must be re-queried after its TTL")
}

func TestValidateInactiveRecord(t *testing.T) {
	chain := &fakeChain{records: map[string]*model.Subscription{
		"HYBAAA6666666": {
			SubscriptionID: "HYBAAA6666666",
			UserName:       "Park Chaeyoung",
			Type:           model.TierPremium,
			IsActive:       false,
		},
	}}
	svc := newValidatorFixture(t, chain, defaultSubscriptionConfig())

	result := svc.Validate(context.Background(), "HYBAAA6666666")
	require.False(t, result.IsValid)
	require.Equal(t,
		"Subscription ID not found, inactive, or expired. Please check your ID and try again.",
		result.Message, "inactive must be indistinguishable from not found")
}

func TestValidateExpiredRecord(t *testing.T) {
	expired := time.Now().Add(-time.Hour)
	chain := &fakeChain{records: map[string]*model.Subscription{
		"HYBYZZ4444444": {
			SubscriptionID: "HYBYZZ4444444",
			UserName:       "Kim Jennie",
			Type:           model.TierElite,
			IsActive:       true,
			ExpiresAt:      &expired,
		},
	}}
	svc := newValidatorFixture(t, chain, defaultSubscriptionConfig())

	result := svc.Validate(context.Background(), "HYBYZZ4444444")
	require.False(t, result.IsValid)
}

func TestValidateRejectsMalformedIDWithoutIO(t *testing.T) {
	chain := &fakeChain{}
	svc := newValidatorFixture(t, chain, defaultSubscriptionConfig())
	ctx := context.Background()

	for _, id := range []string{"", "SHORT", "WAYTOOLONGFORANID", "HYB!@#9876543"} {
		result := svc.Validate(ctx, id)
		require.False(t, result.IsValid, "id %q", id)
		require.Equal(t,
			"Invalid subscription ID format. Please check your ID and try again.",
			result.Message)
	}
	require.Equal(t, 0, chain.lookupCount(), "format rejects must not touch the chain")
}

func TestValidateChainUnavailable(t *testing.T) {
	chain := &fakeChain{unavailable: true}
	svc := newValidatorFixture(t, chain, defaultSubscriptionConfig())

	result := svc.Validate(context.Background(), "HYBDEF9876543")
	require.False(t, result.IsValid)
	require.Equal(t,
		"Subscription ID not found, inactive, or expired. Please check your ID and try again.",
		result.Message, "an outage must read like a miss, not an error")
}

func TestTypeCounts(t *testing.T) {
	chain := &fakeChain{}
	svc := newValidatorFixture(t, chain, defaultSubscriptionConfig())

	counts, total, err := svc.TypeCounts(context.Background())
	require.NoError(t, err)
	require.Len(t, counts, 3)
	require.Equal(t, int64(14), total)
}

func TestTypeCountsUnavailable(t *testing.T) {
	chain := &fakeChain{unavailable: true}
	svc := newValidatorFixture(t, chain, defaultSubscriptionConfig())

	_, _, err := svc.TypeCounts(context.Background())
	require.Error(t, err)
}

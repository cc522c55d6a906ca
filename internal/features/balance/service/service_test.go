package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whitelist-tool-backend/internal/common/config"
)

// fakeRedis covers the Get/Set subset the balance cache uses; any other
// Cmdable method panics through the embedded nil interface.
type fakeRedis struct {
	redis.Cmdable
	mu   sync.Mutex
	data map[string]string
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: make(map[string]string)}
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	if raw, ok := f.data[key]; ok {
		return redis.NewStringResult(raw, nil)
	}
	return redis.NewStringResult("", redis.Nil)
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) *redis.StatusCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.data[key] = value.(string)
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) get(key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	raw, ok := f.data[key]
	return raw, ok
}

type fakeLookup struct {
	mu       sync.Mutex
	balances map[string]float64
	err      error
	calls    int
}

func (f *fakeLookup) GetBalance(ctx context.Context, address string) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return 0, f.err
	}
	return f.balances[address], nil
}

func newService(lookup BalanceLookup, minimum float64) BalanceService {
	return NewBalanceService(lookup, nil, config.Campaign{MinimumBalance: minimum}, 0)
}

func TestCheckSufficient(t *testing.T) {
	lookup := &fakeLookup{balances: map[string]float64{"wallet-1": 2.5}}
	svc := newService(lookup, 1.0)

	check := svc.Check(context.Background(), "wallet-1")
	require.NotNil(t, check.Balance)
	assert.Equal(t, 2.5, *check.Balance)
	assert.True(t, check.Sufficient)
}

func TestCheckBoundaryIsInclusive(t *testing.T) {
	lookup := &fakeLookup{balances: map[string]float64{"wallet-1": 1.0}}
	svc := newService(lookup, 1.0)

	check := svc.Check(context.Background(), "wallet-1")
	assert.True(t, check.Sufficient, "balance equal to the minimum must pass")
}

func TestCheckInsufficient(t *testing.T) {
	lookup := &fakeLookup{balances: map[string]float64{"wallet-1": 0.5}}
	svc := newService(lookup, 1.0)

	check := svc.Check(context.Background(), "wallet-1")
	require.NotNil(t, check.Balance)
	assert.False(t, check.Sufficient)
}

func TestCheckMissingAddress(t *testing.T) {
	lookup := &fakeLookup{}
	svc := newService(lookup, 1.0)

	check := svc.Check(context.Background(), "")
	assert.Nil(t, check.Balance)
	assert.False(t, check.Sufficient)
	assert.Zero(t, lookup.calls, "no RPC call without an address")
}

func TestCheckLookupFailureDegradesToUnknown(t *testing.T) {
	lookup := &fakeLookup{err: errors.New("rpc unavailable")}
	svc := newService(lookup, 1.0)

	check := svc.Check(context.Background(), "wallet-1")
	assert.Nil(t, check.Balance, "failed lookup must not report a balance")
	assert.False(t, check.Sufficient)
	assert.False(t, check.Known())
}

func TestCheckZeroMinimumAcceptsZeroBalance(t *testing.T) {
	lookup := &fakeLookup{balances: map[string]float64{"wallet-1": 0}}
	svc := newService(lookup, 0)

	check := svc.Check(context.Background(), "wallet-1")
	assert.True(t, check.Sufficient)
}

func TestCheckCachesBalance(t *testing.T) {
	lookup := &fakeLookup{balances: map[string]float64{"wallet-1": 3.5}}
	rdb := newFakeRedis()
	svc := NewBalanceService(lookup, rdb, config.Campaign{MinimumBalance: 1.0}, time.Minute)

	first := svc.Check(context.Background(), "wallet-1")
	require.NotNil(t, first.Balance)
	assert.Equal(t, 3.5, *first.Balance)

	raw, ok := rdb.get("balance:wallet-1")
	require.True(t, ok)
	assert.Equal(t, "3.5", raw)

	second := svc.Check(context.Background(), "wallet-1")
	require.NotNil(t, second.Balance)
	assert.Equal(t, 3.5, *second.Balance)
	assert.True(t, second.Sufficient)
	assert.Equal(t, 1, lookup.calls, "second check must be served from cache")
}

type funcLookup func(ctx context.Context, address string) (float64, error)

func (f funcLookup) GetBalance(ctx context.Context, address string) (float64, error) {
	return f(ctx, address)
}

func TestCheckStaleResponseDoesNotOverwriteNewer(t *testing.T) {
	rdb := newFakeRedis()

	var (
		mu          sync.Mutex
		calls       int
		firstInFlow = make(chan struct{})
		releaseOld  = make(chan struct{})
	)
	lookup := funcLookup(func(ctx context.Context, address string) (float64, error) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n == 1 {
			close(firstInFlow)
			<-releaseOld
			return 0.5, nil
		}
		return 5.0, nil
	})

	svc := NewBalanceService(lookup, rdb, config.Campaign{MinimumBalance: 1.0}, time.Minute)

	oldDone := make(chan struct{})
	go func() {
		defer close(oldDone)
		svc.Check(context.Background(), "wallet-1")
	}()
	<-firstInFlow

	// A newer request resolves first and publishes its value.
	newer := svc.Check(context.Background(), "wallet-1")
	require.NotNil(t, newer.Balance)
	assert.Equal(t, 5.0, *newer.Balance)

	raw, ok := rdb.get("balance:wallet-1")
	require.True(t, ok)
	require.Equal(t, "5", raw)

	// The older in-flight response resolves last; it must not clobber
	// the value the newer request cached.
	close(releaseOld)
	<-oldDone

	raw, ok = rdb.get("balance:wallet-1")
	require.True(t, ok)
	assert.Equal(t, "5", raw, "stale response must not overwrite a newer cached balance")

	cached := svc.Check(context.Background(), "wallet-1")
	require.NotNil(t, cached.Balance)
	assert.Equal(t, 5.0, *cached.Balance)
	mu.Lock()
	assert.Equal(t, 2, calls, "final check must be served from cache")
	mu.Unlock()
}

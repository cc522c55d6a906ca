package service

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"whitelist-tool-backend/internal/common/config"
	"whitelist-tool-backend/internal/common/logger"
	"whitelist-tool-backend/internal/features/balance/models"
)

// BalanceLookup is the RPC collaborator; implemented by platform/solana.
type BalanceLookup interface {
	GetBalance(ctx context.Context, address string) (float64, error)
}

type BalanceService interface {
	// Check fetches the wallet balance and compares it against the
	// campaign minimum. A failed lookup degrades to an unknown balance
	// (treated as insufficient) instead of returning an error; clients
	// retry by polling again.
	Check(ctx context.Context, address string) *models.BalanceCheck
}

type balanceService struct {
	lookup   BalanceLookup
	rdb      redis.Cmdable
	campaign config.Campaign
	cacheTTL time.Duration

	// Per-address request sequence. Responses resolve in arbitrary
	// order; a slow response for an older request must not overwrite
	// state cached by a newer one.
	mu  sync.Mutex
	seq map[string]uint64
}

func NewBalanceService(lookup BalanceLookup, rdb redis.Cmdable, campaign config.Campaign, cacheTTL time.Duration) BalanceService {
	return &balanceService{
		lookup:   lookup,
		rdb:      rdb,
		campaign: campaign,
		cacheTTL: cacheTTL,
		seq:      make(map[string]uint64),
	}
}

func (s *balanceService) Check(ctx context.Context, address string) *models.BalanceCheck {
	check := &models.BalanceCheck{
		Address:   address,
		CheckedAt: time.Now().UTC(),
	}

	if address == "" {
		return check
	}

	if balance, ok := s.cachedBalance(ctx, address); ok {
		check.Balance = &balance
		check.Sufficient = balance >= s.campaign.MinimumBalance
		return check
	}

	reqSeq := s.nextSeq(address)

	balance, err := s.lookup.GetBalance(ctx, address)
	if err != nil {
		logger.Warn().
			Str("address", address).
			Err(err).
			Msg("Balance lookup failed, treating as unknown")
		return check
	}
	if balance < 0 {
		logger.Warn().
			Str("address", address).
			Float64("balance", balance).
			Msg("Negative balance from RPC, treating as unknown")
		return check
	}

	// Only the most recently issued request for this address may
	// publish its result.
	if s.isLatest(address, reqSeq) {
		s.cacheBalance(ctx, address, balance)
	}

	check.Balance = &balance
	check.Sufficient = balance >= s.campaign.MinimumBalance
	return check
}

func (s *balanceService) nextSeq(address string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq[address]++
	return s.seq[address]
}

func (s *balanceService) isLatest(address string, reqSeq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq[address] == reqSeq
}

func balanceCacheKey(address string) string {
	return "balance:" + address
}

func (s *balanceService) cachedBalance(ctx context.Context, address string) (float64, bool) {
	if s.rdb == nil || s.cacheTTL <= 0 {
		return 0, false
	}
	raw, err := s.rdb.Get(ctx, balanceCacheKey(address)).Result()
	if err != nil {
		return 0, false
	}
	balance, err := strconv.ParseFloat(raw, 64)
	if err != nil || balance < 0 {
		return 0, false
	}
	return balance, true
}

func (s *balanceService) cacheBalance(ctx context.Context, address string, balance float64) {
	if s.rdb == nil || s.cacheTTL <= 0 {
		return
	}
	if err := s.rdb.Set(ctx, balanceCacheKey(address), strconv.FormatFloat(balance, 'f', -1, 64), s.cacheTTL).Err(); err != nil {
		logger.Warn().Str("address", address).Err(err).Msg("Failed to cache balance")
	}
}

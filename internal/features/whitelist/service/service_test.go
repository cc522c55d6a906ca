package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whitelist-tool-backend/internal/common/config"
	apperrors "whitelist-tool-backend/internal/common/errors"
	balancemodels "whitelist-tool-backend/internal/features/balance/models"
	campaignservice "whitelist-tool-backend/internal/features/campaign/service"
	socialmodels "whitelist-tool-backend/internal/features/social/models"
	"whitelist-tool-backend/internal/features/whitelist/models"
	"whitelist-tool-backend/internal/features/whitelist/repository"
)

var (
	campaignStart = time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)
	campaignEnd   = campaignStart.Add(7 * 24 * time.Hour)
	openNow       = campaignStart.Add(24 * time.Hour)
)

type memoryRepo struct {
	entries  map[string]*models.Entry
	countErr error
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{entries: make(map[string]*models.Entry)}
}

func (m *memoryRepo) Create(ctx context.Context, entry *models.Entry) error {
	if _, ok := m.entries[entry.Address]; ok {
		return repository.ErrDuplicateEntry
	}
	m.entries[entry.Address] = entry
	return nil
}

func (m *memoryRepo) GetByAddress(ctx context.Context, address string) (*models.Entry, error) {
	entry, ok := m.entries[address]
	if !ok {
		return nil, repository.ErrEntryNotFound
	}
	return entry, nil
}

func (m *memoryRepo) Count(ctx context.Context) (int64, error) {
	if m.countErr != nil {
		return 0, m.countErr
	}
	return int64(len(m.entries)), nil
}

func (m *memoryRepo) GetAll(ctx context.Context) ([]*models.Entry, error) {
	var all []*models.Entry
	for _, e := range m.entries {
		all = append(all, e)
	}
	return all, nil
}

type fakeBalance struct {
	balances map[string]float64
	minimum  float64
	fail     bool
}

func (f *fakeBalance) Check(ctx context.Context, address string) *balancemodels.BalanceCheck {
	check := &balancemodels.BalanceCheck{Address: address, CheckedAt: time.Now()}
	if f.fail || address == "" {
		return check
	}
	balance, ok := f.balances[address]
	if !ok {
		return check
	}
	check.Balance = &balance
	check.Sufficient = balance >= f.minimum
	return check
}

type fakeSocial struct {
	followed  map[string]bool
	usernames map[string]string
}

func (f *fakeSocial) GetFollowStatus(ctx context.Context, address string) (*socialmodels.FollowStatus, error) {
	if f.followed[address] {
		return &socialmodels.FollowStatus{State: socialmodels.FollowConfirmed, Confirmed: true}, nil
	}
	return &socialmodels.FollowStatus{State: socialmodels.FollowNotStarted}, nil
}

func (f *fakeSocial) VerifySession(token string) (string, error) {
	if username, ok := f.usernames[token]; ok {
		return username, nil
	}
	return "", errors.New("no session")
}

type fixture struct {
	svc    WhitelistService
	repo   *memoryRepo
	social *fakeSocial
}

func newFixture(t *testing.T, campaign config.Campaign, balances map[string]float64) *fixture {
	t.Helper()
	repo := newMemoryRepo()
	social := &fakeSocial{
		followed:  make(map[string]bool),
		usernames: make(map[string]string),
	}
	svc := NewWhitelistService(
		repo,
		campaignservice.NewCampaignService(campaign),
		&fakeBalance{balances: balances, minimum: campaign.MinimumBalance},
		social,
	).(*whitelistService)
	svc.now = func() time.Time { return openNow }
	return &fixture{svc: svc, repo: repo, social: social}
}

func baseCampaign() config.Campaign {
	return config.Campaign{
		RegistrationStart: campaignStart,
		RegistrationEnd:   campaignEnd,
		MinimumBalance:    1.0,
		RegistrationLimit: 2,
	}
}

func TestEvaluateReady(t *testing.T) {
	f := newFixture(t, baseCampaign(), map[string]float64{"wallet-1": 2.0})

	decision, err := f.svc.Evaluate(context.Background(), "wallet-1", "")
	require.NoError(t, err)
	assert.True(t, decision.Eligible)
	assert.Empty(t, decision.Reason)
}

func TestEvaluateNoWallet(t *testing.T) {
	f := newFixture(t, baseCampaign(), nil)

	decision, err := f.svc.Evaluate(context.Background(), "", "")
	require.NoError(t, err)
	assert.False(t, decision.Eligible)
	assert.Equal(t, apperrors.ErrCodeWalletMissing, decision.Reason)
}

func TestEvaluateWindowNotStarted(t *testing.T) {
	f := newFixture(t, baseCampaign(), map[string]float64{"wallet-1": 2.0})
	f.svc.(*whitelistService).now = func() time.Time { return campaignStart.Add(-time.Hour) }

	decision, err := f.svc.Evaluate(context.Background(), "wallet-1", "")
	require.NoError(t, err)
	assert.Equal(t, apperrors.ErrCodeWindowNotStarted, decision.Reason)
}

func TestEvaluateWindowClosed(t *testing.T) {
	f := newFixture(t, baseCampaign(), map[string]float64{"wallet-1": 2.0})
	f.svc.(*whitelistService).now = func() time.Time { return campaignEnd.Add(time.Hour) }

	decision, err := f.svc.Evaluate(context.Background(), "wallet-1", "")
	require.NoError(t, err)
	assert.Equal(t, apperrors.ErrCodeWindowClosed, decision.Reason)
}

func TestEvaluateCapacity(t *testing.T) {
	f := newFixture(t, baseCampaign(), map[string]float64{
		"wallet-1": 2.0, "wallet-2": 2.0, "wallet-3": 2.0,
	})
	ctx := context.Background()

	// count == limit-1: capacity gate passes.
	_, err := f.svc.Submit(ctx, "wallet-1", "")
	require.NoError(t, err)
	decision, err := f.svc.Evaluate(ctx, "wallet-2", "")
	require.NoError(t, err)
	assert.True(t, decision.Eligible)

	// count == limit: blocked.
	_, err = f.svc.Submit(ctx, "wallet-2", "")
	require.NoError(t, err)
	decision, err = f.svc.Evaluate(ctx, "wallet-3", "")
	require.NoError(t, err)
	assert.Equal(t, apperrors.ErrCodeCapacityReached, decision.Reason)
}

func TestEvaluateUnlimitedCampaignIgnoresCount(t *testing.T) {
	campaign := baseCampaign()
	campaign.RegistrationLimit = 0
	f := newFixture(t, campaign, map[string]float64{"wallet-1": 2.0, "wallet-2": 2.0})
	ctx := context.Background()

	_, err := f.svc.Submit(ctx, "wallet-1", "")
	require.NoError(t, err)

	decision, err := f.svc.Evaluate(ctx, "wallet-2", "")
	require.NoError(t, err)
	assert.True(t, decision.Eligible)
}

func TestEvaluateBalanceInsufficientBeatsSocialGates(t *testing.T) {
	// The spec scenario: follow confirmed and window open, but balance
	// 0.5 against a 1.0 minimum blocks with the balance reason.
	campaign := baseCampaign()
	campaign.RequireTwitterFollow = true
	f := newFixture(t, campaign, map[string]float64{"wallet-1": 0.5})
	f.social.followed["wallet-1"] = true

	decision, err := f.svc.Evaluate(context.Background(), "wallet-1", "")
	require.NoError(t, err)
	assert.Equal(t, apperrors.ErrCodeBalanceInsufficient, decision.Reason)
}

func TestEvaluateBalanceUnknown(t *testing.T) {
	f := newFixture(t, baseCampaign(), nil)
	f.svc.(*whitelistService).balance = &fakeBalance{fail: true}

	decision, err := f.svc.Evaluate(context.Background(), "wallet-1", "")
	require.NoError(t, err)
	assert.Equal(t, apperrors.ErrCodeBalanceUnknown, decision.Reason)
}

func TestEvaluateBalanceBoundaryInclusive(t *testing.T) {
	f := newFixture(t, baseCampaign(), map[string]float64{"wallet-1": 1.0})

	decision, err := f.svc.Evaluate(context.Background(), "wallet-1", "")
	require.NoError(t, err)
	assert.True(t, decision.Eligible)
}

func TestEvaluateDiscordGate(t *testing.T) {
	campaign := baseCampaign()
	campaign.RequireDiscordMember = true
	f := newFixture(t, campaign, map[string]float64{"wallet-1": 2.0})

	decision, err := f.svc.Evaluate(context.Background(), "wallet-1", "")
	require.NoError(t, err)
	assert.Equal(t, apperrors.ErrCodeDiscordNotConnected, decision.Reason)

	f.social.usernames["session-1"] = "tester"
	decision, err = f.svc.Evaluate(context.Background(), "wallet-1", "session-1")
	require.NoError(t, err)
	assert.True(t, decision.Eligible)
}

func TestEvaluateFollowGate(t *testing.T) {
	campaign := baseCampaign()
	campaign.RequireTwitterFollow = true
	f := newFixture(t, campaign, map[string]float64{"wallet-1": 2.0})

	decision, err := f.svc.Evaluate(context.Background(), "wallet-1", "")
	require.NoError(t, err)
	assert.Equal(t, apperrors.ErrCodeFollowNotConfirmed, decision.Reason)

	f.social.followed["wallet-1"] = true
	decision, err = f.svc.Evaluate(context.Background(), "wallet-1", "")
	require.NoError(t, err)
	assert.True(t, decision.Eligible)
}

func TestSubmitRecordsSessionIdentityAndBalance(t *testing.T) {
	campaign := baseCampaign()
	campaign.RequireDiscordMember = true
	f := newFixture(t, campaign, map[string]float64{"wallet-1": 2.5})
	f.social.usernames["session-1"] = "tester"

	entry, err := f.svc.Submit(context.Background(), "wallet-1", "session-1")
	require.NoError(t, err)
	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, "wallet-1", entry.Address)
	require.NotNil(t, entry.DiscordUsername)
	assert.Equal(t, "tester", *entry.DiscordUsername)
	require.NotNil(t, entry.Balance)
	assert.Equal(t, 2.5, *entry.Balance)
}

func TestSubmitDuplicate(t *testing.T) {
	f := newFixture(t, baseCampaign(), map[string]float64{"wallet-1": 2.0})
	ctx := context.Background()

	_, err := f.svc.Submit(ctx, "wallet-1", "")
	require.NoError(t, err)

	_, err = f.svc.Submit(ctx, "wallet-1", "")
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeDuplicateEntry, appErr.Code)
}

func TestSubmitBlockedReportsReason(t *testing.T) {
	f := newFixture(t, baseCampaign(), map[string]float64{"wallet-1": 0.1})

	_, err := f.svc.Submit(context.Background(), "wallet-1", "")
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeBalanceInsufficient, appErr.Code)
	assert.Empty(t, f.repo.entries, "blocked submission must not persist")
}

func TestStatus(t *testing.T) {
	f := newFixture(t, baseCampaign(), map[string]float64{"wallet-1": 2.0})
	ctx := context.Background()

	status, err := f.svc.Status(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 0, status.EntryCount)
	assert.False(t, status.LimitReached)

	_, err = f.svc.Submit(ctx, "wallet-1", "")
	require.NoError(t, err)

	status, err = f.svc.Status(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, status.EntryCount)
}

func TestSampleWinners(t *testing.T) {
	entries := make([]*models.Entry, 10)
	for i := range entries {
		entries[i] = &models.Entry{Address: string(rune('a' + i))}
	}

	winners, err := SampleWinners(entries, 4)
	require.NoError(t, err)
	require.Len(t, winners, 4)

	seen := make(map[string]bool)
	pool := make(map[string]bool)
	for _, e := range entries {
		pool[e.Address] = true
	}
	for _, w := range winners {
		assert.True(t, pool[w.Address], "winner must come from the pool")
		assert.False(t, seen[w.Address], "winners must be unique")
		seen[w.Address] = true
	}
}

func TestSampleWinnersSmallPool(t *testing.T) {
	entries := []*models.Entry{{Address: "a"}, {Address: "b"}}

	all, err := SampleWinners(entries, 5)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	none, err := SampleWinners(entries, 0)
	require.NoError(t, err)
	assert.Empty(t, none)

	empty, err := SampleWinners(nil, 3)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

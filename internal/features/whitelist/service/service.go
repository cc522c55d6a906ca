package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	apperrors "whitelist-tool-backend/internal/common/errors"
	"whitelist-tool-backend/internal/common/logger"
	balanceservice "whitelist-tool-backend/internal/features/balance/service"
	campaignmodels "whitelist-tool-backend/internal/features/campaign/models"
	campaignservice "whitelist-tool-backend/internal/features/campaign/service"
	socialmodels "whitelist-tool-backend/internal/features/social/models"
	"whitelist-tool-backend/internal/features/whitelist/models"
	"whitelist-tool-backend/internal/features/whitelist/repository"
	"whitelist-tool-backend/internal/utils/random"
)

// SocialGates is the slice of the social service the eligibility gate
// consumes.
type SocialGates interface {
	GetFollowStatus(ctx context.Context, address string) (*socialmodels.FollowStatus, error)
	VerifySession(token string) (string, error)
}

type WhitelistService interface {
	// Evaluate recomputes the full eligibility decision from live gate
	// state. Decisions are never cached: a wallet that was eligible a
	// moment ago and no longer is must see the new blocking reason.
	Evaluate(ctx context.Context, address, sessionToken string) (*models.Eligibility, error)

	// Submit runs Evaluate and, only when every gate passes, persists
	// the entry. A duplicate address surfaces as a typed conflict; any
	// other persistence failure leaves submission retryable.
	Submit(ctx context.Context, address, sessionToken string) (*models.Entry, error)

	Status(ctx context.Context) (*models.StatusResponse, error)
	Count(ctx context.Context) (int64, error)
}

type whitelistService struct {
	repo     repository.WhitelistRepository
	campaign campaignservice.CampaignService
	balance  balanceservice.BalanceService
	social   SocialGates

	now func() time.Time
}

func NewWhitelistService(
	repo repository.WhitelistRepository,
	campaign campaignservice.CampaignService,
	balance balanceservice.BalanceService,
	social SocialGates,
) WhitelistService {
	return &whitelistService{
		repo:     repo,
		campaign: campaign,
		balance:  balance,
		social:   social,
		now:      time.Now,
	}
}

// Evaluate checks the gates in fixed priority order: wallet, window,
// capacity, balance, Discord, follow. The first failed gate becomes the
// decision's reason so error messaging is reproducible.
func (s *whitelistService) Evaluate(ctx context.Context, address, sessionToken string) (*models.Eligibility, error) {
	campaign := s.campaign.Campaign()
	now := s.now()

	decision := &models.Eligibility{
		Checks: models.GateChecks{
			DiscordRequired: campaign.RequireDiscordMember,
			FollowRequired:  campaign.RequireTwitterFollow,
		},
	}

	// Gate 1: wallet.
	decision.Checks.WalletConnected = address != ""

	// Gate 2: registration window.
	phase := s.campaign.Phase(now)
	decision.Checks.Phase = phase
	decision.Checks.WindowOpen = s.campaign.IsOpen(now)

	// Gate 3: capacity.
	count, err := s.repo.Count(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "Failed to check registration count")
	}
	decision.Checks.EntryCount = count
	decision.Checks.LimitReached = !campaign.Unlimited() && count >= int64(campaign.RegistrationLimit)

	// Gate 4: balance. Skipped without an address; the wallet gate
	// already failed in that case.
	if address != "" {
		decision.Checks.Balance = s.balance.Check(ctx, address)
	}

	// Gates 5 and 6: social.
	if campaign.RequireDiscordMember {
		if _, err := s.social.VerifySession(sessionToken); err == nil {
			decision.Checks.DiscordConnected = true
		}
	}
	if campaign.RequireTwitterFollow && address != "" {
		follow, err := s.social.GetFollowStatus(ctx, address)
		if err != nil {
			return nil, err
		}
		decision.Checks.FollowConfirmed = follow.Confirmed
	}

	s.decide(decision, campaign.MinimumBalance)
	return decision, nil
}

// decide applies the priority order to the collected checks.
func (s *whitelistService) decide(d *models.Eligibility, minimumBalance float64) {
	block := func(code apperrors.ErrorCode, message string) {
		d.Eligible = false
		d.Reason = code
		d.Message = message
	}

	switch {
	case !d.Checks.WalletConnected:
		block(apperrors.ErrCodeWalletMissing, "Please connect your wallet")
	case d.Checks.Phase == campaignmodels.PhaseNotStarted:
		block(apperrors.ErrCodeWindowNotStarted, "Registration has not started yet")
	case !d.Checks.WindowOpen:
		block(apperrors.ErrCodeWindowClosed, "Registration is closed")
	case d.Checks.LimitReached:
		block(apperrors.ErrCodeCapacityReached, "Maximum registration limit reached")
	case d.Checks.Balance == nil || !d.Checks.Balance.Known():
		block(apperrors.ErrCodeBalanceUnknown, "Wallet balance could not be verified")
	case !d.Checks.Balance.Sufficient:
		block(apperrors.ErrCodeBalanceInsufficient,
			fmt.Sprintf("Minimum wallet balance of %g SOL is not met", minimumBalance))
	case d.Checks.DiscordRequired && !d.Checks.DiscordConnected:
		block(apperrors.ErrCodeDiscordNotConnected, "Please connect your Discord account")
	case d.Checks.FollowRequired && !d.Checks.FollowConfirmed:
		block(apperrors.ErrCodeFollowNotConfirmed, "You must follow us on Twitter to submit")
	default:
		d.Eligible = true
	}
}

func (s *whitelistService) Submit(ctx context.Context, address, sessionToken string) (*models.Entry, error) {
	decision, err := s.Evaluate(ctx, address, sessionToken)
	if err != nil {
		return nil, err
	}
	if !decision.Eligible {
		return nil, apperrors.New(decision.Reason, decision.Message)
	}

	entry := &models.Entry{
		ID:          uuid.New().String(),
		Address:     address,
		SubmittedAt: s.now().UTC(),
	}
	if decision.Checks.Balance != nil && decision.Checks.Balance.Known() {
		entry.Balance = decision.Checks.Balance.Balance
	}
	if username, err := s.social.VerifySession(sessionToken); err == nil && username != "" {
		entry.DiscordUsername = &username
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		if err == repository.ErrDuplicateEntry {
			return nil, apperrors.New(apperrors.ErrCodeDuplicateEntry, "You have already submitted an entry")
		}
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "Failed to submit entry")
	}

	logger.Info().
		Str("address", address).
		Str("entry_id", entry.ID).
		Msg("Whitelist entry created")

	return entry, nil
}

func (s *whitelistService) Status(ctx context.Context) (*models.StatusResponse, error) {
	campaign := s.campaign.Campaign()

	count, err := s.repo.Count(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeDatabaseError, "Failed to check registration count")
	}

	return &models.StatusResponse{
		EntryCount:   count,
		Limit:        campaign.RegistrationLimit,
		Unlimited:    campaign.Unlimited(),
		LimitReached: !campaign.Unlimited() && count >= int64(campaign.RegistrationLimit),
	}, nil
}

func (s *whitelistService) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

// SampleWinners picks winnersCount entries uniformly at random without
// replacement. When winnersCount meets or exceeds the pool, the whole
// pool is returned in shuffled order.
func SampleWinners(entries []*models.Entry, winnersCount int) ([]*models.Entry, error) {
	return random.Sample(entries, winnersCount)
}

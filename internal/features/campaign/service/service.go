package service

import (
	"time"

	"whitelist-tool-backend/internal/common/config"
	"whitelist-tool-backend/internal/features/campaign/models"
)

// Poll cadence advertised to clients.
const (
	CountdownRefreshSec = 1
	PhaseRefreshSec     = 5
)

// CampaignService answers registration-window questions for a single
// immutable campaign. Every method takes "now" explicitly so the window
// logic is a pure function of its inputs.
type CampaignService interface {
	Campaign() config.Campaign
	Phase(now time.Time) models.Phase
	IsOpen(now time.Time) bool
	TimeRemaining(now time.Time) time.Duration
	Countdown(now time.Time) models.Countdown
	ToResponse() *models.CampaignResponse
}

type campaignService struct {
	campaign config.Campaign
}

func NewCampaignService(campaign config.Campaign) CampaignService {
	return &campaignService{campaign: campaign}
}

func (s *campaignService) Campaign() config.Campaign {
	return s.campaign
}

// Phase reports where "now" falls relative to the registration window.
// Bounds are inclusive: start <= now <= end is open.
func (s *campaignService) Phase(now time.Time) models.Phase {
	if now.Before(s.campaign.RegistrationStart) {
		return models.PhaseNotStarted
	}
	if now.After(s.campaign.RegistrationEnd) {
		return models.PhaseClosed
	}
	return models.PhaseOpen
}

func (s *campaignService) IsOpen(now time.Time) bool {
	return s.Phase(now) == models.PhaseOpen
}

// TimeRemaining is the time until the window ends, clamped at zero.
// Before the window opens it still counts down to the end, matching the
// source page's single countdown.
func (s *campaignService) TimeRemaining(now time.Time) time.Duration {
	remaining := s.campaign.RegistrationEnd.Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (s *campaignService) Countdown(now time.Time) models.Countdown {
	return models.NewCountdown(s.TimeRemaining(now))
}

func (s *campaignService) ToResponse() *models.CampaignResponse {
	c := s.campaign
	return &models.CampaignResponse{
		ProjectName:          c.ProjectName,
		Description:          c.Description,
		WebsiteURL:           c.WebsiteURL,
		TwitterURL:           c.TwitterURL,
		DiscordURL:           c.DiscordURL,
		RegistrationStart:    c.RegistrationStart,
		RegistrationEnd:      c.RegistrationEnd,
		MinimumBalance:       c.MinimumBalance,
		RegistrationLimit:    c.RegistrationLimit,
		Unlimited:            c.Unlimited(),
		MintPrice:            c.MintPrice,
		TotalSupply:          c.TotalSupply,
		NumberOfWinners:      c.NumberOfWinners,
		RequireTwitterFollow: c.RequireTwitterFollow,
		RequireDiscordMember: c.RequireDiscordMember,
	}
}

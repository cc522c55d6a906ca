package models

import "time"

// Phase is the three-valued state of the registration window. The window
// being not yet open is distinct from it being already closed so the API
// can message each case separately.
type Phase string

const (
	PhaseNotStarted Phase = "not_started"
	PhaseOpen       Phase = "open"
	PhaseClosed     Phase = "closed"
)

// Countdown is the remaining registration time decomposed into display
// units. All units are zero once the window has ended.
type Countdown struct {
	Days    int `json:"days"`
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
	Seconds int `json:"seconds"`
}

// NewCountdown decomposes a remaining duration by floor division.
// Negative durations clamp to zero.
func NewCountdown(remaining time.Duration) Countdown {
	total := int(remaining / time.Second)
	if total < 0 {
		total = 0
	}
	return Countdown{
		Days:    total / 86400,
		Hours:   (total % 86400) / 3600,
		Minutes: (total % 3600) / 60,
		Seconds: total % 60,
	}
}

// TotalSeconds recomposes the countdown; round-trips with NewCountdown.
func (c Countdown) TotalSeconds() int {
	return c.Days*86400 + c.Hours*3600 + c.Minutes*60 + c.Seconds
}

// CampaignResponse is the public campaign description rendered by the
// signup page.
type CampaignResponse struct {
	ProjectName string `json:"project_name"`
	Description string `json:"description,omitempty"`
	WebsiteURL  string `json:"website_url,omitempty"`
	TwitterURL  string `json:"twitter_url,omitempty"`
	DiscordURL  string `json:"discord_url,omitempty"`

	RegistrationStart time.Time `json:"registration_start"`
	RegistrationEnd   time.Time `json:"registration_end"`

	MinimumBalance    float64 `json:"minimum_wallet_balance"`
	RegistrationLimit int     `json:"registration_limit"`
	Unlimited         bool    `json:"unlimited"`

	MintPrice       float64 `json:"mint_price"`
	TotalSupply     int     `json:"total_supply"`
	NumberOfWinners int     `json:"number_of_winners"`

	RequireTwitterFollow bool `json:"require_twitter_follow"`
	RequireDiscordMember bool `json:"require_discord_member"`
}

// StatusResponse is the polled registration status. Clients are expected
// to refresh the countdown every CountdownRefreshSec and the phase every
// PhaseRefreshSec; the cadence is part of the response so it is not a
// hidden client-side constant.
type StatusResponse struct {
	Phase     Phase     `json:"phase"`
	Open      bool      `json:"open"`
	Countdown Countdown `json:"countdown"`

	EntryCount   int64 `json:"entry_count"`
	Limit        int   `json:"registration_limit"`
	Unlimited    bool  `json:"unlimited"`
	LimitReached bool  `json:"limit_reached"`

	CountdownRefreshSec int `json:"countdown_refresh_sec"`
	PhaseRefreshSec     int `json:"phase_refresh_sec"`
}

package models

import (
	"time"

	"whitelist-tool-backend/internal/common/errors"
	balancemodels "whitelist-tool-backend/internal/features/balance/models"
	campaignmodels "whitelist-tool-backend/internal/features/campaign/models"
)

// Entry is one whitelist registration. Entries are created once and never
// mutated; uniqueness on Address is enforced by the database.
type Entry struct {
	ID              string    `json:"id"`
	Address         string    `json:"address"`
	DiscordUsername *string   `json:"discord_username,omitempty"`
	Balance         *float64  `json:"balance,omitempty"`
	SubmittedAt     time.Time `json:"submitted_at"`
}

// SubmitRequest is the submission payload. The Discord identity comes
// from the session cookie, not the body.
type SubmitRequest struct {
	Address string `json:"address" binding:"required"`
}

// GateChecks is the per-gate breakdown behind an eligibility decision.
type GateChecks struct {
	WalletConnected bool `json:"wallet_connected"`

	Phase      campaignmodels.Phase `json:"registration_phase"`
	WindowOpen bool                 `json:"window_open"`

	EntryCount   int64 `json:"entry_count"`
	LimitReached bool  `json:"limit_reached"`

	Balance *balancemodels.BalanceCheck `json:"balance,omitempty"`

	DiscordRequired  bool `json:"discord_required"`
	DiscordConnected bool `json:"discord_connected"`

	FollowRequired  bool `json:"follow_required"`
	FollowConfirmed bool `json:"follow_confirmed"`
}

// Eligibility is the gate decision for one wallet. Reason carries the
// first failed gate in the fixed priority order; it is empty when the
// wallet may submit.
type Eligibility struct {
	Eligible bool             `json:"eligible"`
	Reason   errors.ErrorCode `json:"reason,omitempty"`
	Message  string           `json:"message,omitempty"`
	Checks   GateChecks       `json:"checks"`
}

// StatusResponse is the public whitelist capacity view.
type StatusResponse struct {
	EntryCount   int64 `json:"entry_count"`
	Limit        int   `json:"registration_limit"`
	Unlimited    bool  `json:"unlimited"`
	LimitReached bool  `json:"limit_reached"`
}

package models

import "time"

// FollowState is the one-way follow gate state. There is no transition
// out of Confirmed; the gate never re-verifies.
type FollowState string

const (
	FollowNotStarted FollowState = "not_started"
	FollowPending    FollowState = "pending"
	FollowConfirmed  FollowState = "confirmed"
)

// FollowRecord is the persisted follow-gate state for one wallet.
type FollowRecord struct {
	State FollowState `json:"state"`
	// ConfirmAt is the instant the pending follow is considered
	// confirmed. The follow check is a fixed confirmation delay, not a
	// real Twitter API verification.
	ConfirmAt time.Time `json:"confirm_at,omitempty"`
}

// FollowStatus is the API view of the follow gate.
type FollowStatus struct {
	State     FollowState `json:"state"`
	Confirmed bool        `json:"confirmed"`
	// SecondsLeft until a pending follow confirms; zero otherwise.
	SecondsLeft int `json:"seconds_left,omitempty"`
}

// SocialStatus combines both social gates for one wallet.
type SocialStatus struct {
	Follow           FollowStatus `json:"follow"`
	DiscordConnected bool         `json:"discord_connected"`
	DiscordUsername  string       `json:"discord_username,omitempty"`
}

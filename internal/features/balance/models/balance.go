package models

import "time"

// BalanceCheck is the outcome of one balance lookup. Balance is nil when
// the lookup failed or the address was unusable; an unknown balance is
// always treated as insufficient.
type BalanceCheck struct {
	Address    string    `json:"address"`
	Balance    *float64  `json:"balance"`
	Sufficient bool      `json:"sufficient"`
	CheckedAt  time.Time `json:"checked_at"`
}

// Known reports whether the lookup produced a usable balance.
func (b *BalanceCheck) Known() bool {
	return b.Balance != nil
}

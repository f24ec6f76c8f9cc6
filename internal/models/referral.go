package models

import (
	"time"
)

// ReferralTransaction is an audit row written when a referrer is credited
// for a newly linked referee. The authoritative balance lives on the User
// record; these rows exist for partner-program stats and support lookups.
type ReferralTransaction struct {
	ID            uint    `gorm:"primaryKey"`
	ReferrerID    int64   `gorm:"not null;index"`
	InvitedUserID int64   `gorm:"not null;index"`
	Amount        float64 `gorm:"not null"`
	CreatedAt     time.Time
}

package models

import (
	"time"
)

// DefaultItemID is the bucket every player owns from the first session.
const DefaultItemID = "basic"

// Settings holds the client-toggleable preferences.
type Settings struct {
	SoundOn bool `json:"soundOn"`
	MusicOn bool `json:"musicOn"`
}

// Progress holds gameplay milestones reported by the client.
type Progress struct {
	TutorialDone bool `json:"tutorialDone"`
	HighScore    int  `json:"highScore"`
}

// User is one player record, keyed by Telegram user id.
//
// ReferredBy, Referrals and PendingRewards are server-authoritative: they are
// only ever written by the referral ledger and must never be overwritten from
// client-submitted state.
type User struct {
	ID         uint  `gorm:"primaryKey" json:"-"`
	TelegramID int64 `gorm:"uniqueIndex;not null" json:"telegramId"`

	FirstName string `gorm:"size:255" json:"firstName"`
	Username  string `gorm:"size:255" json:"username"`

	Stars    float64 `gorm:"default:0" json:"stars"`
	Crystals float64 `gorm:"default:0" json:"crystals"`

	Inventory    []string `gorm:"serializer:json" json:"inventory"`
	EquippedItem string   `gorm:"size:64" json:"equippedItem"`

	Settings Settings `gorm:"serializer:json" json:"settings"`
	Progress Progress `gorm:"serializer:json" json:"progress"`

	LastPlayedAt    time.Time `json:"lastPlayedAt"`
	EnergyUpdatedAt time.Time `json:"energyUpdatedAt"`

	ReferredBy     *int64  `gorm:"index" json:"referredBy"`
	Referrals      []int64 `gorm:"serializer:json" json:"referrals"`
	PendingRewards float64 `gorm:"default:0" json:"pendingRewards"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewUser returns a record with the starting loadout for telegramID.
func NewUser(telegramID int64, firstName, username string) *User {
	now := time.Now()
	return &User{
		TelegramID:      telegramID,
		FirstName:       firstName,
		Username:        username,
		Inventory:       []string{DefaultItemID},
		EquippedItem:    DefaultItemID,
		Settings:        Settings{SoundOn: true, MusicOn: true},
		LastPlayedAt:    now,
		EnergyUpdatedAt: now,
	}
}

// Owns reports whether itemID is in the user's inventory.
func (u *User) Owns(itemID string) bool {
	for _, id := range u.Inventory {
		if id == itemID {
			return true
		}
	}
	return false
}

package models

import (
	"time"
)

// ClientState is the save-state a mini-app client submits on sync. It carries
// only the client-writable subset of User; anything else present in the
// request body is dropped before it reaches the store. All fields are
// pointers so a partial sync leaves omitted fields untouched.
type ClientState struct {
	Stars    *float64 `json:"stars"`
	Crystals *float64 `json:"crystals"`

	Inventory    []string `json:"inventory"`
	EquippedItem *string  `json:"equippedItem"`

	Settings *Settings `json:"settings"`
	Progress *Progress `json:"progress"`

	LastPlayedAt    *time.Time `json:"lastPlayedAt"`
	EnergyUpdatedAt *time.Time `json:"energyUpdatedAt"`
}

package store

import (
	"github.com/MehedizYT/starfall-galaxy-tma/internal/models"
)

// applyClientState is the single allow-list of client-writable fields.
// Identity, referral linkage, the referral list and the pending-rewards
// accumulator are deliberately absent: whatever a client submits for them is
// dropped. Negative balances are ignored rather than clamped so a buggy
// client cannot zero out a player.
func applyClientState(u *models.User, s *models.ClientState) {
	if s.Stars != nil && *s.Stars >= 0 {
		u.Stars = *s.Stars
	}
	if s.Crystals != nil && *s.Crystals >= 0 {
		u.Crystals = *s.Crystals
	}

	if s.Inventory != nil {
		u.Inventory = normalizeInventory(s.Inventory)
	}
	if s.EquippedItem != nil && u.Owns(*s.EquippedItem) {
		u.EquippedItem = *s.EquippedItem
	}
	if !u.Owns(u.EquippedItem) {
		u.EquippedItem = models.DefaultItemID
	}

	if s.Settings != nil {
		u.Settings = *s.Settings
	}
	if s.Progress != nil {
		u.Progress = *s.Progress
	}

	if s.LastPlayedAt != nil {
		u.LastPlayedAt = *s.LastPlayedAt
	}
	if s.EnergyUpdatedAt != nil {
		u.EnergyUpdatedAt = *s.EnergyUpdatedAt
	}
}

// normalizeInventory dedupes the submitted item list and guarantees the
// default bucket is always present.
func normalizeInventory(items []string) []string {
	seen := make(map[string]bool, len(items)+1)
	out := make([]string, 0, len(items)+1)
	for _, id := range append([]string{models.DefaultItemID}, items...) {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

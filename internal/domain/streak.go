package domain

import "time"

// StreakState is the persisted daily activity streak of a vendor.
// Stored as JSON under a fixed per-installation key.
type StreakState struct {
	Count        int       `json:"count"`        // consecutive-day streak, 1..5
	LastActivity time.Time `json:"lastActivity"` // last recorded activity
	UpdatedToday bool      `json:"updatedToday"` // cleared at local midnight
}

// StreakTransition names the outcome of a streak update.
type StreakTransition string

// Streak transition constants
const (
	StreakStarted     StreakTransition = "started"
	StreakIncremented StreakTransition = "incremented"
	StreakReset       StreakTransition = "reset"
	StreakUnchanged   StreakTransition = "unchanged"
)

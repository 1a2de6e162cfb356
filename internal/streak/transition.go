// Package streak tracks the vendor's daily engagement streak.
//
// A streak grows by one per day of activity up to MaxCount. Activity between
// IncrementAfter and ResetAfter hours after the last recorded visit counts as
// the next day; a gap longer than ResetAfter restarts the streak at MinCount.
// The UpdatedToday flag guards against incrementing twice before the next
// local midnight, when a scheduled reset clears it.
package streak

import (
	"time"

	"watch2give-vendor/internal/domain"
)

// Streak bounds and grace-period thresholds.
const (
	MinCount = 1
	MaxCount = 5

	// IncrementAfter is the minimum gap since the last activity that counts
	// as a new day.
	IncrementAfter = 20 * time.Hour

	// ResetAfter is the gap beyond which the streak is broken.
	ResetAfter = 36 * time.Hour

	// DefaultKey is the per-installation storage key of the streak record.
	DefaultKey = "vendorStreak"
)

// Transition computes the next streak state for an activity at now.
// prev is nil when no valid prior state exists. The returned state equals
// *prev when the transition is StreakUnchanged.
func Transition(prev *domain.StreakState, now time.Time) (domain.StreakState, domain.StreakTransition) {
	if prev == nil {
		return fresh(now), domain.StreakStarted
	}

	since := now.Sub(prev.LastActivity)
	switch {
	case since > ResetAfter:
		return fresh(now), domain.StreakReset
	case since >= IncrementAfter && !prev.UpdatedToday:
		return domain.StreakState{
			Count:        min(prev.Count+1, MaxCount),
			LastActivity: now,
			UpdatedToday: true,
		}, domain.StreakIncremented
	default:
		return *prev, domain.StreakUnchanged
	}
}

// IsMilestone reports whether a transition into next reaches the streak cap.
func IsMilestone(next domain.StreakState, transition domain.StreakTransition) bool {
	return transition == domain.StreakIncremented && next.Count == MaxCount
}

// NextLocalMidnight returns the first midnight after now in now's location.
func NextLocalMidnight(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, now.Location())
}

func fresh(now time.Time) domain.StreakState {
	return domain.StreakState{
		Count:        MinCount,
		LastActivity: now,
		UpdatedToday: true,
	}
}

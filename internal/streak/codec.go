package streak

import (
	"encoding/json"
	"fmt"

	"watch2give-vendor/internal/domain"
)

// Encode serializes a streak state in its stored JSON form.
func Encode(s domain.StreakState) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal streak state: %w", err)
	}
	return data, nil
}

// Decode parses a stored streak state. Records that do not parse, carry a
// count outside [MinCount, MaxCount] or lack a timestamp are rejected.
func Decode(data []byte) (*domain.StreakState, error) {
	var s domain.StreakState
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("unmarshal streak state: %w", err)
	}
	if s.Count < MinCount || s.Count > MaxCount {
		return nil, fmt.Errorf("streak count %d out of range", s.Count)
	}
	if s.LastActivity.IsZero() {
		return nil, fmt.Errorf("streak state has no last activity")
	}
	return &s, nil
}

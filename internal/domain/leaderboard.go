package domain

// LeaderboardEntry is one ranked vendor.
type LeaderboardEntry struct {
	Rank   int    `json:"rank"`
	Name   string `json:"name"`
	Points int64  `json:"points"`
}

// Standings is the leaderboard view for one vendor.
type Standings struct {
	Top               []LeaderboardEntry `json:"top"`
	YourRank          int                `json:"yourRank"`
	YourPoints        int64              `json:"yourPoints"`
	PointsToNextRank  int64              `json:"pointsToNextRank"`
	ActionsToNextRank int64              `json:"actionsToNextRank"`
}

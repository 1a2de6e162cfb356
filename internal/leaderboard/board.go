// Package leaderboard ranks the vendor against other vendors by action points.
package leaderboard

import (
	"context"
	"fmt"
	"sort"

	"watch2give-vendor/internal/domain"
)

// Scoring constants.
const (
	PointsPerAction = 10
	TopN            = 5
)

// Competitor is another vendor with a fixed point total.
type Competitor struct {
	Name   string
	Points int64
}

// DefaultRoster is the set of competing vendors shown to a new installation.
var DefaultRoster = []Competitor{
	{Name: "Alice", Points: 240},
	{Name: "Bob", Points: 200},
	{Name: "Charlie", Points: 180},
	{Name: "Aliss", Points: 140},
	{Name: "Fmil.i", Points: 55},
}

// ActionCounter counts recorded actions of a vendor.
type ActionCounter interface {
	CountByVendor(ctx context.Context, vendor string) (int64, error)
}

// Board computes standings.
type Board struct {
	roster  []Competitor
	counter ActionCounter
	name    string
}

// Options contains configuration for creating a Board.
type Options struct {
	Roster  []Competitor // Default: DefaultRoster
	Counter ActionCounter
	Name    string // display name of the vendor; Default: "You"
}

// New creates a leaderboard.
func New(opts Options) *Board {
	roster := opts.Roster
	if roster == nil {
		roster = DefaultRoster
	}
	name := opts.Name
	if name == "" {
		name = "You"
	}
	return &Board{roster: roster, counter: opts.Counter, name: name}
}

// Standings ranks vendor among the roster by points descending, then name.
func (b *Board) Standings(ctx context.Context, vendor string) (*domain.Standings, error) {
	actions, err := b.counter.CountByVendor(ctx, vendor)
	if err != nil {
		return nil, fmt.Errorf("count actions: %w", err)
	}
	points := actions * PointsPerAction

	entries := make([]domain.LeaderboardEntry, 0, len(b.roster)+1)
	for _, c := range b.roster {
		entries = append(entries, domain.LeaderboardEntry{Name: c.Name, Points: c.Points})
	}
	self := len(entries)
	entries = append(entries, domain.LeaderboardEntry{Name: b.name, Points: points})

	order := make([]int, len(entries))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		a, c := entries[order[i]], entries[order[j]]
		if a.Points != c.Points {
			return a.Points > c.Points
		}
		return a.Name < c.Name
	})

	out := &domain.Standings{YourPoints: points}
	for pos, idx := range order {
		e := entries[idx]
		e.Rank = pos + 1
		if pos < TopN {
			out.Top = append(out.Top, e)
		}
		if idx == self {
			out.YourRank = e.Rank
			if pos > 0 {
				// Strictly pass the vendor directly above.
				out.PointsToNextRank = entries[order[pos-1]].Points - points + 1
			}
		}
	}
	out.ActionsToNextRank = (out.PointsToNextRank + PointsPerAction - 1) / PointsPerAction

	return out, nil
}

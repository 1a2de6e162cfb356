package leaderboard

import (
	"context"
	"errors"
	"testing"
)

type fixedCounter int64

func (c fixedCounter) CountByVendor(context.Context, string) (int64, error) {
	return int64(c), nil
}

type failingCounter struct{}

func (failingCounter) CountByVendor(context.Context, string) (int64, error) {
	return 0, errors.New("db down")
}

func TestStandings_NewVendor(t *testing.T) {
	b := New(Options{Counter: fixedCounter(0), Name: "Me"})

	s, err := b.Standings(context.Background(), "vendorA")
	if err != nil {
		t.Fatalf("Standings failed: %v", err)
	}

	if len(s.Top) != TopN {
		t.Fatalf("expected %d entries, got %d", TopN, len(s.Top))
	}
	wantNames := []string{"Alice", "Bob", "Charlie", "Aliss", "Fmil.i"}
	for i, e := range s.Top {
		if e.Name != wantNames[i] || e.Rank != i+1 {
			t.Errorf("entry %d: got %s #%d, want %s #%d", i, e.Name, e.Rank, wantNames[i], i+1)
		}
	}

	if s.YourRank != 6 || s.YourPoints != 0 {
		t.Errorf("unexpected rank/points: #%d %d", s.YourRank, s.YourPoints)
	}
	// Fmil.i has 55: need 56 points, i.e. 6 actions.
	if s.PointsToNextRank != 56 || s.ActionsToNextRank != 6 {
		t.Errorf("unexpected next rank: %d points, %d actions", s.PointsToNextRank, s.ActionsToNextRank)
	}
}

func TestStandings_VendorInTop(t *testing.T) {
	b := New(Options{Counter: fixedCounter(19), Name: "Me"})

	s, err := b.Standings(context.Background(), "vendorA")
	if err != nil {
		t.Fatalf("Standings failed: %v", err)
	}

	// 190 points sits between Bob (200) and Charlie (180).
	if s.YourRank != 3 {
		t.Fatalf("expected rank 3, got %d", s.YourRank)
	}
	if s.Top[2].Name != "Me" || s.Top[2].Points != 190 {
		t.Errorf("expected vendor at #3, got %+v", s.Top[2])
	}
	if s.Top[4].Name != "Aliss" {
		t.Errorf("expected Aliss to drop to #5, got %s", s.Top[4].Name)
	}
	if s.PointsToNextRank != 11 || s.ActionsToNextRank != 2 {
		t.Errorf("unexpected next rank: %d points, %d actions", s.PointsToNextRank, s.ActionsToNextRank)
	}
}

func TestStandings_Leader(t *testing.T) {
	b := New(Options{Counter: fixedCounter(30)})

	s, err := b.Standings(context.Background(), "vendorA")
	if err != nil {
		t.Fatalf("Standings failed: %v", err)
	}
	if s.YourRank != 1 || s.Top[0].Name != "You" {
		t.Errorf("expected vendor to lead, got #%d %s", s.YourRank, s.Top[0].Name)
	}
	if s.PointsToNextRank != 0 || s.ActionsToNextRank != 0 {
		t.Errorf("leader has no next rank: %d/%d", s.PointsToNextRank, s.ActionsToNextRank)
	}
}

func TestStandings_TieBreaksByName(t *testing.T) {
	b := New(Options{
		Roster:  []Competitor{{Name: "Zed", Points: 50}, {Name: "Amy", Points: 50}},
		Counter: fixedCounter(5),
		Name:    "Mia",
	})

	s, err := b.Standings(context.Background(), "vendorA")
	if err != nil {
		t.Fatalf("Standings failed: %v", err)
	}
	got := []string{s.Top[0].Name, s.Top[1].Name, s.Top[2].Name}
	want := []string{"Amy", "Mia", "Zed"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
	if s.PointsToNextRank != 1 || s.ActionsToNextRank != 1 {
		t.Errorf("unexpected next rank: %d/%d", s.PointsToNextRank, s.ActionsToNextRank)
	}
}

func TestStandings_CounterError(t *testing.T) {
	b := New(Options{Counter: failingCounter{}})

	if _, err := b.Standings(context.Background(), "vendorA"); err == nil {
		t.Fatal("expected error")
	}
}

package streak

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"watch2give-vendor/internal/domain"
	"watch2give-vendor/internal/observability"
	"watch2give-vendor/internal/storage"
)

// MilestoneSink receives the signal that a streak reached MaxCount.
type MilestoneSink interface {
	StreakMilestone(ctx context.Context, count int, at time.Time)
}

// MilestoneFunc adapts a function to MilestoneSink.
type MilestoneFunc func(ctx context.Context, count int, at time.Time)

// StreakMilestone implements MilestoneSink.
func (f MilestoneFunc) StreakMilestone(ctx context.Context, count int, at time.Time) {
	f(ctx, count, at)
}

// Result is reported to the caller of GetOrUpdate.
type Result struct {
	Count            int  `json:"count"`
	MilestoneReached bool `json:"milestoneReached"`
}

// Tracker computes and persists the vendor streak.
//
// The read-modify-write against the store is not serialized: one dashboard
// session per installation is assumed to be the only writer.
type Tracker struct {
	store     storage.KVStore
	key       string
	sink      MilestoneSink
	scheduler Scheduler
	logger    logrus.FieldLogger
	resetTTL  time.Duration

	mu          sync.Mutex
	cancelReset func()
}

// Options contains configuration for creating a Tracker.
type Options struct {
	Store     storage.KVStore
	Key       string        // Default: DefaultKey
	Sink      MilestoneSink // optional
	Scheduler Scheduler     // optional; nil disables the midnight reset
	Logger    logrus.FieldLogger

	// ResetTimeout bounds the store access of a scheduled reset.
	// Default: 10s
	ResetTimeout time.Duration
}

// NewTracker creates a new streak tracker.
func NewTracker(opts Options) *Tracker {
	key := opts.Key
	if key == "" {
		key = DefaultKey
	}

	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	resetTTL := opts.ResetTimeout
	if resetTTL == 0 {
		resetTTL = 10 * time.Second
	}

	return &Tracker{
		store:     opts.Store,
		key:       key,
		sink:      opts.Sink,
		scheduler: opts.Scheduler,
		logger:    logger.WithField("component", "streak"),
		resetTTL:  resetTTL,
	}
}

// GetOrUpdate records a dashboard visit at now and returns the current streak.
// Malformed stored state is treated as absent. Store failures are returned.
func (t *Tracker) GetOrUpdate(ctx context.Context, now time.Time) (Result, error) {
	prev, err := t.load(ctx)
	if err != nil {
		return Result{}, err
	}

	next, transition := Transition(prev, now)
	if transition != domain.StreakUnchanged {
		if err := t.save(ctx, next); err != nil {
			return Result{}, err
		}
	}

	milestone := IsMilestone(next, transition)
	if milestone {
		observability.RecordStreakMilestone()
		if t.sink != nil {
			t.sink.StreakMilestone(ctx, next.Count, now)
		}
	}

	observability.RecordStreakTransition(string(transition), next.Count)
	t.logger.WithFields(logrus.Fields{
		"transition": transition,
		"count":      next.Count,
		"milestone":  milestone,
	}).Debug("streak evaluated")

	t.armReset(now)

	return Result{Count: next.Count, MilestoneReached: milestone}, nil
}

// Current returns the stored streak without recording a visit.
// The second value is false when no valid state is stored.
func (t *Tracker) Current(ctx context.Context) (domain.StreakState, bool, error) {
	s, err := t.load(ctx)
	if err != nil || s == nil {
		return domain.StreakState{}, false, err
	}
	return *s, true, nil
}

// ResetDaily clears the UpdatedToday flag so the next day's visit can
// increment. A missing or malformed record is left alone.
func (t *Tracker) ResetDaily(ctx context.Context) error {
	s, err := t.load(ctx)
	if err != nil {
		return err
	}
	if s == nil || !s.UpdatedToday {
		return nil
	}

	s.UpdatedToday = false
	return t.save(ctx, *s)
}

// Stop cancels the pending midnight reset, if any.
func (t *Tracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cancelReset != nil {
		t.cancelReset()
		t.cancelReset = nil
	}
}

// armReset replaces the pending reset with one at the midnight following now.
func (t *Tracker) armReset(now time.Time) {
	if t.scheduler == nil {
		return
	}

	at := NextLocalMidnight(now)

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cancelReset != nil {
		t.cancelReset()
	}
	t.cancelReset = t.scheduler.ScheduleAt(at, func() { t.fireReset(at) })
}

func (t *Tracker) fireReset(at time.Time) {
	ctx, cancel := context.WithTimeout(context.Background(), t.resetTTL)
	defer cancel()

	if err := t.ResetDaily(ctx); err != nil {
		t.logger.WithError(err).Error("midnight streak reset failed")
	} else {
		observability.RecordDailyReset(at.Unix())
		t.logger.WithField("at", at).Info("cleared daily streak flag")
	}

	t.armReset(at)
}

func (t *Tracker) load(ctx context.Context) (*domain.StreakState, error) {
	data, err := t.store.Get(ctx, t.key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load streak: %w", err)
	}

	s, err := Decode(data)
	if err != nil {
		t.logger.WithError(err).Warn("discarding malformed streak state")
		return nil, nil
	}
	return s, nil
}

func (t *Tracker) save(ctx context.Context, s domain.StreakState) error {
	data, err := Encode(s)
	if err != nil {
		return err
	}
	if err := t.store.Set(ctx, t.key, data); err != nil {
		return fmt.Errorf("save streak: %w", err)
	}
	return nil
}

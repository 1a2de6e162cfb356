package streak

import (
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Scheduler fires a callback once at a wall-clock instant.
type Scheduler interface {
	// ScheduleAt arranges for fn to run at at. The returned cancel func
	// prevents a pending run; it is safe to call more than once.
	ScheduleAt(at time.Time, fn func()) (cancel func())
}

// CronScheduler implements Scheduler on top of a robfig/cron runner.
type CronScheduler struct {
	cron   *cron.Cron
	logger logrus.FieldLogger
}

// NewCronScheduler creates a scheduler. Call Start before scheduling.
func NewCronScheduler(logger logrus.FieldLogger) *CronScheduler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	logger = logger.WithField("component", "scheduler")

	return &CronScheduler{
		cron: cron.New(cron.WithChain(
			cron.Recover(cron.PrintfLogger(logger)),
		)),
		logger: logger,
	}
}

// Start starts the cron runner in its own goroutine.
func (s *CronScheduler) Start() {
	s.cron.Start()
}

// Stop stops the runner and waits for running jobs to finish.
func (s *CronScheduler) Stop() {
	<-s.cron.Stop().Done()
}

// ScheduleAt implements Scheduler. Instants that are not in the future run
// immediately in a new goroutine.
func (s *CronScheduler) ScheduleAt(at time.Time, fn func()) func() {
	if !at.After(time.Now()) {
		go fn()
		return func() {}
	}

	var (
		mu      sync.Mutex
		id      cron.EntryID
		removed bool
	)
	remove := func() {
		mu.Lock()
		defer mu.Unlock()
		if !removed {
			s.cron.Remove(id)
			removed = true
		}
	}

	mu.Lock()
	id = s.cron.Schedule(onceAt{at: at}, cron.FuncJob(func() {
		fn()
		remove()
	}))
	mu.Unlock()

	s.logger.WithFields(logrus.Fields{"entry": id, "at": at}).Debug("scheduled one-shot job")
	return remove
}

// onceAt is a cron.Schedule that yields a single activation time.
type onceAt struct {
	at time.Time
}

// Next returns at until it has passed, then the zero time, which cron
// treats as "never run again".
func (o onceAt) Next(t time.Time) time.Time {
	if t.Before(o.at) {
		return o.at
	}
	return time.Time{}
}

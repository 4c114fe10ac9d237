/*
scheduler.go - Monthly deadline monitor

PURPOSE:
  Periodically checks the previous month once its editing deadline has
  passed and reports staff who recorded stipends but never submitted the
  month. Administrators use the report to chase late applications.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Only the month before the current one is examined
  - Before the deadline nothing is reported (staff can still edit)
  - The latest report is kept in memory and exposed via the API
  - The count of unsubmitted months feeds a Prometheus gauge

CONFIGURATION:
  - CheckInterval: How often to check (default: 1 hour)
  - Enabled: Whether scheduler is active (default: true)

USAGE:
  scheduler := NewDeadlineScheduler(handler)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: GetDeadlineReport endpoint
  - stipend/lock.go: Deadline computation
*/
package api

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/warp/stipend-engine/generic"
	"github.com/warp/stipend-engine/observability"
	"github.com/warp/stipend-engine/stipend"
)

// systemActor runs the monthly summary on the scheduler's behalf.
var systemActor = stipend.Actor{ID: "system:deadline-monitor", Role: generic.RoleAdmin}

// DeadlineReport lists months still in draft after their deadline.
type DeadlineReport struct {
	Month       string    `json:"month"`
	Deadline    time.Time `json:"deadline"`
	CheckedAt   time.Time `json:"checked_at"`
	Unsubmitted []string  `json:"unsubmitted"`
	Submitted   int       `json:"submitted"`
	Approved    int       `json:"approved"`
}

// DeadlineScheduler checks the previous month after its deadline.
type DeadlineScheduler struct {
	Handler       *Handler
	CheckInterval time.Duration
	Enabled       bool

	ticker *time.Ticker
	stop   chan bool
	wg     sync.WaitGroup
	mu     sync.Mutex

	reportMu sync.RWMutex
	last     *DeadlineReport
}

// NewDeadlineScheduler creates a new scheduler and attaches it to handler.
func NewDeadlineScheduler(handler *Handler) *DeadlineScheduler {
	ds := &DeadlineScheduler{
		Handler:       handler,
		CheckInterval: 1 * time.Hour,
		Enabled:       true,
		stop:          make(chan bool),
	}
	handler.Deadlines = ds
	return ds
}

// Start begins the scheduler.
func (ds *DeadlineScheduler) Start() {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if !ds.Enabled {
		log.Println("[Deadlines] Disabled, not starting")
		return
	}

	ds.ticker = time.NewTicker(ds.CheckInterval)
	ds.wg.Add(1)

	go ds.run()

	log.Printf("[Deadlines] Started with check interval: %v", ds.CheckInterval)
}

// Stop stops the scheduler.
func (ds *DeadlineScheduler) Stop() {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if ds.ticker != nil {
		ds.ticker.Stop()
		close(ds.stop)
		ds.wg.Wait()
		ds.ticker = nil
		log.Println("[Deadlines] Stopped")
	}
}

func (ds *DeadlineScheduler) run() {
	defer ds.wg.Done()

	// Run immediately on start
	ds.RunNow(context.Background())

	for {
		select {
		case <-ds.ticker.C:
			ds.RunNow(context.Background())
		case <-ds.stop:
			return
		}
	}
}

// RunNow checks the previous month immediately and returns the report, or
// nil if its deadline has not passed yet.
func (ds *DeadlineScheduler) RunNow(ctx context.Context) *DeadlineReport {
	at := now()
	lock := ds.Handler.Lock
	loc := lock.Location
	if loc == nil {
		loc = time.Local
	}
	current := generic.MonthOf(generic.DayOf(at.In(loc)))
	prev := current.Prev()

	deadline := lock.Deadline(prev)
	if !at.After(deadline) {
		return nil
	}

	sum, err := ds.Handler.Service.Summarize(ctx, systemActor, prev)
	if err != nil {
		log.Printf("[Deadlines] Error summarizing %s: %v", prev, err)
		return nil
	}

	report := &DeadlineReport{
		Month:       prev.String(),
		Deadline:    deadline,
		CheckedAt:   at,
		Unsubmitted: []string{},
	}
	for _, s := range sum.Staff {
		switch s.Status {
		case stipend.StatusSubmitted:
			report.Submitted++
		case stipend.StatusApproved:
			report.Approved++
		default:
			report.Unsubmitted = append(report.Unsubmitted, string(s.StaffID))
		}
	}
	observability.SetUnsubmitted(len(report.Unsubmitted))

	ds.reportMu.Lock()
	ds.last = report
	ds.reportMu.Unlock()

	if len(report.Unsubmitted) > 0 {
		log.Printf("[Deadlines] %s: %d staff past deadline without submitting", prev, len(report.Unsubmitted))
	}
	return report
}

// LastReport returns the most recent report, or nil.
func (ds *DeadlineScheduler) LastReport() *DeadlineReport {
	ds.reportMu.RLock()
	defer ds.reportMu.RUnlock()
	return ds.last
}


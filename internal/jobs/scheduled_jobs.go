package jobs

import (
	"fmt"
	"time"
)

const (
	LowStockJobName     = "low-stock-sweep"
	SessionSweepJobName = "idle-session-sweep"
)

// Scheduler is the subset of the background scheduler the jobs register on
type Scheduler interface {
	AddJob(name string, interval time.Duration, taskFn interface{}, params ...interface{}) error
}

// SessionSweeper unmounts sessions that have gone idle
type SessionSweeper interface {
	SweepIdle(idle time.Duration) int
}

// RegisterJobs schedules the process-wide sweeps. alerts may be nil to disable the low stock sweep.
func RegisterJobs(scheduler Scheduler, alerts *InventoryAlertService, sweeper SessionSweeper, stockInterval, idle time.Duration) error {
	if alerts != nil && stockInterval > 0 {
		if err := scheduler.AddJob(LowStockJobName, stockInterval, alerts.ScheduledLowStockCheck); err != nil {
			return fmt.Errorf("failed to schedule low stock sweep: %w", err)
		}
	}

	if idle > 0 {
		// a session outlives its idle window by at most idle/2
		interval := idle / 2
		if err := scheduler.AddJob(SessionSweepJobName, interval, sweepIdleSessions, sweeper, idle); err != nil {
			return fmt.Errorf("failed to schedule idle session sweep: %w", err)
		}
	}
	return nil
}

func sweepIdleSessions(sweeper SessionSweeper, idle time.Duration) {
	sweeper.SweepIdle(idle)
}

// Package scheduling provides periodic execution of update sessions.
// It runs sessions on a cron specification, serializes overlapping
// runs with a lock channel, and shuts down gracefully on interrupt
// signals or context cancellation.
package scheduling

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron"
	"github.com/sirupsen/logrus"
)

// sessionWaitTimeout bounds how long shutdown waits for a running
// session to finish.
const sessionWaitTimeout = 60 * time.Second

// RunOnSchedule executes runSession according to the cron spec until
// an interrupt signal arrives or the context is cancelled. Overlapping
// firings are skipped rather than queued; at most one session runs at
// a time.
func RunOnSchedule(ctx context.Context, spec string, runSession func()) error {
	// The lock carries a single token; a session must take it to run.
	lock := make(chan bool, 1)
	lock <- true

	scheduler := cron.New()

	err := scheduler.AddFunc(spec, func() {
		select {
		case v := <-lock:
			defer func() { lock <- v }()

			runSession()

			nextRuns := scheduler.Entries()
			if len(nextRuns) > 0 {
				logrus.Debug("Scheduled next run: " + nextRuns[0].Next.String())
			}
		default:
			logrus.Debug("Skipped another scan, already running")
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule updates with spec %q: %w", spec, err)
	}

	scheduler.Start()
	defer scheduler.Stop()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	select {
	case <-ctx.Done():
		logrus.Debug("Context cancelled, stopping scheduler")
	case sig := <-interrupt:
		logrus.WithField("signal", sig.String()).Info("Received signal, shutting down")
	}

	waitForRunningSession(ctx, lock)

	return nil
}

// FirstRun returns the time of the first firing for a cron spec, or
// the zero time when the spec does not parse.
func FirstRun(spec string) time.Time {
	schedule, err := cron.Parse(spec)
	if err != nil {
		return time.Time{}
	}

	return schedule.Next(time.Now())
}

// waitForRunningSession blocks until any in-flight session completes,
// with a timeout so shutdown cannot hang.
func waitForRunningSession(ctx context.Context, lock chan bool) {
	select {
	case <-lock:
		logrus.Debug("No session running, shutting down immediately")
	case <-time.After(sessionWaitTimeout):
		logrus.Warn("Timeout waiting for running session to finish, proceeding with shutdown")
	case <-ctx.Done():
	}
}

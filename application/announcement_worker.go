package application

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

// CycleRunner runs one announcement cycle
type CycleRunner interface {
	Run(ctx context.Context) (CycleResult, error)
}

// AnnouncementWorker runs the announcement cycle once a day
type AnnouncementWorker struct {
	cycle    CycleRunner
	hour     int
	location *time.Location
	now      func() time.Time
}

// NewAnnouncementWorker creates a worker firing daily at hour:00 in loc
func NewAnnouncementWorker(cycle CycleRunner, hour int, loc *time.Location) *AnnouncementWorker {
	if loc == nil {
		loc = time.UTC
	}
	return &AnnouncementWorker{
		cycle:    cycle,
		hour:     hour,
		location: loc,
		now:      time.Now,
	}
}

// nextRun returns the wait until the next hour:00 in the worker's time zone
func (w *AnnouncementWorker) nextRun() time.Duration {
	now := w.now().In(w.location)
	next := time.Date(now.Year(), now.Month(), now.Day(), w.hour, 0, 0, 0, w.location)

	// If the announcement time has already passed today, schedule for tomorrow
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}

// Start begins the announcement worker
func (w *AnnouncementWorker) Start(ctx context.Context) func() {
	stopChan := make(chan struct{})

	go func() {
		log.WithFields(log.Fields{
			"hour":     w.hour,
			"timezone": w.location.String(),
		}).Info("Announcement worker started")

		for {
			waitDuration := w.nextRun()
			log.Infof("Announcement worker waiting %v until next run", waitDuration)

			select {
			case <-ctx.Done():
				log.Info("Announcement worker shutting down (context cancelled)...")
				return
			case <-stopChan:
				log.Info("Announcement worker shutting down (stop requested)...")
				return
			case <-time.After(waitDuration):
				// Failures roll back and are retried at the next run
				if _, err := w.cycle.Run(ctx); err != nil {
					log.WithError(err).Error("Scheduled announcement cycle failed")
				}
			}
		}
	}()

	return func() {
		close(stopChan)
	}
}

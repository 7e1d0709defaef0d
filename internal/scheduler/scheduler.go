// internal/scheduler/scheduler.go
package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hargapangan/pangan-backend/internal/services"
)

// Scheduler drives the periodic price synchronization. One cycle runs at
// startup, then every interval until Stop.
type Scheduler struct {
	sync     *services.SyncService
	interval time.Duration

	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

func New(syncService *services.SyncService, intervalHours int) *Scheduler {
	if intervalHours <= 0 {
		intervalHours = 6
	}
	return &Scheduler{
		sync:     syncService,
		interval: time.Duration(intervalHours) * time.Hour,
		done:     make(chan struct{}),
	}
}

func (s *Scheduler) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	go s.run(ctx)

	logrus.WithField("interval", s.interval.String()).Info("Price sync scheduler started")
}

func (s *Scheduler) run(ctx context.Context) {
	defer close(s.done)

	s.runCycle(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runCycle(ctx)
		}
	}
}

func (s *Scheduler) runCycle(ctx context.Context) {
	result, err := s.sync.RunCycle(ctx)
	switch {
	case errors.Is(err, services.ErrSyncAlreadyRunning):
		logrus.Info("Skipping scheduled sync: a cycle is already running")
	case err != nil:
		logrus.WithError(err).Error("Scheduled price sync failed")
	default:
		logrus.WithFields(logrus.Fields{
			"saved":   result.TotalSaved,
			"skipped": result.TotalSkipped,
			"purged":  result.PurgedOverrides,
		}).Info("Scheduled price sync completed")
	}
}

// Stop cancels the loop and waits for an in-flight cycle to return.
func (s *Scheduler) Stop() {
	s.once.Do(func() {
		if s.cancel != nil {
			s.cancel()
		}
		<-s.done
	})
}

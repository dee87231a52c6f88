package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/docket/internal/groups/store"
)

// DefaultActivityRetention is how long activity entries are kept.
const DefaultActivityRetention = 30 * 24 * time.Hour

// HousekeepingService periodically reclaims storage held by unusable invites
// and old activity. Invite validity never depends on it: expiry and
// exhaustion are enforced on every lookup and redemption.
type HousekeepingService struct {
	Store     store.Store
	Logger    *slog.Logger
	Interval  time.Duration
	Retention time.Duration
	Now       func() time.Time

	// Internal channels for lifecycle management
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a new housekeeping service. A non-positive
// interval defaults to 1 hour and a non-positive retention to 30 days.
func NewHousekeepingService(store store.Store, logger *slog.Logger, interval, retention time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}
	if retention <= 0 {
		retention = DefaultActivityRetention
	}

	return &HousekeepingService{
		Store:     store,
		Logger:    logger,
		Interval:  interval,
		Retention: retention,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start begins the background worker. Call Stop to shut it down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval, "retention", s.Retention)
}

// Stop blocks until the worker has finished any in-progress cleanup.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Run cleanup immediately on startup
	s.Cleanup(context.Background())

	for {
		select {
		case <-ticker.C:
			s.Cleanup(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// Cleanup runs one sweep. Each step is independent; a failure in one does
// not stop the others.
func (s *HousekeepingService) Cleanup(ctx context.Context) {
	now := nowFrom(s.Now)
	s.Logger.Debug("starting housekeeping cleanup")

	var total int

	if n, err := s.Store.Invites().DeleteUnusableInvites(ctx, now); err != nil {
		s.Logger.Error("failed to delete unusable invites", "error", err)
	} else {
		total += n
	}

	if n, err := s.Store.Invites().DeleteOrphanedInvites(ctx); err != nil {
		s.Logger.Error("failed to delete orphaned invites", "error", err)
	} else {
		total += n
	}

	if n, err := s.Store.Activity().DeleteActivityBefore(ctx, now.Add(-s.Retention)); err != nil {
		s.Logger.Error("failed to delete old activity", "error", err)
	} else {
		total += n
	}

	s.Logger.Info("housekeeping cleanup completed", "deleted", total)
}

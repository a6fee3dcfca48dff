package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"warikan/internal/sheets"
)

// SnapshotSchedulerConfig holds configuration for the snapshot scheduler
type SnapshotSchedulerConfig struct {
	// Interval between snapshots of the latest month (default: 1h)
	Interval time.Duration
}

// SnapshotScheduler periodically records the settlement of the newest
// month in the ledger.
type SnapshotScheduler struct {
	settlements *SettlementService
	store       sheets.SnapshotStore
	config      SnapshotSchedulerConfig

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func NewSnapshotScheduler(settlements *SettlementService, store sheets.SnapshotStore, config SnapshotSchedulerConfig) *SnapshotScheduler {
	if config.Interval <= 0 {
		config.Interval = time.Hour
	}
	return &SnapshotScheduler{
		settlements: settlements,
		store:       store,
		config:      config,
	}
}

// Start begins the loop. Returns an error if already running.
func (s *SnapshotScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("snapshot scheduler is already running")
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	s.mu.Unlock()

	go s.runLoop(ctx)

	slog.InfoContext(ctx, "Snapshot scheduler started", "interval", s.config.Interval)
	return nil
}

// Stop signals the loop and waits for it to finish or ctx to expire.
func (s *SnapshotScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	stopCh, doneCh := s.stopCh, s.doneCh
	s.running = false
	s.mu.Unlock()

	close(stopCh)

	select {
	case <-doneCh:
		slog.InfoContext(ctx, "Snapshot scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		slog.WarnContext(ctx, "Snapshot scheduler stop timed out")
		return ctx.Err()
	}
}

func (s *SnapshotScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *SnapshotScheduler) runLoop(ctx context.Context) {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	s.tick(ctx)

	for {
		select {
		case <-s.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *SnapshotScheduler) tick(ctx context.Context) {
	if _, err := s.RunOnce(ctx); err != nil {
		slog.ErrorContext(ctx, "Scheduled snapshot failed", "error", err)
	}
}

// RunOnce refreshes the ledger and records the latest month. It reports
// false when the ledger has no dated rows.
func (s *SnapshotScheduler) RunOnce(ctx context.Context) (bool, error) {
	ov, err := s.settlements.Refresh(ctx)
	if err != nil {
		return false, err
	}
	if !ov.HasLatest {
		slog.InfoContext(ctx, "Ledger has no dated rows, nothing to snapshot")
		return false, nil
	}
	snap, err := s.settlements.Snapshot(ctx, ov.Latest, "")
	if err != nil {
		return false, err
	}
	if _, err := s.store.AppendSnapshot(ctx, snap); err != nil {
		return false, fmt.Errorf("store snapshot: %w", err)
	}
	slog.InfoContext(ctx, "Snapshot recorded",
		"period", ov.Latest.String(),
		"final_due", snap.FinalDue)
	return true, nil
}

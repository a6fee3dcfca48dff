package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"warikan/internal/amqp"
	"warikan/internal/services"
	"warikan/internal/sheets"
)

// Consumer delivers recompute messages to a handler until ctx is done.
type Consumer interface {
	ConsumeRecompute(ctx context.Context, handler amqp.Handler) error
}

// SnapshotWorker records settlement snapshots when a recompute message
// arrives and on a fixed schedule.
type SnapshotWorker struct {
	settlements *services.SettlementService
	store       sheets.SnapshotStore
	scheduler   *services.SnapshotScheduler
	periodic    bool
}

// NewSnapshotWorker builds a worker. An interval of 0 disables the periodic
// snapshots; messages are still handled.
func NewSnapshotWorker(settlements *services.SettlementService, store sheets.SnapshotStore, interval time.Duration) *SnapshotWorker {
	return &SnapshotWorker{
		settlements: settlements,
		store:       store,
		scheduler: services.NewSnapshotScheduler(settlements, store, services.SnapshotSchedulerConfig{
			Interval: interval,
		}),
		periodic: interval > 0,
	}
}

// HandleRecompute processes a single recompute message from AMQP. A message
// that was already recorded is acknowledged without writing again.
func (w *SnapshotWorker) HandleRecompute(ctx context.Context, msg *amqp.SettlementRecomputeMessage) error {
	slog.InfoContext(ctx, "Processing recompute message",
		"id", msg.ID,
		"year", msg.Year,
		"month", msg.Month,
		"reason", msg.Reason)

	p, err := msg.Period()
	if err != nil {
		return fmt.Errorf("invalid message period: %w", err)
	}

	if msg.Reason == amqp.ReasonRefresh {
		w.settlements.Invalidate()
	}

	snap, err := w.settlements.Snapshot(ctx, p, msg.ID.String())
	if err != nil {
		return fmt.Errorf("compute snapshot: %w", err)
	}

	inserted, err := w.store.AppendSnapshot(ctx, snap)
	if err != nil {
		return fmt.Errorf("store snapshot: %w", err)
	}
	if !inserted {
		slog.InfoContext(ctx, "Recompute message already processed", "id", msg.ID)
		return nil
	}

	slog.InfoContext(ctx, "Snapshot recorded",
		"id", msg.ID,
		"period", p.String(),
		"total_billing", snap.TotalBilling,
		"final_due", snap.FinalDue)
	return nil
}

// Run starts the scheduler and, when consumer is not nil, the message
// consumer. It blocks until ctx is done or the consumer fails.
func (w *SnapshotWorker) Run(ctx context.Context, consumer Consumer) error {
	g, gctx := errgroup.WithContext(ctx)

	if w.periodic {
		if err := w.scheduler.Start(gctx); err != nil {
			return err
		}
		g.Go(func() error {
			<-gctx.Done()
			stopCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), 10*time.Second)
			defer cancel()
			return w.scheduler.Stop(stopCtx)
		})
	}

	if consumer != nil {
		g.Go(func() error {
			return consumer.ConsumeRecompute(gctx, w.HandleRecompute)
		})
	} else if w.periodic {
		slog.WarnContext(ctx, "No AMQP consumer configured, running scheduled snapshots only")
	} else {
		return errors.New("snapshot worker has neither a consumer nor a schedule")
	}

	err := g.Wait()
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

// Scheduler exposes the periodic snapshot loop.
func (w *SnapshotWorker) Scheduler() *services.SnapshotScheduler {
	return w.scheduler
}

package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warikan/internal/amqp"
	"warikan/internal/core"
	"warikan/internal/services"
	"warikan/internal/settlement"
	"warikan/internal/sheets/memory"
	"warikan/internal/storage"
)

func newWorker(t *testing.T, rows []core.Transaction) (*SnapshotWorker, *memory.Source, *storage.MemoryStore) {
	t.Helper()
	src := memory.New(rows)
	store := storage.NewMemoryStore()
	policy := settlement.DefaultPolicy()
	policy.Location = time.UTC
	svc := services.NewSettlementService(src, store, policy, services.SettlementServiceConfig{CacheTTL: time.Minute})
	return NewSnapshotWorker(svc, store, time.Hour), src, store
}

func ledgerRow(date, amount, sub string) core.Transaction {
	return core.Transaction{
		Date:        date,
		Amount:      amount,
		SubCategory: sub,
		IncludeFlag: core.IncludeFlagOn,
	}
}

func TestHandleRecompute(t *testing.T) {
	w, _, store := newWorker(t, []core.Transaction{
		ledgerRow("2024-05-03", "3000", "食費"),
	})
	ctx := context.Background()
	require.NoError(t, store.SetAdvance(ctx, core.Period{Year: 2024, Month: 5}, 1000))

	msg := amqp.NewSettlementRecomputeMessage(core.Period{Year: 2024, Month: 5}, amqp.ReasonAdvanceChanged)
	require.NoError(t, w.HandleRecompute(ctx, msg))

	snaps, err := store.ListSnapshots(ctx, 2024)
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, msg.ID.String(), snaps[0].MessageID)
	assert.Equal(t, int64(1000), snaps[0].AdvanceAmount)
	assert.Equal(t, int64(41000), snaps[0].FinalDue)
}

func TestHandleRecompute_Redelivery(t *testing.T) {
	w, _, store := newWorker(t, []core.Transaction{ledgerRow("2024-05-03", "3000", "食費")})
	ctx := context.Background()

	msg := amqp.NewSettlementRecomputeMessage(core.Period{Year: 2024, Month: 5}, amqp.ReasonManual)
	require.NoError(t, w.HandleRecompute(ctx, msg))
	require.NoError(t, w.HandleRecompute(ctx, msg))

	snaps, err := store.ListSnapshots(ctx, 2024)
	require.NoError(t, err)
	assert.Len(t, snaps, 1)
}

func TestHandleRecompute_RefreshDropsCachedLedger(t *testing.T) {
	w, src, store := newWorker(t, []core.Transaction{ledgerRow("2024-05-03", "3000", "食費")})
	ctx := context.Background()
	p := core.Period{Year: 2024, Month: 5}

	require.NoError(t, w.HandleRecompute(ctx, amqp.NewSettlementRecomputeMessage(p, amqp.ReasonManual)))

	src.Replace([]core.Transaction{ledgerRow("2024-05-03", "5000", "食費")})
	require.NoError(t, w.HandleRecompute(ctx, amqp.NewSettlementRecomputeMessage(p, amqp.ReasonRefresh)))

	snaps, err := store.ListSnapshots(ctx, 2024)
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	assert.Equal(t, int64(3000), snaps[0].SharedTotal)
	assert.Equal(t, int64(5000), snaps[1].SharedTotal)
}

func TestHandleRecompute_InvalidPeriod(t *testing.T) {
	w, _, _ := newWorker(t, nil)
	msg := &amqp.SettlementRecomputeMessage{ID: uuid.New(), Year: 2024, Month: 13}

	err := w.HandleRecompute(context.Background(), msg)
	assert.ErrorIs(t, err, core.ErrInvalidMonth)
}

type fakeConsumer struct {
	msgs []*amqp.SettlementRecomputeMessage
	err  error
}

func (f *fakeConsumer) ConsumeRecompute(ctx context.Context, handler amqp.Handler) error {
	for _, m := range f.msgs {
		if err := handler(ctx, m); err != nil {
			return err
		}
	}
	if f.err != nil {
		return f.err
	}
	<-ctx.Done()
	return ctx.Err()
}

func TestRun_ConsumesUntilCancelled(t *testing.T) {
	w, _, store := newWorker(t, []core.Transaction{ledgerRow("2024-04-03", "3000", "食費")})
	msg := amqp.NewSettlementRecomputeMessage(core.Period{Year: 2024, Month: 3}, amqp.ReasonManual)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, &fakeConsumer{msgs: []*amqp.SettlementRecomputeMessage{msg}}) }()

	// one snapshot from the message, one from the scheduler's first tick
	assert.Eventually(t, func() bool {
		snaps, _ := store.ListSnapshots(context.Background(), 2024)
		return len(snaps) == 2
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}
	assert.False(t, w.Scheduler().IsRunning())
}

func TestRun_ConsumerFailure(t *testing.T) {
	w, _, _ := newWorker(t, nil)
	boom := errors.New("consumer failed")

	err := w.Run(context.Background(), &fakeConsumer{err: boom})
	assert.ErrorIs(t, err, boom)
}

func TestRun_ScheduleDisabled(t *testing.T) {
	src := memory.New([]core.Transaction{ledgerRow("2024-04-03", "3000", "食費")})
	store := storage.NewMemoryStore()
	policy := settlement.DefaultPolicy()
	policy.Location = time.UTC
	svc := services.NewSettlementService(src, store, policy, services.SettlementServiceConfig{})
	w := NewSnapshotWorker(svc, store, 0)

	assert.Error(t, w.Run(context.Background(), nil), "nothing to run")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	require.NoError(t, w.Run(ctx, &fakeConsumer{}))
	assert.False(t, w.Scheduler().IsRunning())

	snaps, err := store.ListSnapshots(context.Background(), 2024)
	require.NoError(t, err)
	assert.Empty(t, snaps)
}

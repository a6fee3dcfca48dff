package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warikan/internal/core"
	"warikan/internal/storage"
)

func TestSnapshotScheduler_RunOnce(t *testing.T) {
	src := &countingSource{rows: []core.Transaction{
		row("2024-04-03", "1000", "食費"),
		row("2024-05-03", "3000", "食費"),
	}}
	store := storage.NewMemoryStore()
	sched := NewSnapshotScheduler(newTestService(src, store), store, SnapshotSchedulerConfig{})
	ctx := context.Background()

	ok, err := sched.RunOnce(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	snaps, err := store.ListSnapshots(ctx, 2024)
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, core.Period{Year: 2024, Month: 5}, snaps[0].Period)
	assert.Equal(t, int64(41500), snaps[0].FinalDue)
}

func TestSnapshotScheduler_EmptyLedger(t *testing.T) {
	store := storage.NewMemoryStore()
	sched := NewSnapshotScheduler(newTestService(&countingSource{}, store), store, SnapshotSchedulerConfig{})

	ok, err := sched.RunOnce(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSnapshotScheduler_StartStop(t *testing.T) {
	src := &countingSource{rows: []core.Transaction{row("2024-05-03", "3000", "食費")}}
	store := storage.NewMemoryStore()
	sched := NewSnapshotScheduler(newTestService(src, store), store, SnapshotSchedulerConfig{Interval: time.Hour})
	ctx := context.Background()

	require.NoError(t, sched.Start(ctx))
	assert.True(t, sched.IsRunning())
	assert.Error(t, sched.Start(ctx), "second start should fail")

	assert.Eventually(t, func() bool {
		snaps, _ := store.ListSnapshots(ctx, 2024)
		return len(snaps) == 1
	}, time.Second, 10*time.Millisecond)

	stopCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	require.NoError(t, sched.Stop(stopCtx))
	assert.False(t, sched.IsRunning())
	require.NoError(t, sched.Stop(stopCtx))
}

package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warikan/internal/core"
	"warikan/internal/settlement"
	"warikan/internal/storage"
)

const fixture = "../../data/transactions.json"

func run(t *testing.T, args ...string) string {
	t.Helper()
	return runWithStore(t, "memory", args...)
}

func runWithStore(t *testing.T, store string, args ...string) string {
	t.Helper()
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("POLICY_FILE", "")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	base := []string{"--source", "memory", "--store", store, "--fixture", fixture}
	rootCmd.SetArgs(append(args, base...))
	t.Cleanup(func() {
		flagJSON, flagYear, flagMonth = false, 0, 0
	})
	require.NoError(t, rootCmd.Execute(), out.String())
	return out.String()
}

func TestMonthlyJSON(t *testing.T) {
	out := run(t, "monthly", "--json", "--year", "2024", "--month", "5")

	var r settlement.MonthlyReport
	require.NoError(t, json.Unmarshal([]byte(out), &r))
	// 食費 3,120 + 旅費 8,800 + 普段使い 980 shared; the 自費 and unflagged rows drop out
	assert.Equal(t, int64(12900), r.SharedTotal)
	assert.Equal(t, int64(15000), r.FullReimburseTotal)
	assert.Equal(t, int64(61450), r.TotalBilling)
}

func TestMonthlyDefaultsToNewestMonth(t *testing.T) {
	out := run(t, "monthly")
	assert.Contains(t, out, "2024年5月 精算")
	assert.Contains(t, out, "¥61,450")
}

func TestYearlyTable(t *testing.T) {
	out := run(t, "yearly", "--year", "2024")
	assert.Contains(t, out, "2024年 精算")
	assert.Contains(t, out, "月別請求額")
}

func TestYears(t *testing.T) {
	assert.Equal(t, "2024\n", run(t, "years"))
}

func TestAdvanceSetIsNotPersistedAcrossRunsWithMemoryStore(t *testing.T) {
	out := run(t, "advance", "set", "3,000円", "--year", "2024", "--month", "5")
	assert.Contains(t, out, "¥3,000 saved")

	out = run(t, "advance", "get", "--year", "2024", "--month", "5")
	assert.Contains(t, out, "¥0")
}

func TestAdvanceJSONCarriesKey(t *testing.T) {
	out := run(t, "advance", "set", "1200", "--json", "--year", "2024", "--month", "5")

	var got struct {
		Key    string `json:"key"`
		Amount int64  `json:"amount"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "girlfriend_advance_2024-5", got.Key)
	assert.Equal(t, int64(1200), got.Amount)
}

func TestSnapshotsLatestForMonth(t *testing.T) {
	t.Setenv("SQLITE_DB_PATH", filepath.Join(t.TempDir(), "warikan.db"))

	assert.Contains(t, runWithStore(t, "sqlite", "snapshot"), "snapshot recorded")

	out := runWithStore(t, "sqlite", "snapshots", "--json", "--year", "2024", "--month", "5")
	var snap core.Snapshot
	require.NoError(t, json.Unmarshal([]byte(out), &snap))
	assert.Equal(t, core.Period{Year: 2024, Month: 5}, snap.Period)
	assert.Equal(t, int64(61450), snap.TotalBilling)
}

func TestSnapshotsMonthWithoutSnapshot(t *testing.T) {
	t.Setenv("TIMEZONE", "UTC")
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"snapshots", "--year", "2024", "--month", "5", "--source", "memory", "--store", "memory", "--fixture", fixture})
	t.Cleanup(func() { flagYear, flagMonth = 0, 0 })

	err := rootCmd.Execute()
	require.Error(t, err)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestInvalidMonth(t *testing.T) {
	t.Setenv("TIMEZONE", "UTC")
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"monthly", "--month", "13", "--source", "memory", "--store", "memory", "--fixture", fixture})
	t.Cleanup(func() { flagMonth = 0 })

	assert.Error(t, rootCmd.Execute())
}
